// Command tricsg runs boolean operations on STL meshes and renders CSG
// programs written in the tricsg Lisp dialect.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/chazu/tricsg/pkg/csg"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	out     string
	epsilon float64
	verbose bool
	ascii   bool
}

// options builds the engine options selected on the command line.
func (f *globalFlags) options(cmd *cobra.Command) csg.Options {
	opts := csg.DefaultOptions()
	if f.epsilon > 0 {
		opts.Epsilon = f.epsilon
	}
	if f.verbose {
		opts.Logger = newLogger(cmd)
		opts.Trace = true
	}
	return opts
}

func newLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "tricsg: ", 0)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "tricsg",
		Short: "Boolean operations on triangle meshes",
		Long: `tricsg computes unions, intersections and differences of closed
triangle meshes stored as STL files, and renders CSG programs written
as Lisp expressions.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.Float64Var(&flags.epsilon, "epsilon", csg.Epsilon, "geometric tolerance")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log split and classification details")

	root.AddCommand(
		newBooleanCmd(flags, csg.OpUnion),
		newBooleanCmd(flags, csg.OpIntersection),
		newBooleanCmd(flags, csg.OpDifference),
		newInfoCmd(flags),
		newEvalCmd(flags),
	)
	return root
}

// addOutputFlags registers the flags of commands that write an STL file.
func addOutputFlags(cmd *cobra.Command, flags *globalFlags) {
	cmd.Flags().StringVarP(&flags.out, "out", "o", "out.stl", "output STL file")
	cmd.Flags().BoolVar(&flags.ascii, "ascii", false, "write ASCII STL instead of binary")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
