package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/tricsg/pkg/csg"
	"github.com/chazu/tricsg/pkg/engine"
	"github.com/chazu/tricsg/pkg/kernel/trimesh"
	"github.com/chazu/tricsg/pkg/stl"
	"github.com/chazu/tricsg/pkg/tessellate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newEvalCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval PROGRAM.lisp",
		Short: "Render a CSG program to STL",
		Long: `Evaluate a Lisp CSG program and write the union of every solid it
renders to a single STL file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, flags, args[0])
		},
	}
	addOutputFlags(cmd, flags)
	return cmd
}

func runEval(cmd *cobra.Command, flags *globalFlags, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "eval")
	}

	g, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return errors.Wrap(err, "eval")
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return errors.Errorf("eval: %s: %s", path, strings.Join(msgs, "; "))
	}

	logger := newLogger(cmd)
	for _, w := range engine.Warnings(g) {
		logger.Printf("warning: %s", w.Message)
	}

	opts := flags.options(cmd)
	parts, err := tessellate.Solids(g, trimesh.New(opts))
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return errors.Errorf("eval: %s renders nothing", path)
	}

	out := trimesh.Unwrap(parts[0].Solid)
	for _, p := range parts[1:] {
		if out, err = csg.Apply(csg.OpUnion, out, trimesh.Unwrap(p.Solid), opts); err != nil {
			return err
		}
	}
	if len(parts) == 1 {
		out.Name = parts[0].Name
	}
	if out.Name == "" {
		out.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := stl.WriteFile(flags.out, out, flags.ascii); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d solids, %d faces written to %s\n", len(parts), out.FaceCount(), flags.out)
	return nil
}
