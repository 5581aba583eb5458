package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/tricsg/pkg/csg"
	"github.com/chazu/tricsg/pkg/stl"
	"github.com/spf13/cobra"
)

func newBooleanCmd(flags *globalFlags, op csg.Op) *cobra.Command {
	name := op.String()
	cmd := &cobra.Command{
		Use:   name + " A.stl B.stl",
		Short: fmt.Sprintf("Write the %s of two STL solids", name),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoolean(cmd, flags, op, args[0], args[1])
		},
	}
	addOutputFlags(cmd, flags)
	return cmd
}

func runBoolean(cmd *cobra.Command, flags *globalFlags, op csg.Op, pathA, pathB string) error {
	opts := flags.options(cmd)

	a, err := readSolid(cmd, pathA, opts.Epsilon)
	if err != nil {
		return err
	}
	b, err := readSolid(cmd, pathB, opts.Epsilon)
	if err != nil {
		return err
	}

	out, err := csg.Apply(op, a, b, opts)
	if err != nil {
		return err
	}
	if err := stl.WriteFile(flags.out, out, flags.ascii); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d faces written to %s\n", out.Name, out.FaceCount(), flags.out)
	return nil
}

// readSolid loads an STL file and reports any dropped triangles.
func readSolid(cmd *cobra.Command, path string, eps float64) (*csg.Solid, error) {
	res, err := stl.ReadFile(path, eps)
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		newLogger(cmd).Printf("%s: skipped %d degenerate triangles", path, res.Skipped)
	}
	if res.Solid.Name == "" {
		res.Solid.Name = strings.TrimSuffix(filepath.Base(path), ".stl")
	}
	return res.Solid, nil
}
