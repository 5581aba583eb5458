package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE.stl",
		Short: "Display statistics of an STL solid",
		Long:  "Show face and vertex counts, bounding box, surface area and enclosed volume.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, flags, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, flags *globalFlags, path string) error {
	s, err := readSolid(cmd, path, flags.options(cmd).Epsilon)
	if err != nil {
		return err
	}
	b, err := s.Bound()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "STL Solid Information")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "Name: %s\n", s.Name)
	fmt.Fprintf(w, "File: %s\n\n", path)

	fmt.Fprintf(w, "Faces: %d\n", s.FaceCount())
	fmt.Fprintf(w, "Vertices: %d\n\n", s.VertexCount())

	fmt.Fprintln(w, "Bounding Box:")
	fmt.Fprintf(w, "  Min: (%.6f, %.6f, %.6f)\n", b.Min.X, b.Min.Y, b.Min.Z)
	fmt.Fprintf(w, "  Max: (%.6f, %.6f, %.6f)\n\n", b.Max.X, b.Max.Y, b.Max.Z)

	fmt.Fprintf(w, "Surface Area: %.6f\n", s.Area())
	fmt.Fprintf(w, "Volume: %.6f\n", s.Volume())
	return nil
}
