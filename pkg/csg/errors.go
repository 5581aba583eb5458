package csg

import "github.com/pkg/errors"

var (
	// ErrDegenerateFace is returned when a face is built from coincident
	// or collinear vertices.
	ErrDegenerateFace = errors.New("csg: degenerate face")

	// ErrEmptyBound is returned when the bound of a solid without faces is
	// requested.
	ErrEmptyBound = errors.New("csg: bound of empty solid")

	// ErrSplitLimit is returned when triangulation keeps producing faces
	// past the growth limit set by Options.MaxSplitFactor.
	ErrSplitLimit = errors.New("csg: face split limit exceeded")

	// ErrRayCast is returned when a classification ray could not be moved
	// off every face plane of the other solid.
	ErrRayCast = errors.New("csg: classification ray did not settle")
)
