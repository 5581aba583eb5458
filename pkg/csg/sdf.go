package csg

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// FromSDF meshes an implicit solid with uniform marching cubes over cells
// cells along its longest axis. Degenerate triangles are dropped and the
// result is wound outward.
func FromSDF(name string, s sdf.SDF3, cells int) (*Solid, error) {
	if cells <= 0 {
		return nil, errors.Errorf("csg: invalid marching cubes resolution %d", cells)
	}
	out := NewSolid(name)
	for _, t := range render.ToTriangles(s, render.NewMarchingCubesUniform(cells)) {
		if _, err := out.AddFace(t[0], t[1], t[2]); err != nil && errors.Cause(err) != ErrDegenerateFace {
			return nil, errors.Wrapf(err, "meshing %q", name)
		}
	}
	if out.FaceCount() == 0 {
		return nil, errors.Wrapf(ErrEmptyBound, "marching cubes produced no faces for %q", name)
	}
	if out.Volume() < 0 {
		for _, id := range out.Faces() {
			out.Invert(id)
		}
	}
	return out, nil
}
