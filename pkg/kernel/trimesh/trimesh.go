// Package trimesh implements the kernel.Kernel interface on top of the
// polyhedral boolean engine in pkg/csg. Booleans are exact up to the
// engine epsilon and ToMesh emits the solid's own triangles, so a box
// renders as 12 triangles rather than a marching-cubes approximation.
package trimesh

import (
	"fmt"

	"github.com/chazu/tricsg/pkg/csg"
	"github.com/chazu/tricsg/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*TrimeshKernel)(nil)

// DefaultTorusSagitta is the chord error used to choose the torus
// resolution.
const DefaultTorusSagitta = 0.05

// trimeshSolid wraps a *csg.Solid to implement kernel.Solid.
type trimeshSolid struct {
	s *csg.Solid
}

// BoundingBox returns the axis-aligned bounding box. An empty solid
// reports a zero box.
func (s *trimeshSolid) BoundingBox() (min, max [3]float64) {
	b, err := s.s.Bound()
	if err != nil {
		return min, max
	}
	min = [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	max = [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	return min, max
}

// TrimeshKernel implements kernel.Kernel using pkg/csg.
type TrimeshKernel struct {
	opts    csg.Options
	sagitta float64
}

// New returns a kernel whose booleans run with opts.
func New(opts csg.Options) *TrimeshKernel {
	return &TrimeshKernel{opts: opts, sagitta: DefaultTorusSagitta}
}

// Default returns a kernel with csg.DefaultOptions.
func Default() *TrimeshKernel {
	return New(csg.DefaultOptions())
}

// Unwrap returns the polyhedral solid behind a kernel.Solid produced by
// this kernel.
func Unwrap(s kernel.Solid) *csg.Solid {
	return s.(*trimeshSolid).s
}

// Wrap exposes a polyhedral solid, e.g. one read from an STL file, as a
// kernel.Solid.
func Wrap(s *csg.Solid) kernel.Solid {
	return &trimeshSolid{s: s}
}

// Box creates a box with its minimum corner at the origin.
func (k *TrimeshKernel) Box(x, y, z float64) kernel.Solid {
	s, err := csg.Box(x, y, z)
	if err != nil {
		panic(fmt.Sprintf("trimesh.Box: %v", err))
	}
	return Wrap(s.Translate(x/2, y/2, z/2))
}

// Cylinder creates a cylinder centred on the origin with its axis on Z.
// With fewer than three segments the sector count is chosen from the
// default chord error.
func (k *TrimeshKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	var (
		s   *csg.Solid
		err error
	)
	if segments < 3 {
		s, err = csg.Cylinder(csg.AxisZ, radius, height, csg.DefaultSagitta)
	} else {
		s, err = csg.CylinderN(csg.AxisZ, radius, height, segments)
	}
	if err != nil {
		panic(fmt.Sprintf("trimesh.Cylinder: %v", err))
	}
	return Wrap(s)
}

// Torus creates a torus centred on the origin around the Z axis.
func (k *TrimeshKernel) Torus(inner, outer float64) kernel.Solid {
	s, err := csg.Torus(inner, outer, k.sagitta)
	if err != nil {
		panic(fmt.Sprintf("trimesh.Torus: %v", err))
	}
	return Wrap(s)
}

func (k *TrimeshKernel) apply(op csg.Op, a, b kernel.Solid) (kernel.Solid, error) {
	s, err := csg.Apply(op, Unwrap(a), Unwrap(b), k.opts)
	if err != nil {
		return nil, fmt.Errorf("trimesh: %s: %w", op, err)
	}
	return Wrap(s), nil
}

// Union returns the union of two solids.
func (k *TrimeshKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.apply(csg.OpUnion, a, b)
}

// Difference returns the difference a - b.
func (k *TrimeshKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.apply(csg.OpDifference, a, b)
}

// Intersection returns the intersection of two solids.
func (k *TrimeshKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.apply(csg.OpIntersection, a, b)
}

// Translate moves a solid by (x, y, z).
func (k *TrimeshKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return Wrap(Unwrap(s).Translate(x, y, z))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *TrimeshKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return Wrap(Unwrap(s).Rotate(x, y, z))
}

// ToMesh emits one flat-shaded facet per live face.
func (k *TrimeshKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	solid := Unwrap(s)
	faces := solid.Faces()
	mesh := kernel.NewMesh(len(faces))
	for _, id := range faces {
		p := solid.Points(id)
		n := solid.Normal(id)
		mesh.AddFacet([3][3]float64{
			{p[0].X, p[0].Y, p[0].Z},
			{p[1].X, p[1].Y, p[1].Z},
			{p[2].X, p[2].Y, p[2].Z},
		}, [3]float64{n.X, n.Y, n.Z})
	}
	mesh.PartName = solid.Name
	return mesh, nil
}
