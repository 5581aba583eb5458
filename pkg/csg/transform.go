package csg

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Transform returns a copy of s with every vertex mapped by m. A mirroring
// transform reverses the winding so faces keep pointing outward.
func (s *Solid) Transform(m sdf.M44) *Solid {
	flip := linearDeterminant(m) < 0
	out := NewSolidEps(s.Name, s.eps)
	out.Construct = s.Construct
	for _, id := range s.Faces() {
		p := s.Points(id)
		a, b, c := m.MulPosition(p[0]), m.MulPosition(p[1]), m.MulPosition(p[2])
		if flip {
			b, c = c, b
		}
		// Faces collapsed by a singular transform are dropped. AddFace has
		// no other failure, so anything else is a broken invariant.
		if _, err := out.AddFace(a, b, c); err != nil && errors.Cause(err) != ErrDegenerateFace {
			panic(errors.Wrapf(err, "csg: transform %s", s.Name))
		}
	}
	return out
}

// linearDeterminant returns the determinant of the 3×3 linear part of m.
func linearDeterminant(m sdf.M44) float64 {
	o := m.MulPosition(v3.Vec{})
	ex := m.MulPosition(v3.Vec{X: 1}).Sub(o)
	ey := m.MulPosition(v3.Vec{Y: 1}).Sub(o)
	ez := m.MulPosition(v3.Vec{Z: 1}).Sub(o)
	return ex.Dot(ey.Cross(ez))
}

// Translate returns s moved by (x, y, z).
func (s *Solid) Translate(x, y, z float64) *Solid {
	return s.Transform(sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate returns s rotated by Euler angles in degrees, applied about X,
// then Y, then Z.
func (s *Solid) Rotate(x, y, z float64) *Solid {
	return s.Transform(RotationMatrix(x, y, z))
}

// Scale returns s scaled by (x, y, z). A negative factor mirrors it.
func (s *Solid) Scale(x, y, z float64) *Solid {
	return s.Transform(sdf.Scale3d(v3.Vec{X: x, Y: y, Z: z}))
}

// RotationMatrix returns the Z·Y·X rotation for Euler angles in degrees.
func RotationMatrix(x, y, z float64) sdf.M44 {
	return sdf.RotateZ(radians(z)).Mul(sdf.RotateY(radians(y))).Mul(sdf.RotateX(radians(x)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
