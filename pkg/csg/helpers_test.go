package csg

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func unitCube(t *testing.T) *Solid {
	t.Helper()
	return makeBox(t, 1, 1, 1)
}

func makeBox(t *testing.T, x, y, z float64) *Solid {
	t.Helper()
	s, err := Box(x, y, z)
	if err != nil {
		t.Fatalf("Box(%g, %g, %g): %v", x, y, z, err)
	}
	return s
}

// triangleSolid returns a solid holding the given triangles, which need
// not be closed.
func triangleSolid(t *testing.T, name string, tris ...[3]v3.Vec) *Solid {
	t.Helper()
	s := NewSolid(name)
	for _, tr := range tris {
		if _, err := s.AddFace(tr[0], tr[1], tr[2]); err != nil {
			t.Fatalf("AddFace(%v): %v", tr, err)
		}
	}
	return s
}

func checkBound(t *testing.T, s *Solid, min, max v3.Vec) {
	t.Helper()
	b, err := s.Bound()
	if err != nil {
		t.Fatalf("Bound(): %v", err)
	}
	got := [6]float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z}
	want := [6]float64{min.X, min.Y, min.Z, max.X, max.Y, max.Z}
	for i := range got {
		if !near(got[i], want[i], 1e-6) {
			t.Fatalf("bound = %v..%v, want %v..%v", b.Min, b.Max, min, max)
		}
	}
}

// checkWinding fails if any face of s is wound against ref.
func checkWinding(t *testing.T, s *Solid, ref v3.Vec) {
	t.Helper()
	for _, id := range s.Faces() {
		if s.Normal(id).Dot(ref) <= 0 {
			t.Errorf("face %d normal %v opposes %v", id, s.Normal(id), ref)
		}
	}
}
