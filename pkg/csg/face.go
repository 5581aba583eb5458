package csg

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FaceID addresses a face in its Solid's arena.
type FaceID int

// FaceState is the classification of a face against the other operand.
type FaceState uint8

const (
	FaceUnknown  FaceState = iota
	FaceInside             // behind the other solid's surface
	FaceOutside            // in front of the other solid's surface
	FaceSame               // coplanar with an overlapping face of the same orientation
	FaceOpposite           // coplanar with an overlapping face of the opposite orientation
)

func (s FaceState) String() string {
	switch s {
	case FaceUnknown:
		return "unknown"
	case FaceInside:
		return "inside"
	case FaceOutside:
		return "outside"
	case FaceSame:
		return "same"
	case FaceOpposite:
		return "opposite"
	default:
		return fmt.Sprintf("FaceState(%d)", int(s))
	}
}

// Face is an oriented triangle. Its vertices are in counter-clockwise
// order seen from outside the solid.
type Face struct {
	V     [3]VertexID
	State FaceState

	// Name is a debug label recording split lineage. It is only filled
	// when Options.Trace is set.
	Name string

	segments []*Segment
	dead     bool

	cached   bool
	normal   v3.Vec
	centroid v3.Vec
	bound    Bound
	area     float64
}

// Segments returns the intersection segments attached to the face during
// the current operation, sorted in path order.
func (f *Face) Segments() []*Segment {
	return f.segments
}

// invalidate drops cached geometry after the vertices change.
func (f *Face) invalidate() {
	f.cached = false
}

// faceGeometry holds the derived geometry of a triangle.
type faceGeometry struct {
	normal   v3.Vec
	centroid v3.Vec
	bound    Bound
	area     float64
}

func triangleGeometry(a, b, c v3.Vec) faceGeometry {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	g := faceGeometry{
		centroid: a.Add(b).Add(c).MulScalar(1.0 / 3.0),
		bound:    NewBound(a, b, c),
		area:     l / 2,
	}
	if l > 0 {
		g.normal = n.MulScalar(1 / l)
	}
	return g
}

// geometry returns the cached normal, centroid, bound and area of face id,
// computing them on first use.
func (s *Solid) geometry(id FaceID) *Face {
	f := &s.faces[id]
	if !f.cached {
		g := triangleGeometry(s.vertices[f.V[0]].Pos, s.vertices[f.V[1]].Pos, s.vertices[f.V[2]].Pos)
		f.normal, f.centroid, f.bound, f.area = g.normal, g.centroid, g.bound, g.area
		f.cached = true
	}
	return f
}

// Normal returns the unit normal of face id.
func (s *Solid) Normal(id FaceID) v3.Vec { return s.geometry(id).normal }

// Centroid returns the centroid of face id.
func (s *Solid) Centroid(id FaceID) v3.Vec { return s.geometry(id).centroid }

// FaceBound returns the bound of face id.
func (s *Solid) FaceBound(id FaceID) Bound { return s.geometry(id).bound }

// FaceArea returns the area of face id.
func (s *Solid) FaceArea(id FaceID) float64 { return s.geometry(id).area }

// Points returns the three corner positions of face id.
func (s *Solid) Points(id FaceID) [3]v3.Vec {
	f := &s.faces[id]
	return [3]v3.Vec{s.vertices[f.V[0]].Pos, s.vertices[f.V[1]].Pos, s.vertices[f.V[2]].Pos}
}

// Invert reverses the winding of face id, flipping its normal.
func (s *Solid) Invert(id FaceID) {
	f := &s.faces[id]
	f.V[0], f.V[1] = f.V[1], f.V[0]
	f.invalidate()
}

// FaceHas reports whether any vertex of face id holds state. It is the
// loose aggregate used for membership tests, not a majority vote.
func (s *Solid) FaceHas(id FaceID, state VertexState) bool {
	for _, v := range s.faces[id].V {
		if s.vertices[v].State == state {
			return true
		}
	}
	return false
}

// distance returns the signed distance from p to the plane of face id.
func (s *Solid) distance(id FaceID, p v3.Vec) float64 {
	f := s.geometry(id)
	return f.normal.Dot(p.Sub(s.vertices[f.V[0]].Pos))
}

// sign classifies a signed distance as -1, 0 or +1 within eps.
func sign(d, eps float64) int {
	switch {
	case d > eps:
		return 1
	case d < -eps:
		return -1
	default:
		return 0
	}
}

// hasPoint reports whether p, assumed to lie in the plane of face id, is
// inside the triangle or on its border.
func (s *Solid) hasPoint(id FaceID, p v3.Vec, eps float64) bool {
	f := s.geometry(id)
	pts := s.Points(id)
	for i := 0; i < 3; i++ {
		a, b := pts[i], pts[(i+1)%3]
		edge := b.Sub(a)
		side := f.normal.Dot(edge.Cross(p.Sub(a)))
		if side < -eps*edge.Length() {
			return false
		}
	}
	return true
}
