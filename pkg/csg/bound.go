package csg

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
)

// Bound is an axis-aligned bounding box with a cached midpoint.
type Bound struct {
	Min, Mid, Max v3.Vec
}

// NewBound returns the smallest bound containing every point.
func NewBound(points ...v3.Vec) Bound {
	if len(points) == 0 {
		return Bound{}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = v3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = v3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return Bound{Min: min, Mid: min.Add(max).MulScalar(0.5), Max: max}
}

// Extend returns the smallest bound containing b and o.
func (b Bound) Extend(o Bound) Bound {
	return NewBound(b.Min, b.Max, o.Min, o.Max)
}

// Intersect reports whether b and o share any point. The test is exact:
// boxes that touch on a face, edge or corner intersect.
func (b Bound) Intersect(o Bound) bool {
	return !(b.Max.X < o.Min.X || b.Min.X > o.Max.X ||
		b.Max.Y < o.Min.Y || b.Min.Y > o.Max.Y ||
		b.Max.Z < o.Min.Z || b.Min.Z > o.Max.Z)
}

// Overlap is Intersect with both boxes widened by eps on every axis, for
// meshes that may be geometrically coincident.
func (b Bound) Overlap(o Bound, eps float64) bool {
	return !(b.Max.X+eps < o.Min.X || b.Min.X-eps > o.Max.X ||
		b.Max.Y+eps < o.Min.Y || b.Min.Y-eps > o.Max.Y ||
		b.Max.Z+eps < o.Min.Z || b.Min.Z-eps > o.Max.Z)
}

// Contains reports whether p lies inside b, allowing eps on every axis.
func (b Bound) Contains(p v3.Vec, eps float64) bool {
	return p.X >= b.Min.X-eps && p.X <= b.Max.X+eps &&
		p.Y >= b.Min.Y-eps && p.Y <= b.Max.Y+eps &&
		p.Z >= b.Min.Z-eps && p.Z <= b.Max.Z+eps
}

// Size returns the extent along each axis.
func (b Bound) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Box3 converts b to an sdfx box.
func (b Bound) Box3() sdf.Box3 {
	return sdf.Box3{Min: b.Min, Max: b.Max}
}

// BoundFromBox3 converts an sdfx box to a Bound.
func BoundFromBox3(bb sdf.Box3) Bound {
	return NewBound(bb.Min, bb.Max)
}

// rect widens b by eps and converts it to an R-tree rectangle. The R-tree
// treats touching rectangles as disjoint, so the widening is what lets
// coincident faces find each other.
func (b Bound) rect(eps float64) rtreego.Rect {
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{b.Min.X - eps, b.Min.Y - eps, b.Min.Z - eps},
		rtreego.Point{b.Max.X + eps, b.Max.Y + eps, b.Max.Z + eps},
	)
	if err != nil {
		// Only reachable with NaN coordinates.
		panic("csg: invalid bound: " + err.Error())
	}
	return r
}
