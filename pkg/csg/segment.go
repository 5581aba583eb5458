package csg

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// EndType says where a segment endpoint, or the stretch between the
// endpoints, lies on its face.
type EndType uint8

const (
	EndVertex EndType = iota + 1 // on a face corner
	EndEdge                      // on a face edge, strictly between corners
	EndFace                      // strictly inside the face
)

func (t EndType) String() string {
	switch t {
	case EndVertex:
		return "vertex"
	case EndEdge:
		return "edge"
	case EndFace:
		return "face"
	default:
		return fmt.Sprintf("EndType(%d)", int(t))
	}
}

// Operand identifies which input solid a segment side belongs to.
type Operand uint8

const (
	OperandA Operand = iota
	OperandB
)

func (o Operand) String() string {
	if o == OperandA {
		return "A"
	}
	return "B"
}

// Kind is the topological case of a face's crossing, used to pick a
// triangulation recipe.
type Kind uint8

const (
	KindVV    Kind = iota + 1 // corner to corner: no split
	KindVE                    // corner to edge
	KindEV                    // edge to corner
	KindEE                    // edge to edge
	KindVF                    // corner to interior
	KindFV                    // interior to corner
	KindEF                    // edge to interior
	KindFE                    // interior to edge
	KindFF                    // interior to interior
	KindMulti                 // more than one segment on the face
)

var kindNames = map[Kind]string{
	KindVV: "vertex-vertex", KindVE: "vertex-edge", KindEV: "edge-vertex",
	KindEE: "edge-edge", KindVF: "vertex-face", KindFV: "face-vertex",
	KindEF: "edge-face", KindFE: "face-edge", KindFF: "face-face",
	KindMulti: "multi",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// line is the intersection of two face planes: Point + t*Dir, |Dir| = 1.
type line struct {
	Point v3.Vec
	Dir   v3.Vec
}

// planeLine returns the line where the planes n1·x = h1 and n2·x = h2
// meet, or false when the planes are parallel within eps.
func planeLine(n1 v3.Vec, h1 float64, n2 v3.Vec, h2 float64, eps float64) (line, bool) {
	u := n1.Cross(n2)
	uu := u.Dot(u)
	if math.Sqrt(uu) < eps {
		return line{}, false
	}
	p := n2.Cross(u).MulScalar(h1).Add(u.Cross(n1).MulScalar(h2)).MulScalar(1 / uu)
	return line{Point: p, Dir: u.Normalize()}, true
}

// distance returns the signed position of p along the line.
func (l line) distance(p v3.Vec) float64 {
	return p.Sub(l.Point).Dot(l.Dir)
}

// Endpoint is one end of a segment side.
type Endpoint struct {
	Type EndType
	Pos  v3.Vec
	Dist float64 // position along the intersection line

	// Index is the corner (EndVertex) or the edge Index→Index+1 (EndEdge)
	// the endpoint was derived from. A clipped endpoint keeps the index of
	// the end it replaced.
	Index int
}

// Tag names the endpoint relative to its operand, e.g. "A.v1" or "B.e3".
func (e Endpoint) Tag(o Operand) string {
	switch e.Type {
	case EndVertex:
		return fmt.Sprintf("%s.v%d", o, e.Index+1)
	case EndEdge:
		return fmt.Sprintf("%s.e%d", o, e.Index+1)
	default:
		return fmt.Sprintf("%s.f", o)
	}
}

// Side is the part of a segment lying on one face.
type Side struct {
	Operand    Operand
	Face       FaceID
	Start, End Endpoint
	Middle     EndType
	Signs      [3]int
}

// Segment is the intersection between one face of each operand. Side 0
// belongs to the solid being split, side 1 to the other solid.
type Segment struct {
	Sides [2]Side

	line line
	key  [2]float64
}

// Line returns a point on the intersection line and its unit direction.
func (s *Segment) Line() (point, dir v3.Vec) {
	return s.line.Point, s.line.Dir
}

func (s *Segment) String() string {
	a, b := s.Sides[0], s.Sides[1]
	return fmt.Sprintf("segment %s→%s × %s→%s",
		a.Start.Tag(a.Operand), a.End.Tag(a.Operand),
		b.Start.Tag(b.Operand), b.End.Tag(b.Operand))
}

// newSide derives the endpoints of face id along l from the signed
// distances d of its corners to the other face's plane. It returns false
// when an edge crossing cannot be located.
func newSide(s *Solid, id FaceID, op Operand, l line, d [3]float64, eps float64) (Side, bool) {
	pts := s.Points(id)
	side := Side{Operand: op, Face: id}
	for i := range d {
		side.Signs[i] = sign(d[i], eps)
	}
	var ends []Endpoint
	setVertex := func(i int) {
		ends = append(ends, Endpoint{Type: EndVertex, Pos: pts[i], Dist: l.distance(pts[i]), Index: i})
	}
	sg := side.Signs
	for i := 0; i < 3; i++ {
		if sg[i] != 0 {
			continue
		}
		setVertex(i)
		j, k := (i+1)%3, (i+2)%3
		if sg[j] == sg[k] {
			// The corner touches the other plane alone.
			setVertex(i)
		}
	}
	if len(ends) < 2 {
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			if sg[i]*sg[j] >= 0 {
				continue
			}
			den := d[i] - d[j]
			if math.Abs(den) < eps {
				return Side{}, false
			}
			t := d[i] / den
			p := pts[i].Add(pts[j].Sub(pts[i]).MulScalar(t))
			ends = append(ends, Endpoint{Type: EndEdge, Pos: p, Dist: l.distance(p), Index: i})
		}
	}
	if len(ends) != 2 {
		panic(fmt.Sprintf("csg: face %d produced %d segment ends for signs %v", id, len(ends), sg))
	}
	side.Start, side.End = ends[0], ends[1]
	switch {
	case side.Start.Type == EndVertex && side.End.Type == EndVertex:
		if side.Start.Index == side.End.Index {
			side.Middle = EndVertex
		} else {
			side.Middle = EndEdge
		}
	default:
		side.Middle = EndFace
	}
	if side.Start.Dist > side.End.Dist {
		side.Start, side.End = side.End, side.Start
	}
	return side, true
}

// overlaps reports whether the two sides share more than a single point
// of the line.
func (s *Segment) overlaps(eps float64) bool {
	a, b := s.Sides[0], s.Sides[1]
	return !(a.End.Dist < b.Start.Dist+eps || b.End.Dist < a.Start.Dist+eps)
}

// cut is a segment clipped to the stretch both faces share, seen from
// side 0.
type cut struct {
	seg    *Segment
	start  Endpoint
	end    Endpoint
	middle EndType
}

// clip narrows side 0 to the part also covered by side 1. A clipped end
// takes the middle type of side 0, since it lies wherever side 0 runs.
func (s *Segment) clip(eps float64) cut {
	a, b := s.Sides[0], s.Sides[1]
	c := cut{seg: s, start: a.Start, end: a.End, middle: a.Middle}
	if b.Start.Dist > a.Start.Dist+eps {
		c.start = Endpoint{Type: a.Middle, Pos: b.Start.Pos, Dist: b.Start.Dist, Index: a.Start.Index}
	}
	if b.End.Dist < a.End.Dist-eps {
		c.end = Endpoint{Type: a.Middle, Pos: b.End.Pos, Dist: b.End.Dist, Index: a.End.Index}
	}
	return c
}

// Kind returns the triangulation case of a single segment on side 0.
func (s *Segment) Kind(eps float64) Kind {
	return s.clip(eps).kind()
}

func (c cut) kind() Kind {
	switch c.start.Type {
	case EndVertex:
		switch c.end.Type {
		case EndVertex:
			return KindVV
		case EndEdge:
			return KindVE
		case EndFace:
			return KindVF
		}
	case EndEdge:
		switch c.end.Type {
		case EndVertex:
			return KindEV
		case EndEdge:
			return KindEE
		case EndFace:
			return KindEF
		}
	case EndFace:
		switch c.end.Type {
		case EndVertex:
			return KindFV
		case EndEdge:
			return KindFE
		case EndFace:
			return KindFF
		}
	}
	panic(fmt.Sprintf("csg: no triangulation kind for %v→%v", c.start.Type, c.end.Type))
}

// TriangulateKind returns the case used to split face id of s: KindMulti
// when the face carries more than one segment, otherwise the kind of its
// only segment. A face without segments has kind 0.
func (s *Solid) TriangulateKind(id FaceID) Kind {
	segs := s.faces[id].segments
	switch len(segs) {
	case 0:
		return 0
	case 1:
		return segs[0].Kind(s.eps)
	default:
		return KindMulti
	}
}

// classify marks the corners of side 0's face that lie on the other face's
// plane and inside the shared stretch as Boundary. Corners off the plane
// keep their state: a sign against one face of the other solid says
// nothing about the whole solid.
func (c cut) classify(s *Solid) {
	f := &s.faces[c.seg.Sides[0].Face]
	for _, e := range [2]Endpoint{c.start, c.end} {
		if e.Type == EndVertex {
			s.Classify(f.V[e.Index], Boundary, false)
		}
	}
}
