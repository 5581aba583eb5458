package csg

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// tri is a replacement triangle over vertex IDs.
type tri [3]VertexID

// recipe splits face id along one clipped segment and returns the
// replacement triangles. Recipes may intern new vertices in s but never
// change its faces.
type recipe func(s *Solid, id FaceID, c cut) []tri

// recipes is the single-segment cookbook.
var recipes = map[Kind]recipe{
	KindVV: splitNone,
	KindVE: splitVertexEdge,
	KindEV: splitEdgeVertex,
	KindEE: splitEdgeEdge,
	KindVF: splitVertexFace,
	KindFV: splitFaceVertex,
	KindEF: splitEdgeFace,
	KindFE: splitFaceEdge,
	KindFF: splitFaceFace,
}

// splitCut applies the cookbook entry for c.
func splitCut(s *Solid, id FaceID, c cut) []tri {
	k := c.kind()
	r, ok := recipes[k]
	if !ok {
		panic(fmt.Sprintf("csg: no recipe for segment kind %v", k))
	}
	return r(s, id, c)
}

// splitPoint interns a point on the cut. Points on the other solid's
// surface are Boundary.
func (s *Solid) splitPoint(p v3.Vec) VertexID {
	v := s.intern(p)
	s.Classify(v, Boundary, false)
	return v
}

// midpoint interns the midpoint of edge a-b. It is off the cut and stays
// Unknown; face classification floods a state into it.
func (s *Solid) midpoint(a, b VertexID) VertexID {
	return s.intern(s.vertices[a].Pos.Add(s.vertices[b].Pos).MulScalar(0.5))
}

// corners returns the face vertices starting at corner k.
func corners(f *Face, k int) (a, b, c VertexID) {
	return f.V[k%3], f.V[(k+1)%3], f.V[(k+2)%3]
}

// edgeBetween returns the edge joining corners i and j.
func edgeBetween(i, j int) int {
	if (i+1)%3 == j {
		return i
	}
	if (j+1)%3 == i {
		return j
	}
	panic(fmt.Sprintf("csg: corners %d and %d share no edge", i, j))
}

func splitNone(*Solid, FaceID, cut) []tri { return nil }

// inTwo splits edge e at p. It serves both the corner-to-opposite-edge cut
// and a cut that runs along edge e and ends inside it.
func inTwo(s *Solid, id FaceID, e int, p v3.Vec) []tri {
	a, b, c := corners(&s.faces[id], e)
	v := s.splitPoint(p)
	return []tri{{a, v, c}, {v, b, c}}
}

// inThreeOnEdge splits edge e at p1 and p2, p1 being nearer the edge start.
func inThreeOnEdge(s *Solid, id FaceID, e int, p1, p2 v3.Vec) []tri {
	a, b, c := corners(&s.faces[id], e)
	v1, v2 := s.splitPoint(p1), s.splitPoint(p2)
	return []tri{{a, v1, c}, {v1, v2, c}, {v2, b, c}}
}

// fan splits the face into three around interior point p, starting at
// corner k.
func fan(s *Solid, id FaceID, k int, p v3.Vec) []tri {
	a, b, c := corners(&s.faces[id], k)
	v := s.splitPoint(p)
	return []tri{{a, b, v}, {b, c, v}, {c, a, v}}
}

// inFourEdgeFace splits edge e at pe and joins it to interior point pf.
func inFourEdgeFace(s *Solid, id FaceID, e int, pe, pf v3.Vec) []tri {
	a, b, c := corners(&s.faces[id], e)
	ve, vf := s.splitPoint(pe), s.splitPoint(pf)
	return []tri{{a, ve, vf}, {ve, b, vf}, {b, c, vf}, {c, a, vf}}
}

// inFourEdgeEdge cuts across edges e1 and e2 and adds the midpoint of the
// uncut edge, so the quad left beside the cut becomes three well-shaped
// triangles instead of two slivers.
func inFourEdgeEdge(s *Solid, id FaceID, e1 int, p1 v3.Vec, e2 int, p2 v3.Vec) []tri {
	if (e1+2)%3 == e2 {
		e1, e2 = e2, e1
		p1, p2 = p2, p1
	}
	if (e1+1)%3 != e2 {
		panic(fmt.Sprintf("csg: edge-edge cut on edges %d and %d", e1, e2))
	}
	a, b, c := corners(&s.faces[id], e1)
	v1, v2 := s.splitPoint(p1), s.splitPoint(p2)
	m := s.midpoint(c, a)
	return []tri{{v1, b, v2}, {a, v1, m}, {v1, v2, m}, {v2, c, m}}
}

// inFive splits around two interior points lined up with corner k; far is
// the point farther from the corner.
func inFive(s *Solid, id FaceID, k int, far, near v3.Vec) []tri {
	a, b, c := corners(&s.faces[id], k)
	v1, v2 := s.splitPoint(far), s.splitPoint(near)
	return []tri{{b, c, v1}, {b, v1, v2}, {c, v2, v1}, {b, v2, a}, {c, a, v2}}
}

func splitVertexEdge(s *Solid, id FaceID, c cut) []tri {
	if c.middle == EndEdge {
		return inTwo(s, id, edgeBetween(c.start.Index, c.end.Index), c.end.Pos)
	}
	return inTwo(s, id, c.end.Index, c.end.Pos)
}

func splitEdgeVertex(s *Solid, id FaceID, c cut) []tri {
	if c.middle == EndEdge {
		return inTwo(s, id, edgeBetween(c.start.Index, c.end.Index), c.start.Pos)
	}
	return inTwo(s, id, c.start.Index, c.start.Pos)
}

func splitEdgeEdge(s *Solid, id FaceID, c cut) []tri {
	if c.middle != EndEdge {
		return inFourEdgeEdge(s, id, c.start.Index, c.start.Pos, c.end.Index, c.end.Pos)
	}
	e := edgeBetween(c.start.Index, c.end.Index)
	if math.Abs(c.end.Dist-c.start.Dist) <= s.eps {
		return inTwo(s, id, e, c.end.Pos)
	}
	origin := s.vertices[s.faces[id].V[e]].Pos
	p1, p2 := c.start.Pos, c.end.Pos
	if p1.Sub(origin).Length() > p2.Sub(origin).Length() {
		p1, p2 = p2, p1
	}
	return inThreeOnEdge(s, id, e, p1, p2)
}

func splitVertexFace(s *Solid, id FaceID, c cut) []tri {
	return fan(s, id, c.start.Index, c.end.Pos)
}

func splitFaceVertex(s *Solid, id FaceID, c cut) []tri {
	return fan(s, id, c.end.Index, c.start.Pos)
}

func splitEdgeFace(s *Solid, id FaceID, c cut) []tri {
	return inFourEdgeFace(s, id, c.start.Index, c.start.Pos, c.end.Pos)
}

func splitFaceEdge(s *Solid, id FaceID, c cut) []tri {
	return inFourEdgeFace(s, id, c.end.Index, c.end.Pos, c.start.Pos)
}

func splitFaceFace(s *Solid, id FaceID, c cut) []tri {
	if samePoint(c.start.Pos, c.end.Pos, s.eps) {
		return fan(s, id, 0, c.start.Pos)
	}
	// Prefer the corner most closely lined up with the cut, and take the
	// first layout whose five triangles all keep the face orientation.
	pts := s.Points(id)
	n := s.Normal(id)
	dir := c.start.Pos.Sub(c.end.Pos).Normalize()
	order := []int{0, 1, 2}
	align := func(k int) float64 {
		return math.Abs(dir.Dot(c.end.Pos.Sub(pts[k]).Normalize()))
	}
	sort.SliceStable(order, func(i, j int) bool { return align(order[i]) > align(order[j]) })
	for _, k := range order {
		far, near := c.start.Pos, c.end.Pos
		if pts[k].Sub(far).Length() < pts[k].Sub(near).Length() {
			far, near = near, far
		}
		if fiveWound(n, pts[k], pts[(k+1)%3], pts[(k+2)%3], far, near, s.eps) {
			return inFive(s, id, k, far, near)
		}
	}
	return fan(s, id, 0, c.start.Pos)
}

// fiveWound reports whether the inFive layout around corner a keeps every
// triangle wound along n.
func fiveWound(n, a, b, c, far, near v3.Vec, eps float64) bool {
	for _, t := range [5][3]v3.Vec{
		{b, c, far}, {b, far, near}, {c, near, far}, {b, near, a}, {c, a, near},
	} {
		if t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Dot(n) <= eps*eps {
			return false
		}
	}
	return true
}

// triangulate splits face id along the segments attached to it. It
// returns the replacement faces, or nil when the face is left whole: it
// has no segments, every crossing only touches corners, or the split would
// leave fewer than two proper triangles.
func (s *Solid) triangulate(id FaceID, trace bool) []FaceID {
	segs := s.faces[id].segments
	if len(segs) == 0 {
		return nil
	}
	cuts := make([]cut, len(segs))
	for i, seg := range segs {
		cuts[i] = seg.clip(s.eps)
		cuts[i].classify(s)
	}

	mark := VertexID(len(s.vertices))
	var tris []tri
	label := ""
	if len(cuts) == 1 {
		tris = splitCut(s, id, cuts[0])
		label = cuts[0].kind().String()
	} else if p, ok := newPath(s, id, cuts); ok {
		tris = p.split(s, id)
		label = p.String()
	} else {
		tris = firstSplit(s, id, cuts)
		label = KindMulti.String()
	}
	added := s.replace(id, tris)
	for v := mark; v < VertexID(len(s.vertices)); v++ {
		s.release(v)
	}
	if added == nil {
		return nil
	}
	if trace {
		parent := s.faces[id].Name
		if parent == "" {
			parent = fmt.Sprintf("f%d", id)
		}
		for i, f := range added {
			s.faces[f].Name = fmt.Sprintf("%s/%s.%d", parent, label, i+1)
		}
	}
	return added
}

// replace swaps face id for the proper triangles among tris. Nothing
// changes unless at least two survive.
func (s *Solid) replace(id FaceID, tris []tri) []FaceID {
	var added []FaceID
	for _, t := range tris {
		if f, ok := s.link(t[0], t[1], t[2]); ok {
			added = append(added, f)
		}
	}
	if len(added) < 2 {
		for _, f := range added {
			s.RemoveFace(f)
		}
		return nil
	}
	s.RemoveFace(id)
	return added
}
