package csg

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// checkTiling fails unless tris cover face id of s exactly, each wound
// like the face.
func checkTiling(t *testing.T, s *Solid, id FaceID, tris []tri, want int) {
	t.Helper()
	if len(tris) != want {
		t.Fatalf("%d triangles, want %d", len(tris), want)
	}
	n := s.Normal(id)
	total := 0.0
	for _, tr := range tris {
		a, b, c := s.Vertex(tr[0]).Pos, s.Vertex(tr[1]).Pos, s.Vertex(tr[2]).Pos
		cr := b.Sub(a).Cross(c.Sub(a))
		if cr.Dot(n) <= 0 {
			t.Errorf("triangle %v (%v %v %v) is wound against the face", tr, a, b, c)
		}
		total += cr.Length() / 2
	}
	if !near(total, s.FaceArea(id), 1e-12) {
		t.Errorf("triangles cover %g, face area %g", total, s.FaceArea(id))
	}
}

func TestCookbook(t *testing.T) {
	tests := []struct {
		name  string
		split func(s *Solid) []tri
		want  int
	}{
		{"in two", func(s *Solid) []tri { return inTwo(s, 0, 0, vec(1, 0, 0)) }, 2},
		{"in three on edge", func(s *Solid) []tri { return inThreeOnEdge(s, 0, 0, vec(0.5, 0, 0), vec(1.5, 0, 0)) }, 3},
		{"fan", func(s *Solid) []tri { return fan(s, 0, 1, vec(0.5, 0.5, 0)) }, 3},
		{"in four edge face", func(s *Solid) []tri { return inFourEdgeFace(s, 0, 1, vec(1, 1, 0), vec(0.4, 0.4, 0)) }, 4},
		{"in four edge edge", func(s *Solid) []tri { return inFourEdgeEdge(s, 0, 0, vec(1, 0, 0), 1, vec(1, 1, 0)) }, 4},
		{"in four edge edge reversed", func(s *Solid) []tri { return inFourEdgeEdge(s, 0, 1, vec(1, 1, 0), 0, vec(1, 0, 0)) }, 4},
		{"in four edge edge wrapping", func(s *Solid) []tri { return inFourEdgeEdge(s, 0, 2, vec(0, 1, 0), 0, vec(1, 0, 0)) }, 4},
		{"in five", func(s *Solid) []tri { return inFive(s, 0, 0, vec(0.6, 0.6, 0), vec(0.3, 0.3, 0)) }, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := floor(t, 2)
			checkTiling(t, s, 0, tt.split(s), tt.want)
		})
	}
}

func TestInFourEdgeEdgeMidpoint(t *testing.T) {
	s := floor(t, 2)
	tris := inFourEdgeEdge(s, 0, 0, vec(1, 0, 0), 1, vec(1, 1, 0))
	// The uncut edge runs from (0,2) back to the origin.
	m := s.grid
	id, ok := m.find(s.vertices, vec(0, 1, 0), Epsilon)
	if !ok {
		t.Fatal("midpoint of the uncut edge was not added")
	}
	if st := s.vertices[id].State; st != Unknown {
		t.Errorf("midpoint state = %v, want Unknown until faces are classified", st)
	}
	uses := 0
	for _, tr := range tris {
		for _, v := range tr {
			if v == id {
				uses++
			}
		}
	}
	if uses != 3 {
		t.Errorf("midpoint used by %d triangles, want 3", uses)
	}
}

func TestSplitFaceFace(t *testing.T) {
	tests := []struct {
		name       string
		start, end v3.Vec
	}{
		{"toward a corner", vec(0.3, 0.3, 0), vec(0.6, 0.6, 0)},
		{"along the hypotenuse", vec(0.2, 1.0, 0), vec(1.0, 0.2, 0)},
		{"along a leg", vec(0.4, 0.1, 0), vec(1.2, 0.1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := floor(t, 2)
			c := cut{
				start:  Endpoint{Type: EndFace, Pos: tt.start},
				end:    Endpoint{Type: EndFace, Pos: tt.end},
				middle: EndFace,
			}
			checkTiling(t, s, 0, splitCut(s, 0, c), 5)
			for _, p := range []v3.Vec{tt.start, tt.end} {
				v, ok := s.grid.find(s.vertices, p, Epsilon)
				if !ok || s.Vertex(v).State != Boundary {
					t.Errorf("cut point %v not interned as boundary", p)
				}
			}
		})
	}
}

func TestTriangulateCornerOnly(t *testing.T) {
	s := floor(t, 2)
	before := len(s.vertices)
	seg := &Segment{Sides: [2]Side{
		{
			Face:   0,
			Start:  Endpoint{Type: EndVertex, Pos: vec(0, 0, 0), Dist: 0, Index: 0},
			End:    Endpoint{Type: EndVertex, Pos: vec(2, 0, 0), Dist: 2, Index: 1},
			Middle: EndEdge,
		},
		{
			Start:  Endpoint{Type: EndEdge, Dist: -1},
			End:    Endpoint{Type: EndEdge, Dist: 3},
			Middle: EndFace,
		},
	}}
	s.faces[0].segments = []*Segment{seg}
	if got := s.TriangulateKind(0); got != KindVV {
		t.Fatalf("TriangulateKind() = %v, want %v", got, KindVV)
	}
	if added := s.triangulate(0, false); added != nil {
		t.Fatalf("triangulate() = %v, want nil", added)
	}
	if s.FaceCount() != 1 || len(s.vertices) != before {
		t.Errorf("corner-only crossing changed the solid: %v", s)
	}
	for _, v := range s.Face(0).V[:2] {
		if s.Vertex(v).State != Boundary {
			t.Errorf("vertex %d state = %v, want boundary", v, s.Vertex(v).State)
		}
	}
}

func TestTriangulateTrace(t *testing.T) {
	a := floor(t, 2)
	b := triangleSolid(t, "wall", [3]v3.Vec{vec(0.5, -1, -1), vec(0.5, 3, -1), vec(0.5, 1, 1)})
	opts := DefaultOptions()
	opts.Trace = true
	if _, err := splitFaces(a, b, OperandA, opts); err != nil {
		t.Fatal(err)
	}
	for _, id := range a.Faces() {
		if name := a.Face(id).Name; name == "" {
			t.Errorf("face %d has no lineage", id)
		} else {
			t.Logf("face %d: %s", id, name)
		}
	}
}

func TestTriangulateNoSegments(t *testing.T) {
	tests := []struct {
		name string
		segs []*Segment
	}{
		{"nil", nil},
		{"empty", []*Segment{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := floor(t, 2)
			before := *s.Face(0)
			verts := len(s.vertices)
			s.faces[0].segments = tt.segs
			if added := s.triangulate(0, true); added != nil {
				t.Fatalf("triangulate() = %v, want nil", added)
			}
			if got := s.TriangulateKind(0); got != 0 {
				t.Errorf("TriangulateKind() = %v, want 0", got)
			}
			f := s.Face(0)
			if !s.Alive(0) || s.FaceCount() != 1 || f.V != before.V || f.Name != before.Name || len(s.vertices) != verts {
				t.Errorf("face changed: %+v, %d vertices", f, len(s.vertices))
			}
		})
	}
}
