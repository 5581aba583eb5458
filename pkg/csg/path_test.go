package csg

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func at(typ EndType, p v3.Vec, i int) Endpoint {
	return Endpoint{Type: typ, Pos: p, Index: i}
}

func inner(x, y float64) Endpoint { return at(EndFace, vec(x, y, 0), 0) }

// chainOf joins the endpoints with cuts crossing the face.
func chainOf(ends ...Endpoint) []cut {
	var cuts []cut
	for i := 1; i < len(ends); i++ {
		cuts = append(cuts, cut{start: ends[i-1], end: ends[i], middle: EndFace})
	}
	return cuts
}

// run returns a cut lying along a face edge.
func run(from, to Endpoint) cut {
	return cut{start: from, end: to, middle: EndEdge}
}

// usesAll fails unless every vertex at pts appears in tris.
func usesAll(t *testing.T, s *Solid, tris []tri, pts ...v3.Vec) {
	t.Helper()
	for _, p := range pts {
		v, ok := s.grid.find(s.vertices, p, Epsilon)
		if !ok {
			t.Errorf("no vertex at %v", p)
			continue
		}
		used := false
		for _, tr := range tris {
			used = used || tr[0] == v || tr[1] == v || tr[2] == v
		}
		if !used {
			t.Errorf("vertex %v at %v is not used", v, p)
		}
	}
}

func TestPathTableComplete(t *testing.T) {
	kinds := []PathKind{VertexInEdge, VertexToEdge, VertexToVertex, EdgeInVertex, EdgeToVertex, EdgeInEdge, EdgeToEdge}
	for _, k := range kinds {
		for _, w := range []Winding{Outbound, Inbound} {
			if pathTable[pathKey{k, w}] == nil {
				t.Errorf("no handler for %v.%v", k, w)
			}
		}
	}
	if len(pathTable) != 14 {
		t.Errorf("pathTable has %d entries, want 14", len(pathTable))
	}
}

// The floor has corners (0,0), (2,0) and (0,2); edge 0 lies on y = 0,
// edge 1 on x + y = 2 and edge 2 on x = 0.
func TestPathHandlers(t *testing.T) {
	c0 := at(EndVertex, vec(0, 0, 0), 0)
	c1 := at(EndVertex, vec(2, 0, 0), 1)
	c2 := at(EndVertex, vec(0, 2, 0), 2)
	edge := func(x, y float64) Endpoint { return at(EndEdge, vec(x, y, 0), 0) }

	tests := []struct {
		name    string
		cuts    []cut
		kind    PathKind
		winding Winding
		want    int
		used    []v3.Vec
	}{
		{
			name: "edge to edge outbound",
			cuts: chainOf(edge(1, 0), inner(0.6, 0.6), edge(0, 1)),
			kind: EdgeToEdge, winding: Outbound, want: 6,
			used: []v3.Vec{vec(1, 0, 0), vec(0.6, 0.6, 0), vec(0, 1, 0), vec(1, 1, 0)},
		},
		{
			name: "edge to edge inbound",
			cuts: chainOf(edge(0, 1), inner(0.6, 0.6), edge(1, 0)),
			kind: EdgeToEdge, winding: Inbound, want: 6,
			used: []v3.Vec{vec(1, 0, 0), vec(0.6, 0.6, 0), vec(0, 1, 0), vec(1, 1, 0)},
		},
		{
			name: "vertex to edge outbound",
			cuts: chainOf(c1, inner(0.8, 0.4), edge(0, 1)),
			kind: VertexToEdge, winding: Outbound, want: 4,
			used: []v3.Vec{vec(0.8, 0.4, 0), vec(0, 1, 0)},
		},
		{
			name: "vertex to edge inbound",
			cuts: chainOf(c0, inner(0.6, 0.4), edge(1, 1)),
			kind: VertexToEdge, winding: Inbound, want: 4,
			used: []v3.Vec{vec(0.6, 0.4, 0), vec(1, 1, 0)},
		},
		{
			name: "vertex to vertex outbound",
			cuts: chainOf(c1, inner(0.5, 0.5), c2),
			kind: VertexToVertex, winding: Outbound, want: 3,
			used: []v3.Vec{vec(0.5, 0.5, 0)},
		},
		{
			name: "vertex to vertex inbound",
			cuts: chainOf(c2, inner(0.5, 0.5), c1),
			kind: VertexToVertex, winding: Inbound, want: 3,
			used: []v3.Vec{vec(0.5, 0.5, 0)},
		},
		{
			name: "edge to vertex outbound",
			cuts: chainOf(edge(1, 0), inner(0.5, 0.5), c2),
			kind: EdgeToVertex, winding: Outbound, want: 4,
			used: []v3.Vec{vec(1, 0, 0), vec(0.5, 0.5, 0)},
		},
		{
			name: "edge to vertex inbound",
			cuts: chainOf(edge(0, 1), inner(0.6, 0.6), c1),
			kind: EdgeToVertex, winding: Inbound, want: 4,
			used: []v3.Vec{vec(0, 1, 0), vec(0.6, 0.6, 0)},
		},
		{
			name: "vertex in edge outbound",
			cuts: append(chainOf(c1, inner(0.5, 0.5), edge(0, 1)), run(edge(0, 1), edge(0, 0.5))),
			kind: VertexInEdge, winding: Outbound, want: 5,
			used: []v3.Vec{vec(0.5, 0.5, 0), vec(0, 1, 0), vec(0, 0.5, 0)},
		},
		{
			name: "vertex in edge inbound",
			cuts: append(chainOf(c2, inner(0.5, 0.5), edge(1, 0)), run(edge(1, 0), edge(1.5, 0))),
			kind: VertexInEdge, winding: Inbound, want: 5,
			used: []v3.Vec{vec(0.5, 0.5, 0), vec(1, 0, 0), vec(1.5, 0, 0)},
		},
		{
			name: "edge in vertex outbound",
			cuts: append(chainOf(edge(1, 0), inner(0.5, 0.5), c2), run(c2, edge(0, 1))),
			kind: EdgeInVertex, winding: Outbound, want: 5,
			used: []v3.Vec{vec(1, 0, 0), vec(0.5, 0.5, 0), vec(0, 1, 0)},
		},
		{
			name: "edge in vertex inbound",
			cuts: append(chainOf(edge(0, 1), inner(0.6, 0.6), c1), run(c1, edge(1.5, 0))),
			kind: EdgeInVertex, winding: Inbound, want: 5,
			used: []v3.Vec{vec(0, 1, 0), vec(0.6, 0.6, 0), vec(1.5, 0, 0)},
		},
		{
			name: "edge in edge outbound",
			cuts: append(chainOf(edge(1, 0), inner(0.4, 0.4), edge(0, 1)), run(edge(0, 1), edge(0, 0.5))),
			kind: EdgeInEdge, winding: Outbound, want: 7,
			used: []v3.Vec{vec(1, 0, 0), vec(0.4, 0.4, 0), vec(0, 1, 0), vec(0, 0.5, 0), vec(1, 1, 0)},
		},
		{
			name: "edge in edge inbound",
			cuts: append(chainOf(edge(0, 1), inner(0.4, 0.4), edge(1, 0)), run(edge(1, 0), edge(1.5, 0))),
			kind: EdgeInEdge, winding: Inbound, want: 7,
			used: []v3.Vec{vec(1, 0, 0), vec(0.4, 0.4, 0), vec(0, 1, 0), vec(1.5, 0, 0), vec(1, 1, 0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := floor(t, 2)
			p, ok := newPath(s, 0, tt.cuts)
			if !ok {
				t.Fatal("newPath() found no chain")
			}
			if p.Kind != tt.kind || p.Winding != tt.winding {
				t.Fatalf("path = %v, want %v.%v", p, tt.kind, tt.winding)
			}
			if p.Len() != 2 {
				t.Errorf("Len() = %d, want 2", p.Len())
			}
			tris := pathTable[pathKey{p.Kind, p.Winding}](s, 0, p)
			checkTiling(t, s, 0, tris, tt.want)
			usesAll(t, s, tris, tt.used...)
		})
	}
}

func TestPathHandlerRejectsOtherEnds(t *testing.T) {
	s := floor(t, 2)
	p, ok := newPath(s, 0, chainOf(at(EndVertex, vec(2, 0, 0), 1), inner(0.8, 0.4), at(EndEdge, vec(0, 1, 0), 2)))
	if !ok || p.Kind != VertexToEdge {
		t.Fatalf("newPath() = %v, %v", p, ok)
	}
	if tris := pathTable[pathKey{EdgeToEdge, Outbound}](s, 0, p); tris != nil {
		t.Errorf("edge-to-edge handler split a vertex-to-edge path: %v", tris)
	}
	if tris := pathTable[pathKey{EdgeInEdge, Outbound}](s, 0, p); tris != nil {
		t.Errorf("edge-in-edge handler split a path with no run: %v", tris)
	}
}

func TestNewPathInteriorLoop(t *testing.T) {
	s := floor(t, 2)
	a, b, c := inner(0.3, 0.3), inner(0.8, 0.3), inner(0.3, 0.8)
	if p, ok := newPath(s, 0, chainOf(a, b, c, a)); ok {
		t.Errorf("newPath() = %v for a loop inside the face", p)
	}
}

func TestNewPathLeadChain(t *testing.T) {
	// Two separate crossings; the first in path order leads.
	s := floor(t, 2)
	cuts := append(
		chainOf(at(EndEdge, vec(0.5, 0, 0), 0), inner(0.5, 0.7), at(EndEdge, vec(0, 1.2, 0), 2)),
		chainOf(at(EndEdge, vec(1.5, 0, 0), 0), at(EndEdge, vec(1.5, 0.5, 0), 1))...,
	)
	p, ok := newPath(s, 0, cuts)
	if !ok {
		t.Fatal("newPath() found no chain")
	}
	if p.Len() != 2 || p.Kind != EdgeToEdge {
		t.Errorf("lead chain = %v of %d segments", p, p.Len())
	}
	checkTiling(t, s, 0, p.split(s, 0), 6)
}

func TestPathWinding(t *testing.T) {
	s := floor(t, 2)
	mk := func(from, to v3.Vec) []cut {
		mid := from.Add(to).MulScalar(0.5)
		return chainOf(at(EndEdge, from, 0), at(EndFace, mid, 0), at(EndEdge, to, 0))
	}
	// Corner 0 is the origin; seen from +z it lies left of a path running
	// from the first leg up the hypotenuse side.
	out, _ := newPath(s, 0, mk(vec(1, 0, 0), vec(0, 1, 0)))
	in, _ := newPath(s, 0, mk(vec(0, 1, 0), vec(1, 0, 0)))
	if out.Winding != Outbound || in.Winding != Inbound {
		t.Errorf("windings = %v, %v; want outbound, inbound", out.Winding, in.Winding)
	}
	if out.String() != "edge-to-edge.outbound" {
		t.Errorf("String() = %q", out.String())
	}
	if r := out.reverse(); r.Winding != Inbound || r.chain[0] != out.chain[len(out.chain)-1] {
		t.Errorf("reverse() = %v from %v", r.chain, out.chain)
	}
}

func TestEarClip(t *testing.T) {
	tests := []struct {
		name string
		poly []v3.Vec
		want int
	}{
		{"square", []v3.Vec{vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0), vec(0, 1, 0)}, 2},
		{"collinear run", []v3.Vec{vec(0, 0, 0), vec(1, 0, 0), vec(0.6, 0.6, 0), vec(0, 1, 0), vec(0, 0.5, 0)}, 3},
		{"notch", []v3.Vec{vec(0, 0, 0), vec(1.5, 0, 0), vec(0.5, 0.5, 0), vec(0, 1.5, 0)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := floor(t, 2)
			poly := make([]VertexID, len(tt.poly))
			for i, p := range tt.poly {
				poly[i] = s.intern(p)
			}
			tris, ok := s.earClip(0, poly)
			if !ok {
				t.Fatal("earClip() failed")
			}
			if len(tris) != tt.want {
				t.Errorf("%d triangles, want %d", len(tris), tt.want)
			}
			for _, tr := range tris {
				g := triangleGeometry(s.vertices[tr[0]].Pos, s.vertices[tr[1]].Pos, s.vertices[tr[2]].Pos)
				if g.area <= Epsilon || g.normal.Z <= 0 {
					t.Errorf("triangle %v: area %g normal %v", tr, g.area, g.normal)
				}
			}
		})
	}
	s := floor(t, 2)
	line := []VertexID{s.intern(vec(0, 0, 0)), s.intern(vec(0.5, 0, 0)), s.intern(vec(1, 0, 0))}
	if _, ok := s.earClip(0, line); ok {
		t.Error("earClip() accepted a polygon with no area")
	}
}

func TestSortSegmentsStable(t *testing.T) {
	a := floor(t, 4)
	b := triangleSolid(t, "walls", wall(2, -1.5, 5.5), wall(1, -1.5, 5.5))
	x, err := NewIntersector(b, Epsilon)
	if err != nil {
		t.Fatal(err)
	}
	order := func() []FaceID {
		a.faces[0].segments = x.FaceSegments(a, 0, OperandA)
		a.sortSegments(0)
		var ids []FaceID
		for _, seg := range a.Face(0).Segments() {
			ids = append(ids, seg.Sides[1].Face)
		}
		return ids
	}
	first := order()
	if len(first) != 2 {
		t.Fatalf("%d segments, want 2", len(first))
	}
	for i := 0; i < 5; i++ {
		again := order()
		if again[0] != first[0] || again[1] != first[1] {
			t.Fatalf("order changed: %v then %v", first, again)
		}
	}
}
