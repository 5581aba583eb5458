package csg

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Op is a boolean operator.
type Op int

const (
	OpNone Op = iota
	OpUnion
	OpIntersection
	OpDifference
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpDifference:
		return "difference"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

func (o Op) symbol() string {
	switch o {
	case OpUnion:
		return "∪"
	case OpIntersection:
		return "∩"
	case OpDifference:
		return "−"
	default:
		return "?"
	}
}

// Construct records how a solid was produced.
type Construct struct {
	Op   Op
	A, B string // operand names
}

// Solid is a closed triangle mesh stored as an arena of vertices and faces.
// Vertices within the solid's epsilon of each other are interned to one
// VertexID. Removed faces and orphaned vertices keep their slots, so IDs
// stay stable for the life of the solid.
type Solid struct {
	Name      string
	Construct Construct

	eps      float64
	vertices []Vertex
	faces    []Face
	grid     vertexGrid
	live     int

	bound      Bound
	boundValid bool

	saved *checkpoint
}

// checkpoint is the arena state captured by Push.
type checkpoint struct {
	vertices []Vertex
	faces    []Face
	grid     vertexGrid
	live     int
}

// NewSolid returns an empty solid that interns vertices within Epsilon.
func NewSolid(name string) *Solid {
	return NewSolidEps(name, Epsilon)
}

// NewSolidEps returns an empty solid that interns vertices within eps.
func NewSolidEps(name string, eps float64) *Solid {
	if eps <= 0 {
		eps = Epsilon
	}
	return &Solid{Name: name, eps: eps, grid: newVertexGrid(eps)}
}

// Epsilon returns the interning tolerance of s.
func (s *Solid) Epsilon() float64 { return s.eps }

// FaceCount returns the number of live faces.
func (s *Solid) FaceCount() int { return s.live }

// VertexCount returns the number of vertices used by at least one face.
func (s *Solid) VertexCount() int {
	n := 0
	for i := range s.vertices {
		if !s.vertices[i].dead && len(s.vertices[i].faces) > 0 {
			n++
		}
	}
	return n
}

// Faces returns the IDs of the live faces in creation order.
func (s *Solid) Faces() []FaceID {
	ids := make([]FaceID, 0, s.live)
	for i := range s.faces {
		if !s.faces[i].dead {
			ids = append(ids, FaceID(i))
		}
	}
	return ids
}

// Face returns face id. The pointer is invalidated by the next AddFace.
func (s *Solid) Face(id FaceID) *Face { return &s.faces[id] }

// Vertex returns vertex id. The pointer is invalidated by the next AddFace.
func (s *Solid) Vertex(id VertexID) *Vertex { return &s.vertices[id] }

// Alive reports whether face id is still part of the solid.
func (s *Solid) Alive(id FaceID) bool {
	return int(id) >= 0 && int(id) < len(s.faces) && !s.faces[id].dead
}

// intern returns the vertex at p, creating it if no vertex lies within
// eps of p.
func (s *Solid) intern(p v3.Vec) VertexID {
	if id, ok := s.grid.find(s.vertices, p, s.eps); ok {
		return id
	}
	id := VertexID(len(s.vertices))
	s.vertices = append(s.vertices, Vertex{Pos: p})
	s.grid.insert(p, id)
	return id
}

// AddFace adds the triangle (a, b, c). It fails with ErrDegenerateFace if
// two corners intern to the same vertex or the triangle has no area.
func (s *Solid) AddFace(a, b, c v3.Vec) (FaceID, error) {
	va, vb, vc := s.intern(a), s.intern(b), s.intern(c)
	id, ok := s.link(va, vb, vc)
	if !ok {
		s.release(va)
		s.release(vb)
		s.release(vc)
		return -1, errors.Wrapf(ErrDegenerateFace, "(%v, %v, %v)", a, b, c)
	}
	return id, nil
}

// link adds a face over existing vertices, refusing degenerate triangles.
func (s *Solid) link(a, b, c VertexID) (FaceID, bool) {
	if a == b || b == c || a == c {
		return -1, false
	}
	g := triangleGeometry(s.vertices[a].Pos, s.vertices[b].Pos, s.vertices[c].Pos)
	if g.area <= s.eps {
		return -1, false
	}
	id := FaceID(len(s.faces))
	s.faces = append(s.faces, Face{
		V:        [3]VertexID{a, b, c},
		cached:   true,
		normal:   g.normal,
		centroid: g.centroid,
		bound:    g.bound,
		area:     g.area,
	})
	for _, v := range [3]VertexID{a, b, c} {
		vx := &s.vertices[v]
		if vx.dead {
			vx.dead = false
			s.grid.insert(vx.Pos, v)
		}
		vx.attach(id)
	}
	s.live++
	s.boundValid = false
	return id, true
}

// RemoveFace drops face id and un-interns any vertex it leaves unused.
func (s *Solid) RemoveFace(id FaceID) {
	f := &s.faces[id]
	if f.dead {
		return
	}
	f.dead = true
	f.segments = nil
	for _, v := range f.V {
		s.vertices[v].detach(id)
		s.release(v)
	}
	s.live--
	s.boundValid = false
}

// release un-interns v if no face uses it.
func (s *Solid) release(v VertexID) {
	vx := &s.vertices[v]
	if len(vx.faces) == 0 && !vx.dead {
		vx.dead = true
		s.grid.remove(vx.Pos, v)
	}
}

// Bound returns the bound of every live face, memoized until the next
// change.
func (s *Solid) Bound() (Bound, error) {
	if s.boundValid {
		return s.bound, nil
	}
	if s.live == 0 {
		return Bound{}, errors.Wrapf(ErrEmptyBound, "solid %q", s.Name)
	}
	first := true
	var b Bound
	for i := range s.faces {
		if s.faces[i].dead {
			continue
		}
		fb := s.FaceBound(FaceID(i))
		if first {
			b, first = fb, false
			continue
		}
		b = b.Extend(fb)
	}
	s.bound, s.boundValid = b, true
	return b, nil
}

// Push checkpoints the solid so a boolean operation can mutate it. Pushing
// an already pushed solid is a programming error.
func (s *Solid) Push() {
	if s.saved != nil {
		panic(fmt.Sprintf("csg: nested push on solid %q", s.Name))
	}
	cp := &checkpoint{
		vertices: make([]Vertex, len(s.vertices)),
		faces:    make([]Face, len(s.faces)),
		grid:     s.grid.clone(),
		live:     s.live,
	}
	copy(cp.vertices, s.vertices)
	for i := range cp.vertices {
		cp.vertices[i].faces = append([]FaceID(nil), s.vertices[i].faces...)
	}
	copy(cp.faces, s.faces)
	s.saved = cp
}

// Pop restores the state captured by the matching Push, discarding every
// change made since. Popping without a prior Push is a programming error.
func (s *Solid) Pop() {
	if s.saved == nil {
		panic(fmt.Sprintf("csg: pop without push on solid %q", s.Name))
	}
	cp := s.saved
	s.saved = nil
	s.vertices = cp.vertices
	s.faces = cp.faces
	s.grid = cp.grid
	s.live = cp.live
	s.boundValid = false
}

// Pushed reports whether s holds a checkpoint.
func (s *Solid) Pushed() bool { return s.saved != nil }

// Clone returns an independent copy of s with every classification reset.
func (s *Solid) Clone() *Solid {
	c := NewSolidEps(s.Name, s.eps)
	c.Construct = s.Construct
	for _, id := range s.Faces() {
		f := &s.faces[id]
		a := c.intern(s.vertices[f.V[0]].Pos)
		b := c.intern(s.vertices[f.V[1]].Pos)
		d := c.intern(s.vertices[f.V[2]].Pos)
		if _, ok := c.link(a, b, d); !ok {
			c.release(a)
			c.release(b)
			c.release(d)
		}
	}
	return c
}

// Triangles returns the corner positions of every live face.
func (s *Solid) Triangles() [][3]v3.Vec {
	out := make([][3]v3.Vec, 0, s.live)
	for _, id := range s.Faces() {
		out = append(out, s.Points(id))
	}
	return out
}

// Area returns the total surface area.
func (s *Solid) Area() float64 {
	total := 0.0
	for _, id := range s.Faces() {
		total += s.FaceArea(id)
	}
	return total
}

// Volume returns the signed enclosed volume. It is positive for a closed
// solid whose faces wind outward.
func (s *Solid) Volume() float64 {
	total := 0.0
	for _, id := range s.Faces() {
		p := s.Points(id)
		total += p[0].Dot(p[1].Cross(p[2]))
	}
	return total / 6
}

// resetStates clears every vertex and face classification.
func (s *Solid) resetStates() {
	for i := range s.vertices {
		s.vertices[i].State = Unknown
	}
	for i := range s.faces {
		s.faces[i].State = FaceUnknown
		s.faces[i].segments = nil
	}
}

func (s *Solid) String() string {
	return fmt.Sprintf("solid %q: %d faces, %d vertices", s.Name, s.live, s.VertexCount())
}
