package csg

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VertexID addresses a vertex in its Solid's arena.
type VertexID int

// VertexState is the classification of a vertex against the other operand.
type VertexState uint8

const (
	Unknown  VertexState = iota // not yet classified
	Inside                      // strictly inside the other solid
	Outside                     // strictly outside the other solid
	Boundary                    // on the other solid's surface
)

func (s VertexState) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Boundary:
		return "boundary"
	default:
		return fmt.Sprintf("VertexState(%d)", int(s))
	}
}

// Vertex is a point of a Solid together with its classification and the
// faces that use it.
type Vertex struct {
	Pos   v3.Vec
	State VertexState

	faces []FaceID
	dead  bool
}

// Faces returns the faces using v, in the order they were attached.
// The slice is owned by the Solid.
func (v *Vertex) Faces() []FaceID {
	return v.faces
}

func (v *Vertex) attach(f FaceID) {
	v.faces = append(v.faces, f)
}

func (v *Vertex) detach(f FaceID) {
	for i, id := range v.faces {
		if id == f {
			v.faces = append(v.faces[:i], v.faces[i+1:]...)
			return
		}
	}
}

// samePoint reports whether a and b are within eps on every axis.
func samePoint(a, b v3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// cell is a key of the interning grid.
type cell [3]int64

// vertexGrid interns vertices by position. Cells are at least eps wide, so
// every vertex within eps of a point lives in the point's cell or one of
// its 26 neighbours.
type vertexGrid struct {
	size  float64
	cells map[cell][]VertexID
}

func newVertexGrid(eps float64) vertexGrid {
	return vertexGrid{size: 4 * eps, cells: make(map[cell][]VertexID)}
}

func (g *vertexGrid) key(p v3.Vec) cell {
	return cell{
		int64(math.Floor(p.X / g.size)),
		int64(math.Floor(p.Y / g.size)),
		int64(math.Floor(p.Z / g.size)),
	}
}

// find returns the lowest-numbered vertex within eps of p.
func (g *vertexGrid) find(verts []Vertex, p v3.Vec, eps float64) (VertexID, bool) {
	k := g.key(p)
	best := VertexID(-1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range g.cells[cell{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if samePoint(verts[id].Pos, p, eps) && (best < 0 || id < best) {
						best = id
					}
				}
			}
		}
	}
	return best, best >= 0
}

func (g *vertexGrid) insert(p v3.Vec, id VertexID) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], id)
}

func (g *vertexGrid) remove(p v3.Vec, id VertexID) {
	k := g.key(p)
	ids := g.cells[k]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(g.cells, k)
		return
	}
	g.cells[k] = ids
}

func (g *vertexGrid) clone() vertexGrid {
	c := vertexGrid{size: g.size, cells: make(map[cell][]VertexID, len(g.cells))}
	for k, ids := range g.cells {
		c.cells[k] = append([]VertexID(nil), ids...)
	}
	return c
}
