package csg

import (
	"fmt"
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PathKind is the topology of a chain of segments crossing one face.
// Interior path ends are grouped with edge ends: both need a new vertex.
type PathKind uint8

const (
	VertexInEdge   PathKind = iota + 1 // from a corner, ending along an edge
	VertexToEdge                       // from a corner, ending across an edge
	VertexToVertex                     // corner to corner
	EdgeInVertex                       // from an edge, ending along an edge at a corner
	EdgeToVertex                       // from an edge, ending at a corner
	EdgeInEdge                         // edge to edge, ending along an edge
	EdgeToEdge                         // edge to edge, ending across an edge
)

var pathKindNames = map[PathKind]string{
	VertexInEdge:   "vertex-in-edge",
	VertexToEdge:   "vertex-to-edge",
	VertexToVertex: "vertex-to-vertex",
	EdgeInVertex:   "edge-in-vertex",
	EdgeToVertex:   "edge-to-vertex",
	EdgeInEdge:     "edge-in-edge",
	EdgeToEdge:     "edge-to-edge",
}

func (k PathKind) String() string {
	if n, ok := pathKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("PathKind(%d)", int(k))
}

// Winding is the direction of a path relative to the face orientation.
type Winding uint8

const (
	Outbound Winding = iota + 1 // first corner off the path lies left of it
	Inbound                     // first corner off the path lies right of it
)

func (w Winding) String() string {
	switch w {
	case Outbound:
		return "outbound"
	case Inbound:
		return "inbound"
	default:
		return fmt.Sprintf("Winding(%d)", int(w))
	}
}

// Path is the lead chain of cuts crossing one face: vertices running from
// a border point through the interior to another border point.
type Path struct {
	Kind    PathKind
	Winding Winding

	cuts  []cut
	chain []VertexID
	runs  []VertexID
}

// pathKey indexes the path dispatch table.
type pathKey struct {
	kind    PathKind
	winding Winding
}

// pathHandler splits a face along a whole path in one step. Like recipes,
// handlers only intern vertices; the caller applies the returned
// triangles. A nil result leaves the face to the single-segment cookbook.
type pathHandler func(s *Solid, id FaceID, p *Path) []tri

// endClass restricts where a path handler accepts a chain end.
type endClass uint8

const (
	atCorner endClass = iota + 1
	onEdge
	anyBorder
)

// pathTable maps every path topology and winding to its handler. Inbound
// paths are reversed first, so every handler body sees the first corner
// on its left and triangulates that piece first.
var pathTable = map[pathKey]pathHandler{
	{VertexInEdge, Outbound}:   alongPath(atCorner, anyBorder, true),
	{VertexInEdge, Inbound}:    reversed(alongPath(anyBorder, atCorner, true)),
	{VertexToEdge, Outbound}:   alongPath(atCorner, onEdge, false),
	{VertexToEdge, Inbound}:    reversed(alongPath(onEdge, atCorner, false)),
	{VertexToVertex, Outbound}: alongPath(atCorner, atCorner, false),
	{VertexToVertex, Inbound}:  reversed(alongPath(atCorner, atCorner, false)),
	{EdgeInVertex, Outbound}:   alongPath(onEdge, atCorner, true),
	{EdgeInVertex, Inbound}:    reversed(alongPath(atCorner, onEdge, true)),
	{EdgeToVertex, Outbound}:   alongPath(onEdge, atCorner, false),
	{EdgeToVertex, Inbound}:    reversed(alongPath(atCorner, onEdge, false)),
	{EdgeInEdge, Outbound}:     alongPath(onEdge, onEdge, true),
	{EdgeInEdge, Inbound}:      reversed(alongPath(onEdge, onEdge, true)),
	{EdgeToEdge, Outbound}:     alongPath(onEdge, onEdge, false),
	{EdgeToEdge, Inbound}:      reversed(alongPath(onEdge, onEdge, false)),
}

// pathVector returns an in-plane direction of face id derived from its
// normal. Segments on the face are ordered by their projection on it.
func (s *Solid) pathVector(id FaceID) v3.Vec {
	n := s.Normal(id)
	ref := v3.Vec{X: 1}
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ay <= ax && ay <= az:
		ref = v3.Vec{Y: 1}
	case az <= ax && az <= ay:
		ref = v3.Vec{Z: 1}
	}
	return n.Cross(ref).Normalize()
}

// sortSegments orders the segments of face id along its path vector,
// breaking ties by the other face so the order is reproducible.
func (s *Solid) sortSegments(id FaceID) {
	segs := s.faces[id].segments
	pv := s.pathVector(id)
	for _, seg := range segs {
		c := seg.clip(s.eps)
		a, b := c.start.Pos.Dot(pv), c.end.Pos.Dot(pv)
		if a > b {
			a, b = b, a
		}
		seg.key = [2]float64{a, b}
	}
	sort.SliceStable(segs, func(i, j int) bool {
		ki, kj := segs[i].key, segs[j].key
		if math.Abs(ki[0]-kj[0]) > s.eps {
			return ki[0] < kj[0]
		}
		if math.Abs(ki[1]-kj[1]) > s.eps {
			return ki[1] < kj[1]
		}
		return segs[i].Sides[1].Face < segs[j].Sides[1].Face
	})
}

// pathPoint returns the vertex for cut end e on face id, interning points
// that are not corners of the face.
func (s *Solid) pathPoint(id FaceID, e Endpoint) VertexID {
	if e.Type == EndVertex {
		return s.faces[id].V[e.Index]
	}
	return s.splitPoint(e.Pos)
}

// newPath links the cuts on face id and picks the first chain, in path
// order, that runs from the border through the interior back to the
// border. Cuts along a face edge are kept as runs. It reports false when
// no such chain exists, as for a loop lying wholly inside the face.
func newPath(s *Solid, id FaceID, cuts []cut) (*Path, bool) {
	f := &s.faces[id]
	p := &Path{cuts: cuts}
	border := make(map[VertexID]bool)
	for _, v := range f.V {
		border[v] = true
	}
	type link struct{ a, b VertexID }
	next := make(map[VertexID][]VertexID)
	seen := make(map[link]bool)
	var links []link
	for _, c := range cuts {
		a, b := s.pathPoint(id, c.start), s.pathPoint(id, c.end)
		if c.start.Type != EndFace {
			border[a] = true
		}
		if c.end.Type != EndFace {
			border[b] = true
		}
		if a == b {
			continue
		}
		if c.middle == EndEdge {
			p.runs = append(p.runs, a, b)
			continue
		}
		k := link{a, b}
		if b < a {
			k = link{b, a}
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		next[a] = append(next[a], b)
		next[b] = append(next[b], a)
		links = append(links, link{a, b})
	}
	for _, l := range links {
		back, ok := extend(l.b, l.a, next, border)
		if !ok {
			continue
		}
		fwd, ok := extend(l.a, l.b, next, border)
		if !ok {
			continue
		}
		chain := make([]VertexID, 0, len(back)+len(fwd))
		for i := len(back) - 1; i >= 0; i-- {
			chain = append(chain, back[i])
		}
		chain = append(chain, fwd...)
		if chain[0] != chain[len(chain)-1] {
			p.chain = chain
			break
		}
	}
	if p.chain == nil {
		return nil, false
	}

	corner := func(v VertexID) bool { return v == f.V[0] || v == f.V[1] || v == f.V[2] }
	start, end := p.chain[0], p.chain[len(p.chain)-1]
	along := p.runsFrom(end)
	switch {
	case corner(start) && corner(end):
		p.Kind = VertexToVertex
		if along {
			p.Kind = VertexInEdge
		}
	case corner(start):
		p.Kind = VertexToEdge
		if along {
			p.Kind = VertexInEdge
		}
	case corner(end):
		p.Kind = EdgeToVertex
		if along {
			p.Kind = EdgeInVertex
		}
	default:
		p.Kind = EdgeToEdge
		if along {
			p.Kind = EdgeInEdge
		}
	}

	p.Winding = Outbound
	from, to := s.perimeter(id, end), s.perimeter(id, start)
	for k, v := range f.V {
		if v == start || v == end {
			continue
		}
		if ahead(from, float64(k)) >= ahead(from, to) {
			p.Winding = Inbound
		}
		break
	}
	return p, true
}

// extend walks from cur away from prev through interior vertices of
// degree two and returns the vertices met, ending on the border.
func extend(prev, cur VertexID, next map[VertexID][]VertexID, border map[VertexID]bool) ([]VertexID, bool) {
	out := []VertexID{cur}
	for !border[cur] {
		ns := next[cur]
		if len(ns) != 2 || len(out) > len(next) {
			return nil, false
		}
		n := ns[0]
		if n == prev {
			n = ns[1]
		}
		prev, cur = cur, n
		out = append(out, cur)
	}
	return out, true
}

// Len returns the number of segments in the lead chain.
func (p *Path) Len() int { return len(p.chain) - 1 }

func (p *Path) String() string {
	return fmt.Sprintf("%v.%v", p.Kind, p.Winding)
}

// split dispatches the path to its handler and falls back to splitting
// along the first segment that cuts the face.
func (p *Path) split(s *Solid, id FaceID) []tri {
	h, ok := pathTable[pathKey{p.Kind, p.Winding}]
	if !ok {
		panic(fmt.Sprintf("csg: no path handler for %v", p))
	}
	if tris := h(s, id, p); len(tris) > 0 {
		return tris
	}
	return firstSplit(s, id, p.cuts)
}

// firstSplit applies the cookbook to the cuts in order and returns the
// first split that yields triangles.
func firstSplit(s *Solid, id FaceID, cuts []cut) []tri {
	for _, c := range cuts {
		if tris := splitCut(s, id, c); len(tris) > 0 {
			return tris
		}
	}
	return nil
}

// reverse returns p with its chain running the other way.
func (p *Path) reverse() *Path {
	r := *p
	r.chain = make([]VertexID, len(p.chain))
	for i, v := range p.chain {
		r.chain[len(p.chain)-1-i] = v
	}
	if p.Winding == Outbound {
		r.Winding = Inbound
	} else {
		r.Winding = Outbound
	}
	return &r
}

func reversed(h pathHandler) pathHandler {
	return func(s *Solid, id FaceID, p *Path) []tri {
		return h(s, id, p.reverse())
	}
}

// runsFrom reports whether a run along a face edge starts or ends at v.
func (p *Path) runsFrom(v VertexID) bool {
	for _, r := range p.runs {
		if r == v {
			return true
		}
	}
	return false
}

// alongPath returns the handler for chains whose ends fall in the given
// classes. With run set, a run along an edge must continue from one of
// the chain ends.
func alongPath(from, to endClass, run bool) pathHandler {
	return func(s *Solid, id FaceID, p *Path) []tri {
		start, end := p.chain[0], p.chain[len(p.chain)-1]
		if !s.endIs(id, start, from) || !s.endIs(id, end, to) {
			return nil
		}
		if run && !p.runsFrom(start) && !p.runsFrom(end) {
			return nil
		}
		return s.splitAlong(id, p)
	}
}

func (s *Solid) endIs(id FaceID, v VertexID, class endClass) bool {
	f := &s.faces[id]
	corner := v == f.V[0] || v == f.V[1] || v == f.V[2]
	switch class {
	case atCorner:
		return corner
	case onEdge:
		return !corner
	default:
		return true
	}
}

// rimPoint is a border vertex and its perimeter position.
type rimPoint struct {
	v  VertexID
	at float64
}

// perimeter returns where border vertex v sits on the boundary of face
// id: k at corner k and k+t at fraction t along edge k.
func (s *Solid) perimeter(id FaceID, v VertexID) float64 {
	f := &s.faces[id]
	for k, c := range f.V {
		if c == v {
			return float64(k)
		}
	}
	p := s.vertices[v].Pos
	pts := s.Points(id)
	best, at := math.Inf(1), 0.0
	for i := 0; i < 3; i++ {
		a, e := pts[i], pts[(i+1)%3].Sub(pts[i])
		t := math.Max(0, math.Min(1, p.Sub(a).Dot(e)/e.Dot(e)))
		if d := p.Sub(a.Add(e.MulScalar(t))).Length(); d < best {
			best, at = d, float64(i)+t
		}
	}
	return math.Mod(at, 3)
}

// ahead is the counter-clockwise perimeter distance from one border
// position to another.
func ahead(from, to float64) float64 {
	d := math.Mod(to-from, 3)
	if d < 0 {
		d += 3
	}
	return d
}

// splitAlong cuts face id in two along the lead chain and triangulates
// both pieces. Run ends become border vertices, and each edge untouched
// by the chain or a run gets its midpoint.
func (s *Solid) splitAlong(id FaceID, p *Path) []tri {
	f := &s.faces[id]
	start, end := p.chain[0], p.chain[len(p.chain)-1]
	var rim []rimPoint
	add := func(v VertexID) {
		for _, r := range rim {
			if r.v == v {
				return
			}
		}
		rim = append(rim, rimPoint{v, s.perimeter(id, v)})
	}
	for _, v := range f.V {
		add(v)
	}
	add(start)
	add(end)
	for _, v := range p.runs {
		add(v)
	}

	var touched [3]bool
	for _, v := range append([]VertexID{start, end}, p.runs...) {
		at := s.perimeter(id, v)
		e := int(math.Floor(at)) % 3
		touched[e] = true
		if at == float64(e) {
			touched[(e+2)%3] = true
		}
	}
	for e := 0; e < 3; e++ {
		if !touched[e] {
			a, b, _ := corners(f, e)
			add(s.midpoint(a, b))
		}
	}

	walk := func(from, to VertexID) []VertexID {
		lo, hi := s.perimeter(id, from), s.perimeter(id, to)
		span := ahead(lo, hi)
		var between []rimPoint
		for _, r := range rim {
			if r.v == from || r.v == to {
				continue
			}
			if d := ahead(lo, r.at); d > 0 && d < span {
				between = append(between, r)
			}
		}
		sort.Slice(between, func(i, j int) bool { return ahead(lo, between[i].at) < ahead(lo, between[j].at) })
		out := make([]VertexID, len(between))
		for i, r := range between {
			out[i] = r.v
		}
		return out
	}

	left := append(append([]VertexID(nil), p.chain...), walk(end, start)...)
	right := make([]VertexID, 0, len(p.chain)+3)
	for i := len(p.chain) - 1; i >= 0; i-- {
		right = append(right, p.chain[i])
	}
	right = append(right, walk(start, end)...)

	var tris []tri
	for _, piece := range [2][]VertexID{left, right} {
		t, ok := s.earClip(id, piece)
		if !ok {
			return nil
		}
		tris = append(tris, t...)
	}
	total := 0.0
	for _, t := range tris {
		total += triangleGeometry(s.vertices[t[0]].Pos, s.vertices[t[1]].Pos, s.vertices[t[2]].Pos).area
	}
	if math.Abs(total-s.FaceArea(id)) > 1e-9*math.Max(1, s.FaceArea(id)) {
		return nil
	}
	return tris
}

// earClip triangulates poly, a simple polygon wound counter-clockwise
// about the normal of face id. Each round clips the best-shaped ear; it
// fails when no ear with area above eps is left.
func (s *Solid) earClip(id FaceID, poly []VertexID) ([]tri, bool) {
	if len(poly) < 3 {
		return nil, false
	}
	pts := s.Points(id)
	u := pts[1].Sub(pts[0]).Normalize()
	w := s.Normal(id).Cross(u)
	flat := make(map[VertexID]v2.Vec, len(poly))
	for _, v := range poly {
		d := s.vertices[v].Pos.Sub(pts[0])
		flat[v] = v2.Vec{X: d.Dot(u), Y: d.Dot(w)}
	}

	ring := append([]VertexID(nil), poly...)
	var out []tri
	for len(ring) > 3 {
		best, quality := -1, 0.0
		for i := range ring {
			a, b, c := ring[(i+len(ring)-1)%len(ring)], ring[i], ring[(i+1)%len(ring)]
			q := shape(flat[a], flat[b], flat[c], s.eps)
			if q <= quality || s.earBlocked(ring, flat, a, b, c) {
				continue
			}
			best, quality = i, q
		}
		if best < 0 {
			return nil, false
		}
		n := len(ring)
		out = append(out, tri{ring[(best+n-1)%n], ring[best], ring[(best+1)%n]})
		ring = append(ring[:best], ring[best+1:]...)
	}
	if shape(flat[ring[0]], flat[ring[1]], flat[ring[2]], s.eps) <= 0 {
		return nil, false
	}
	return append(out, tri{ring[0], ring[1], ring[2]}), true
}

// shape scores triangle abc from 0 to 1, equilateral being 1. Triangles
// wound clockwise or with area at most eps score 0.
func shape(a, b, c v2.Vec, eps float64) float64 {
	area := b.Sub(a).Cross(c.Sub(a)) / 2
	if area <= eps {
		return 0
	}
	l := b.Sub(a).Length2() + c.Sub(b).Length2() + a.Sub(c).Length2()
	return 4 * math.Sqrt(3) * area / l
}

// earBlocked reports whether any other ring vertex lies in or on the
// triangle abc.
func (s *Solid) earBlocked(ring []VertexID, flat map[VertexID]v2.Vec, a, b, c VertexID) bool {
	pa, pb, pc := flat[a], flat[b], flat[c]
	for _, v := range ring {
		if v == a || v == b || v == c {
			continue
		}
		q := flat[v]
		if pb.Sub(pa).Cross(q.Sub(pa)) >= -s.eps &&
			pc.Sub(pb).Cross(q.Sub(pb)) >= -s.eps &&
			pa.Sub(pc).Cross(q.Sub(pc)) >= -s.eps {
			return true
		}
	}
	return false
}
