package csg

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
)

// faceEntry is a face of the indexed solid stored in the R-tree.
type faceEntry struct {
	id   FaceID
	rect rtreego.Rect
}

func (e *faceEntry) Bounds() rtreego.Rect { return e.rect }

// Intersector finds the segments where faces of a solid cross the faces
// of a fixed other solid. The other solid's faces are held in an R-tree so
// each query only visits faces whose bounds overlap.
type Intersector struct {
	other *Solid
	bound Bound
	tree  *rtreego.Rtree
	eps   float64
}

// NewIntersector indexes the faces of other. It fails with ErrEmptyBound
// when other has no faces.
func NewIntersector(other *Solid, eps float64) (*Intersector, error) {
	b, err := other.Bound()
	if err != nil {
		return nil, err
	}
	ids := other.Faces()
	objs := make([]rtreego.Spatial, len(ids))
	for i, id := range ids {
		objs[i] = &faceEntry{id: id, rect: other.FaceBound(id).rect(eps)}
	}
	return &Intersector{
		other: other,
		bound: b,
		tree:  rtreego.NewTree(3, 4, 16, objs...),
		eps:   eps,
	}, nil
}

// candidates returns the faces of the other solid whose bounds overlap b,
// in ascending ID order.
func (x *Intersector) candidates(b Bound) []FaceID {
	found := x.tree.SearchIntersect(b.rect(x.eps))
	ids := make([]FaceID, len(found))
	for i, f := range found {
		ids[i] = f.(*faceEntry).id
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FaceSegments returns the segments where face id of s truly crosses the
// other solid, unsorted. Side 0 of each segment is on s.
func (x *Intersector) FaceSegments(s *Solid, id FaceID, op Operand) []*Segment {
	fb := s.FaceBound(id)
	if !fb.Overlap(x.bound, x.eps) {
		return nil
	}
	var segs []*Segment
	for _, other := range x.candidates(fb) {
		if seg := x.pair(s, id, other, op); seg != nil {
			segs = append(segs, seg)
		}
	}
	return segs
}

// pair builds the segment between face a of s and face b of the other
// solid, or returns nil when the faces do not cross.
func (x *Intersector) pair(s *Solid, a FaceID, b FaceID, op Operand) *Segment {
	eps := x.eps
	o := x.other
	if !s.FaceBound(a).Overlap(o.FaceBound(b), eps) {
		return nil
	}

	pa, pb := s.Points(a), o.Points(b)
	var da, db [3]float64
	for i := 0; i < 3; i++ {
		da[i] = o.distance(b, pa[i])
	}
	if allSameSign(da, eps) {
		return nil
	}
	for i := 0; i < 3; i++ {
		db[i] = s.distance(a, pb[i])
	}
	if allSameSign(db, eps) {
		return nil
	}

	na, nb := s.Normal(a), o.Normal(b)
	l, ok := planeLine(na, na.Dot(pa[0]), nb, nb.Dot(pb[0]), eps)
	if !ok {
		return nil
	}
	sideA, ok := newSide(s, a, op, l, da, eps)
	if !ok {
		return nil
	}
	sideB, ok := newSide(o, b, op^1, l, db, eps)
	if !ok {
		return nil
	}
	seg := &Segment{Sides: [2]Side{sideA, sideB}, line: l}
	if !seg.overlaps(eps) {
		return nil
	}
	return seg
}

// allSameSign reports whether the three distances classify alike: all on
// one side of the plane or all in it.
func allSameSign(d [3]float64, eps float64) bool {
	s0 := sign(d[0], eps)
	return s0 == sign(d[1], eps) && s0 == sign(d[2], eps)
}

// Intersect returns every segment between a face of a and a face of b,
// ordered by a's face ID and then by b's. Neither solid is modified.
func Intersect(a, b *Solid, eps float64) ([]*Segment, error) {
	ab, err := a.Bound()
	if err != nil {
		return nil, err
	}
	bb, err := b.Bound()
	if err != nil {
		return nil, err
	}
	if !ab.Overlap(bb, eps) {
		return nil, nil
	}
	x, err := NewIntersector(b, eps)
	if err != nil {
		return nil, err
	}
	var out []*Segment
	for _, id := range a.Faces() {
		out = append(out, x.FaceSegments(a, id, OperandA)...)
	}
	return out, nil
}

// splitFaces splits the faces of s until none crosses a face of other.
// Each face is cut along one whole chain of crossings at a time, and the
// replacement faces are queued and intersected again. It returns the
// number of faces split.
//
// Growth is bounded by the crossings found on the original faces: s may
// gain at most MaxSplitFactor faces per crossing, so a finer operand
// raises the bound with the work it brings.
func splitFaces(s, other *Solid, op Operand, opts Options) (int, error) {
	if s.FaceCount() == 0 || other.FaceCount() == 0 {
		return 0, nil
	}
	sb, _ := s.Bound()
	ob, _ := other.Bound()
	if !sb.Overlap(ob, opts.Epsilon) {
		return 0, nil
	}
	x, err := NewIntersector(other, opts.Epsilon)
	if err != nil {
		return 0, err
	}

	queue := s.Faces()
	original := len(queue)
	crossings, splits := 0, 0
	for i := 0; len(queue) > 0; i++ {
		id := queue[0]
		queue = queue[1:]
		if !s.Alive(id) {
			continue
		}
		s.faces[id].segments = x.FaceSegments(s, id, op)
		if i < original {
			crossings += len(s.faces[id].segments)
		}
		s.sortSegments(id)
		added := s.triangulate(id, opts.Trace)
		s.faces[id].segments = nil
		if added == nil {
			continue
		}
		splits++
		opts.logf("csg: split %s face %d into %d", s.Name, id, len(added))
		if limit := original + opts.MaxSplitFactor*crossings; s.FaceCount() > limit {
			return splits, errors.Wrapf(ErrSplitLimit, "solid %q grew to %d faces for %d crossings", s.Name, s.FaceCount(), crossings)
		}
		queue = append(queue, added...)
	}
	return splits, nil
}
