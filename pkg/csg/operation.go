package csg

import (
	"fmt"

	"github.com/samber/lo"
)

// Union returns a ∪ b with default options.
func Union(a, b *Solid) (*Solid, error) {
	return Apply(OpUnion, a, b, DefaultOptions())
}

// Intersection returns a ∩ b with default options.
func Intersection(a, b *Solid) (*Solid, error) {
	return Apply(OpIntersection, a, b, DefaultOptions())
}

// Difference returns a − b with default options.
func Difference(a, b *Solid) (*Solid, error) {
	return Apply(OpDifference, a, b, DefaultOptions())
}

// Apply computes op over a and b. Both operands are pushed for the
// duration of the call and popped on return, so they are unchanged
// afterwards whatever the outcome. Neither may already be pushed.
func Apply(op Op, a, b *Solid, opts Options) (*Solid, error) {
	switch op {
	case OpUnion, OpIntersection, OpDifference:
	default:
		panic(fmt.Sprintf("csg: invalid operator %v", op))
	}
	opts = opts.normalized()
	if a == b {
		b = a.Clone()
	}
	res := NewSolidEps(fmt.Sprintf("(%s %s %s)", a.Name, op.symbol(), b.Name), opts.Epsilon)
	res.Construct = Construct{Op: op, A: a.Name, B: b.Name}

	if trivial(op, a, b, res, opts) {
		opts.logf("csg: %s: operands do not overlap", res.Name)
		return res, nil
	}

	a.Push()
	defer a.Pop()
	b.Push()
	defer b.Pop()
	a.resetStates()
	b.resetStates()

	na, err := splitFaces(a, b, OperandA, opts)
	if err != nil {
		return nil, err
	}
	nb, err := splitFaces(b, a, OperandB, opts)
	if err != nil {
		return nil, err
	}
	opts.logf("csg: %s: split %d faces of %s and %d of %s", res.Name, na, a.Name, nb, b.Name)

	if err := classifyFaces(a, b, opts); err != nil {
		return nil, err
	}
	if err := classifyFaces(b, a, opts); err != nil {
		return nil, err
	}

	keepA, keepB, invertB := selection(op)
	emit(res, a, lo.Filter(a.Faces(), func(id FaceID, _ int) bool {
		return keepA[a.faces[id].State]
	}), false)
	emit(res, b, lo.Filter(b.Faces(), func(id FaceID, _ int) bool {
		return keepB[b.faces[id].State]
	}), invertB)

	opts.logf("csg: %s: %d faces", res.Name, res.FaceCount())
	return res, nil
}

// selection returns the face states kept from each operand and whether
// kept faces of b are turned inside out.
func selection(op Op) (keepA, keepB map[FaceState]bool, invertB bool) {
	switch op {
	case OpUnion:
		return map[FaceState]bool{FaceOutside: true, FaceSame: true},
			map[FaceState]bool{FaceOutside: true}, false
	case OpIntersection:
		return map[FaceState]bool{FaceInside: true, FaceSame: true},
			map[FaceState]bool{FaceInside: true}, false
	default:
		return map[FaceState]bool{FaceOutside: true, FaceOpposite: true},
			map[FaceState]bool{FaceInside: true}, true
	}
}

// trivial fills res and reports true when the result does not depend on
// any intersection: an operand is empty or the bounds are apart.
func trivial(op Op, a, b, res *Solid, opts Options) bool {
	if a.FaceCount() > 0 && b.FaceCount() > 0 {
		ab, _ := a.Bound()
		bb, _ := b.Bound()
		if ab.Overlap(bb, opts.Epsilon) {
			return false
		}
	}
	switch op {
	case OpUnion:
		emit(res, a, a.Faces(), false)
		emit(res, b, b.Faces(), false)
	case OpDifference:
		emit(res, a, a.Faces(), false)
	}
	return true
}

// emit copies faces of src into dst, reversing their winding when invert
// is set. Faces that collapse under dst's interning are skipped.
func emit(dst, src *Solid, ids []FaceID, invert bool) {
	for _, id := range ids {
		p := src.Points(id)
		if invert {
			p[0], p[1] = p[1], p[0]
		}
		if _, err := dst.AddFace(p[0], p[1], p[2]); err != nil {
			continue
		}
		if name := src.faces[id].Name; name != "" {
			dst.faces[len(dst.faces)-1].Name = name
		}
	}
}
