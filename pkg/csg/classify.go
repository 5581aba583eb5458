package csg

import (
	"math"
	"math/rand"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Classify assigns state to vertex v if it is still Unknown. With forward
// set and a state other than Boundary, the state then floods to every
// Unknown vertex reachable through face edges. Boundary vertices are
// never overwritten and stop the flood.
func (s *Solid) Classify(v VertexID, state VertexState, forward bool) {
	if state == Unknown || s.vertices[v].State != Unknown {
		return
	}
	s.vertices[v].State = state
	if !forward || state == Boundary {
		return
	}
	stack := []VertexID{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, f := range s.vertices[cur].faces {
			for _, n := range s.faces[f].V {
				if s.vertices[n].State == Unknown {
					s.vertices[n].State = state
					stack = append(stack, n)
				}
			}
		}
	}
}

// simpleClassify sets the state of face id from its vertices. It reports
// false when every vertex is Unknown or Boundary.
func (s *Solid) simpleClassify(id FaceID) bool {
	f := &s.faces[id]
	for _, v := range f.V {
		switch s.vertices[v].State {
		case Inside:
			f.State = FaceInside
			return true
		case Outside:
			f.State = FaceOutside
			return true
		}
	}
	return false
}

// rayClassifier casts rays from faces of one solid against another.
type rayClassifier struct {
	other *Solid
	faces []FaceID
	rng   *rand.Rand
	opts  Options
}

func newRayClassifier(other *Solid, opts Options) *rayClassifier {
	return &rayClassifier{
		other: other,
		faces: other.Faces(),
		rng:   rand.New(rand.NewSource(opts.RaySeed)),
		opts:  opts,
	}
}

// classify casts a ray from the centroid of face id along its normal and
// returns the face's state from the nearest face of the other solid the
// ray meets. A ray starting on a face of the other solid gives Same or
// Opposite by the normals' agreement; otherwise the hit face's normal
// says whether the centroid is in front of or behind the other surface.
// A ray that meets nothing is Outside.
func (r *rayClassifier) classify(s *Solid, id FaceID) (FaceState, error) {
	eps := r.opts.Epsilon
	origin := s.Centroid(id)
	dir := s.Normal(id)

	for attempt := 0; attempt < r.opts.MaxRayAttempts; attempt++ {
		hit, dot, dist, ok := r.cast(origin, dir)
		if !ok {
			dir = r.perturb(dir)
			continue
		}
		switch {
		case hit < 0:
			return FaceOutside, nil
		case math.Abs(dist) < eps && dot > eps:
			return FaceSame, nil
		case math.Abs(dist) < eps && dot < -eps:
			return FaceOpposite, nil
		case dot > eps:
			return FaceInside, nil
		case dot < -eps:
			return FaceOutside, nil
		}
		// A grazing hit says nothing; try another direction.
		dir = r.perturb(dir)
	}
	return FaceUnknown, errors.Wrapf(ErrRayCast, "solid %q face %d after %d attempts", s.Name, id, r.opts.MaxRayAttempts)
}

// cast finds the nearest face of the other solid hit by the ray. It
// returns the hit face (or -1), the dot product of its normal with dir
// and the hit distance. ok is false when the ray lies in a face plane and
// must be moved.
func (r *rayClassifier) cast(origin, dir v3.Vec) (hit FaceID, dot, dist float64, ok bool) {
	eps := r.opts.Epsilon
	o := r.other
	hit, dist = -1, math.Inf(1)
	for _, f := range r.faces {
		n := o.Normal(f)
		d := n.Dot(dir)
		h := o.distance(f, origin) // origin's height above the plane
		if math.Abs(d) < eps {
			if math.Abs(h) < eps {
				return -1, 0, 0, false
			}
			continue
		}
		t := -h / d
		if t < -eps || t > dist {
			continue
		}
		p := origin.Add(dir.MulScalar(t))
		if !o.hasPoint(f, p, eps) {
			continue
		}
		if math.Abs(t) < eps {
			t = 0
		}
		if t < dist || (t == dist && f < hit) {
			hit, dot, dist = f, d, t
		}
	}
	return hit, dot, dist, true
}

// perturb nudges dir by a small random offset.
func (r *rayClassifier) perturb(dir v3.Vec) v3.Vec {
	j := v3.Vec{
		X: (r.rng.Float64()*2 - 1) * rayPerturbation,
		Y: (r.rng.Float64()*2 - 1) * rayPerturbation,
		Z: (r.rng.Float64()*2 - 1) * rayPerturbation,
	}
	return dir.Add(j).Normalize()
}

// classifyFaces gives every live face of s a state relative to other.
// Faces with a classified vertex take its state; the rest cast a ray and
// flood the result into their Unknown vertices.
func classifyFaces(s, other *Solid, opts Options) error {
	if other.FaceCount() == 0 {
		for _, id := range s.Faces() {
			s.faces[id].State = FaceOutside
		}
		return nil
	}
	rc := newRayClassifier(other, opts)
	rays := 0
	for _, id := range s.Faces() {
		if s.simpleClassify(id) {
			continue
		}
		st, err := rc.classify(s, id)
		if err != nil {
			return err
		}
		rays++
		s.faces[id].State = st
		var vs VertexState
		switch st {
		case FaceInside:
			vs = Inside
		case FaceOutside:
			vs = Outside
		default:
			continue
		}
		for _, v := range s.faces[id].V {
			s.Classify(v, vs, true)
		}
	}
	opts.logf("csg: classified %s with %d rays", s.Name, rays)
	return nil
}
