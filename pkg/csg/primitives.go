package csg

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Axis selects the axis of a rotational primitive.
type Axis uint8

const (
	AxisZ Axis = iota // disks parallel to XY
	AxisX             // disks parallel to YZ
	AxisY             // disks parallel to ZX
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// along maps a point built around Z onto axis a. The mappings are cyclic
// permutations, so winding is preserved.
func (a Axis) along(p v3.Vec) v3.Vec {
	switch a {
	case AxisX:
		return v3.Vec{X: p.Z, Y: p.X, Z: p.Y}
	case AxisY:
		return v3.Vec{X: p.Y, Y: p.Z, Z: p.X}
	default:
		return p
	}
}

// Sagitta limits for circle approximation.
const (
	DefaultSagitta = 1e-2
	MinSagitta     = 1e-6
	MaxSagitta     = 10
)

// Sectors returns the smallest number of chords, at least 3, approximating
// a circle of radius r with no chord further than e from the arc.
func Sectors(r, e float64) (int, error) {
	if !(r > 0) || math.IsInf(r, 0) {
		return 0, errors.Errorf("csg: invalid radius %g", r)
	}
	if !(e >= MinSagitta && e <= MaxSagitta) {
		return 0, errors.Errorf("csg: invalid sagitta %g", e)
	}
	if e >= r {
		return 3, nil
	}
	n := int(math.Ceil(math.Pi / math.Acos(1-e/r)))
	if n < 3 {
		n = 3
	}
	return n, nil
}

// AddOriented adds the triangle (a, b, c), reversing it if its normal
// points toward centre. It is only meaningful for convex solids.
func (s *Solid) AddOriented(centre, a, b, c v3.Vec) (FaceID, error) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Dot(a.Add(b).Add(c).MulScalar(1.0/3.0).Sub(centre)) < 0 {
		b, c = c, b
	}
	return s.AddFace(a, b, c)
}

// Box returns an x × y × z box centred at the origin.
func Box(x, y, z float64) (*Solid, error) {
	if !(x > 0 && y > 0 && z > 0) {
		return nil, errors.Errorf("csg: invalid box size %g×%g×%g", x, y, z)
	}
	hx, hy, hz := x/2, y/2, z/2
	c := func(i int) v3.Vec {
		p := v3.Vec{X: -hx, Y: -hy, Z: -hz}
		if i&1 != 0 {
			p.X = hx
		}
		if i&2 != 0 {
			p.Y = hy
		}
		if i&4 != 0 {
			p.Z = hz
		}
		return p
	}
	// Corner indices of each side, in cyclic order.
	sides := [6][4]int{
		{0, 2, 6, 4}, // -x
		{1, 5, 7, 3}, // +x
		{0, 4, 5, 1}, // -y
		{2, 3, 7, 6}, // +y
		{0, 1, 3, 2}, // -z
		{4, 6, 7, 5}, // +z
	}
	s := NewSolid(fmt.Sprintf("box(%g,%g,%g)", x, y, z))
	for _, q := range sides {
		if _, err := s.AddOriented(v3.Vec{}, c(q[0]), c(q[1]), c(q[2])); err != nil {
			return nil, err
		}
		if _, err := s.AddOriented(v3.Vec{}, c(q[0]), c(q[2]), c(q[3])); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Cube returns a cube of the given edge length centred at the origin.
func Cube(size float64) (*Solid, error) {
	return Box(size, size, size)
}

// Cylinder returns a cylinder of the given radius and depth centred at the
// origin, with as many sectors as the sagitta e requires.
func Cylinder(axis Axis, radius, depth, e float64) (*Solid, error) {
	n, err := Sectors(radius, e)
	if err != nil {
		return nil, err
	}
	return CylinderN(axis, radius, depth, n)
}

// CylinderN returns a cylinder with exactly n sectors.
func CylinderN(axis Axis, radius, depth float64, n int) (*Solid, error) {
	if !(radius > 0) || !(depth > 0) {
		return nil, errors.Errorf("csg: invalid cylinder radius %g depth %g", radius, depth)
	}
	if n < 3 {
		return nil, errors.Errorf("csg: cylinder needs at least 3 sectors, got %d", n)
	}
	s := NewSolid(fmt.Sprintf("cylinder-%v(%g,%g)", axis, radius, depth))
	z0, z1 := -depth/2, depth/2
	ring := make([]v3.Vec, n)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring[i] = v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	at := func(p v3.Vec, z float64) v3.Vec {
		p.Z = z
		return axis.along(p)
	}
	for i := range ring {
		p0, p1 := ring[i], ring[(i+1)%n]
		tris := [4][3]v3.Vec{
			{at(v3.Vec{}, z1), at(p0, z1), at(p1, z1)},
			{at(p0, z1), at(p0, z0), at(p1, z0)},
			{at(p0, z1), at(p1, z0), at(p1, z1)},
			{at(v3.Vec{}, z0), at(p1, z0), at(p0, z0)},
		}
		for _, t := range tris {
			if _, err := s.AddOriented(v3.Vec{}, t[0], t[1], t[2]); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Revolve sweeps a closed profile in the (radius, z) half-plane once
// around the Z axis. The profile is a simple polygon with every radius at
// least zero; points on the axis close the solid there. It gets as many
// sectors as its largest radius needs for sagitta e.
func Revolve(profile []v2.Vec, e float64) (*Solid, error) {
	if len(profile) < 3 {
		return nil, errors.Errorf("csg: revolve profile needs at least 3 points, got %d", len(profile))
	}
	rmax, area := 0.0, 0.0
	for i, p := range profile {
		if p.X < 0 || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return nil, errors.Errorf("csg: revolve profile point %v is off the half-plane", p)
		}
		rmax = math.Max(rmax, p.X)
		area += p.Cross(profile[(i+1)%len(profile)])
	}
	if area == 0 {
		return nil, errors.New("csg: revolve profile has no area")
	}
	n, err := Sectors(rmax, e)
	if err != nil {
		return nil, err
	}
	pts := append([]v2.Vec(nil), profile...)
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}

	grid := make([][]v3.Vec, n)
	for k := range grid {
		a := 2 * math.Pi * float64(k) / float64(n)
		grid[k] = make([]v3.Vec, len(pts))
		for i, p := range pts {
			grid[k][i] = v3.Vec{X: p.X * math.Cos(a), Y: p.X * math.Sin(a), Z: p.Y}
		}
	}
	s := NewSolid(fmt.Sprintf("revolve(%d)", len(pts)))
	for k := 0; k < n; k++ {
		l := (k + 1) % n
		for i := range pts {
			j := (i + 1) % len(pts)
			a, b, c, d := grid[k][i], grid[k][j], grid[l][j], grid[l][i]
			for _, t := range [2][3]v3.Vec{{a, c, b}, {a, d, c}} {
				// Quads touching the axis collapse to one triangle.
				if _, err := s.AddFace(t[0], t[1], t[2]); err != nil && errors.Cause(err) != ErrDegenerateFace {
					return nil, err
				}
			}
		}
	}
	return s, nil
}

// Torus returns a ring about the Z axis with a hole of radius inner and an
// overall radius outer. The tube and the ring are divided as finely as
// the sagitta e requires.
func Torus(inner, outer, e float64) (*Solid, error) {
	if !(inner > 0) || !(outer > inner) {
		return nil, errors.Errorf("csg: invalid torus radii inner %g outer %g", inner, outer)
	}
	tube := (outer - inner) / 2
	ring := (outer + inner) / 2
	cn, err := Sectors(tube, e)
	if err != nil {
		return nil, err
	}
	profile := make([]v2.Vec, cn)
	for i := range profile {
		a := 2 * math.Pi * float64(i) / float64(cn)
		profile[i] = v2.Vec{X: ring + tube*math.Cos(a), Y: tube * math.Sin(a)}
	}
	s, err := Revolve(profile, e)
	if err != nil {
		return nil, err
	}
	s.Name = fmt.Sprintf("torus(%g,%g)", inner, outer)
	return s, nil
}
