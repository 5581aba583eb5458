// Package kernel defines the abstract geometry kernel interface.
// Implementations (trimesh, sdfx) provide solid modeling and boolean
// operations behind this interface, so the design graph can be rendered
// with exact polyhedral booleans or with implicit surfaces without
// changing the rest of the system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Cylinder and
	// Torus are centred on the origin with their axis along Z.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Torus(inner, outer float64) Solid

	// Boolean operations. A polyhedral kernel can fail to converge on
	// degenerate input, so these return an error instead of panicking.
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
