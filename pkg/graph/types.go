package graph

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// nodeNamespace scopes node IDs so that equal paths in other UUID
// namespaces never collide with ours.
var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/tricsg/graph"))

// NodeID is a deterministic identifier derived from the path of the
// expression that created a node.
type NodeID uuid.UUID

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID returns the name-based (SHA-1) UUID of path. The same path
// always yields the same ID.
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(nodeNamespace, []byte(path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// String returns the canonical UUID form.
func (id NodeID) String() string { return uuid.UUID(id).String() }

// Short returns the first 6 bytes as hex, for messages.
func (id NodeID) Short() string { return hex.EncodeToString(id[:6]) }

// MarshalText lets NodeID serve as a JSON value and map key.
func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses the canonical UUID form.
func (id *NodeID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = NodeID(u)
	return nil
}

// SourceRef locates the expression that produced a node.
type SourceRef struct {
	Line int    `json:"line,omitempty"`
	Expr string `json:"expr,omitempty"`
}

// Vec3 is a 3D vector in model units.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v * f.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
