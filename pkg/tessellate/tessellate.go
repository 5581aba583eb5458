// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. Each root renders as one mesh, except a group
// root, which renders one mesh per child.
package tessellate

import (
	"fmt"

	"github.com/chazu/tricsg/pkg/graph"
	"github.com/chazu/tricsg/pkg/kernel"
)

// transformStack accumulates spatial transforms during graph traversal.
// Entries are pushed outermost first and applied to a primitive innermost
// first, each as rotation followed by translation.
type transformStack struct {
	entries []graph.TransformData
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(td graph.TransformData) {
	ts.entries = append(ts.entries, td)
}

func (ts *transformStack) pop() {
	if len(ts.entries) > 0 {
		ts.entries = ts.entries[:len(ts.entries)-1]
	}
}

// apply maps s through every transform on the stack.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.entries) - 1; i >= 0; i-- {
		td := ts.entries[i]
		if r := td.Rotation; r != nil && !r.IsZero() {
			s = k.Rotate(s, r.X, r.Y, r.Z)
		}
		if t := td.Translation; t != nil && !t.IsZero() {
			s = k.Translate(s, t.X, t.Y, t.Z)
		}
	}
	return s
}

// Part is an evaluated solid ready for meshing.
type Part struct {
	Name  string
	Solid kernel.Solid
}

// Solids evaluates every root of the graph to a kernel solid. Booleans run
// through the kernel; transforms are pushed onto a stack and applied to
// the primitives beneath them. The graph is never mutated.
func Solids(g *graph.DesignGraph, k kernel.Kernel) ([]Part, error) {
	if g == nil {
		return nil, nil
	}

	var parts []Part
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}

		targets := []*graph.Node{root}
		if root.Kind == graph.NodeGroup {
			targets = g.Children(root)
		}
		for _, n := range targets {
			s, err := walkNode(g, k, n, newTransformStack())
			if err != nil {
				return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
			}
			parts = append(parts, Part{Name: partName(g, n), Solid: s})
		}
	}

	return parts, nil
}

// Tessellate walks the design graph and produces one triangle mesh per
// rendered solid using the provided geometry kernel.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	parts, err := Solids(g, k)
	if err != nil {
		return nil, err
	}

	meshes := make([]*kernel.Mesh, 0, len(parts))
	for _, p := range parts {
		mesh, err := k.ToMesh(p.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", p.Name, err)
		}
		mesh.PartName = p.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// partName prefers the node's Name, then the name of a solid it only
// transforms, then its short ID.
func partName(g *graph.DesignGraph, n *graph.Node) string {
	for cur := n; cur != nil; {
		if cur.Name != "" {
			return cur.Name
		}
		if cur.Kind != graph.NodeTransform || len(cur.Children) != 1 {
			break
		}
		cur = g.Get(cur.Children[0])
	}
	return n.ID.Short()
}

// walkNode recursively evaluates a node to a kernel solid.
func walkNode(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return handlePrimitive(g, k, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, k, n, ts)

	case graph.NodeBoolean:
		return handleBoolean(g, k, n, ts)

	case graph.NodeGroup:
		return handleGroup(g, k, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handlePrimitive creates geometry for a primitive node and places it.
func handlePrimitive(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	var solid kernel.Solid

	switch data := n.Data.(type) {
	case graph.BoxData:
		solid = k.Box(data.Size.X, data.Size.Y, data.Size.Z)
	case graph.CylinderData:
		segments := data.Segments
		if segments == 0 {
			segments = g.Defaults.Segments
		}
		solid = k.Cylinder(data.Height, data.Radius, segments)
	case graph.TorusData:
		solid = k.Torus(data.Inner, data.Outer)
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	return ts.apply(k, solid), nil
}

// handleTransform pushes the transform, evaluates the child, then pops.
func handleTransform(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("transform node %s has %d children, want 1", n.ID.Short(), len(children))
	}

	ts.push(td)
	defer ts.pop()
	return walkNode(g, k, children[0], ts)
}

// handleBoolean evaluates both operands under the current transforms and
// combines them through the kernel.
func handleBoolean(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) != 2 {
		return nil, fmt.Errorf("boolean node %s has %d children, want 2", n.ID.Short(), len(children))
	}

	a, err := walkNode(g, k, children[0], ts)
	if err != nil {
		return nil, err
	}
	b, err := walkNode(g, k, children[1], ts)
	if err != nil {
		return nil, err
	}

	var out kernel.Solid
	switch bd.Op {
	case graph.BoolUnion:
		out, err = k.Union(a, b)
	case graph.BoolDifference:
		out, err = k.Difference(a, b)
	case graph.BoolIntersection:
		out, err = k.Intersection(a, b)
	default:
		return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), bd.Op)
	}
	if err != nil {
		return nil, fmt.Errorf("boolean node %s: %w", n.ID.Short(), err)
	}
	return out, nil
}

// handleGroup unions the children of a group that is used as an operand.
func handleGroup(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	children := g.Children(n)
	if len(children) == 0 {
		return nil, fmt.Errorf("group node %s is empty", n.ID.Short())
	}

	acc, err := walkNode(g, k, children[0], ts)
	if err != nil {
		return nil, err
	}
	for _, child := range children[1:] {
		s, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		if acc, err = k.Union(acc, s); err != nil {
			return nil, fmt.Errorf("group node %s: %w", n.ID.Short(), err)
		}
	}
	return acc, nil
}
