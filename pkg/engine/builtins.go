package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/chazu/tricsg/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms tricsg Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: my-part -> my_part
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}


// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so solids can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(solid %q)", n.name)
	}
	return fmt.Sprintf("(solid %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number returns the keyword argument key, or else the positional argument
// at index pos, as a float64. Missing arguments are an error.
func (a kwArgs) number(key string, pos int) (float64, error) {
	if v, ok := a.kw[key]; ok {
		return toFloat64(v)
	}
	if pos >= 0 && pos < len(a.positional) {
		return toFloat64(a.positional[pos])
	}
	return 0, fmt.Errorf("missing %s", key)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// solidArgs collects solid references from args, flattening lists and
// arrays so (union (list a b c)) and (union a b c) are equivalent.
func solidArgs(args []zygo.Sexp) ([]*sexpNodeRef, error) {
	var refs []*sexpNodeRef
	for i, arg := range args {
		switch arg.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(arg)
			if err != nil {
				return nil, err
			}
			inner, err := solidArgs(items)
			if err != nil {
				return nil, err
			}
			refs = append(refs, inner...)
		default:
			ref, err := toNodeRef(arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// ---------------------------------------------------------------------------
// Graph construction
// ---------------------------------------------------------------------------

// builder adds nodes to the graph of one evaluation. Anonymous node IDs
// are derived from the builtin name and a per-evaluation counter, so the
// same source always yields the same IDs.
type builder struct {
	g      *graph.DesignGraph
	counts map[string]int
}

func newBuilder(g *graph.DesignGraph) *builder {
	return &builder{g: g, counts: make(map[string]int)}
}

// add creates a node for builtin fn and returns a reference to it.
func (b *builder) add(fn string, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
	b.counts[fn]++
	id := graph.NewNodeID(fmt.Sprintf("%s/%d", fn, b.counts[fn]))
	b.g.AddNode(&graph.Node{
		ID:       id,
		Kind:     kind,
		Source:   graph.SourceRef{Expr: fn},
		Children: children,
		Data:     data,
	})
	return &sexpNodeRef{id: id}
}

// fold combines refs left to right with op: (op a b c) is ((a op b) op c).
func (b *builder) fold(fn string, op graph.BoolOp, refs []*sexpNodeRef) *sexpNodeRef {
	acc := refs[0]
	for _, r := range refs[1:] {
		acc = b.add(fn, graph.NodeBoolean, graph.BooleanData{Op: op}, acc.id, r.id)
	}
	return acc
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFunc is the signature zygomys expects from AddFunction.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs all tricsg DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during evaluation,
// and stop working once ctx is done.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(ctx context.Context, env *zygo.Zlisp, g *graph.DesignGraph) {
	b := newBuilder(g)

	// Every builtin fails once ctx is done, which ends a runaway program
	// at its next call.
	install := func(fn string, f builtinFunc) {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if err := ctx.Err(); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			return f(env, name, args)
		})
	}

	// -----------------------------------------------------------------------
	// (box :x 40 :y 20 :z 10), (box 40 20 10) or (box :size (vec3 40 20 10))
	// -----------------------------------------------------------------------
	install("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var bd graph.BoxData

		if v, ok := pa.kw["size"]; ok {
			size, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			bd.Size = size
		} else {
			var err error
			if bd.Size.X, err = pa.number("x", 0); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: x: %w", err)
			}
			if bd.Size.Y, err = pa.number("y", 1); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: y: %w", err)
			}
			if bd.Size.Z, err = pa.number("z", 2); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: z: %w", err)
			}
		}

		return b.add("box", graph.NodePrimitive, bd), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 20 :radius 5 :segments 24)
	// -----------------------------------------------------------------------
	install("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var cd graph.CylinderData

		var err error
		if cd.Height, err = pa.number("height", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		if cd.Radius, err = pa.number("radius", 1); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		if _, ok := pa.kw["segments"]; ok || len(pa.positional) > 2 {
			n, err := pa.number("segments", 2)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			cd.Segments = int(n)
		}

		return b.add("cylinder", graph.NodePrimitive, cd), nil
	})

	// -----------------------------------------------------------------------
	// (torus :inner 10 :outer 30)
	// -----------------------------------------------------------------------
	install("torus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var td graph.TorusData

		var err error
		if td.Inner, err = pa.number("inner", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: inner: %w", err)
		}
		if td.Outer, err = pa.number("outer", 1); err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: outer: %w", err)
		}

		return b.add("torus", graph.NodePrimitive, td), nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	install("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (translate solid (vec3 0 0 19)) and (rotate solid (vec3 0 0 90))
	// -----------------------------------------------------------------------
	transform := func(fn string, rotate bool) builtinFunc {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3", fn)
			}
			child, err := toNodeRef(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			vec, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}

			td := graph.TransformData{}
			if rotate {
				td.Rotation = &vec
			} else {
				td.Translation = &vec
			}
			return b.add(fn, graph.NodeTransform, td, child.id), nil
		}
	}
	install("translate", transform("translate", false))
	install("rotate", transform("rotate", true))

	// -----------------------------------------------------------------------
	// (union a b ...), (difference a b ...), (intersection a b ...)
	// -----------------------------------------------------------------------
	boolean := func(fn string, op graph.BoolOp) builtinFunc {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			refs, err := solidArgs(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			if len(refs) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", fn, len(refs))
			}
			return b.fold(fn, op, refs), nil
		}
	}
	install("union", boolean("union", graph.BoolUnion))
	install("difference", boolean("difference", graph.BoolDifference))
	install("intersection", boolean("intersection", graph.BoolIntersection))

	// -----------------------------------------------------------------------
	// (defsolid "name" expr)
	// -----------------------------------------------------------------------
	install("defsolid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defsolid requires a name and a body expression")
		}

		solidName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: name: %w", err)
		}
		if solidName == "" {
			return zygo.SexpNull, fmt.Errorf("defsolid: name must not be empty")
		}
		ref, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: body: %w", err)
		}
		if g.Lookup(solidName) != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: %q is already defined", solidName)
		}

		node := g.Get(ref.id)
		if node.Name != "" {
			return zygo.SexpNull, fmt.Errorf("defsolid: solid is already named %q", node.Name)
		}
		node.Name = solidName
		g.AddNode(node)

		return &sexpNodeRef{id: node.ID, name: solidName}, nil
	})

	// -----------------------------------------------------------------------
	// (solid "name")
	// -----------------------------------------------------------------------
	install("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("solid requires a name argument")
		}

		solidName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: name: %w", err)
		}

		n := g.Lookup(solidName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("solid: no solid named %q", solidName)
		}

		return &sexpNodeRef{id: n.ID, name: solidName}, nil
	})

	// -----------------------------------------------------------------------
	// (render a b ...) marks solids as graph roots; each renders as a mesh.
	// -----------------------------------------------------------------------
	install("render", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		refs, err := solidArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("render: %w", err)
		}
		if len(refs) == 0 {
			return zygo.SexpNull, fmt.Errorf("render requires at least 1 solid")
		}
		for _, r := range refs {
			g.AddRoot(r.id)
		}
		return refs[len(refs)-1], nil
	})
}
