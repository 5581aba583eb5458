package engine

import (
	"strings"
	"testing"

	"github.com/chazu/tricsg/pkg/graph"
)

// mustEvaluate evaluates source and fails the test on any error.
func mustEvaluate(t *testing.T, source string) *graph.DesignGraph {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	return g
}

// evalErrors evaluates source, expecting non-fatal errors.
func evalErrors(t *testing.T, source string) []EvalError {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil graph on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	return evalErrs
}

func hasEvalError(errs []EvalError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// root returns the single root of g.
func root(t *testing.T, g *graph.DesignGraph) *graph.Node {
	t.Helper()
	if len(g.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(g.Roots))
	}
	return g.Get(g.Roots[0])
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(torus :inner 1)`,
			expect: `(torus "__kw_inner" 1)`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :x 400 :y 200)`,
			expect: `(box "__kw_x" 400 "__kw_y" 200)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def plate-hole :outer-radius)`,
			expect: `(def plate_hole "__kw_outer-radius")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphenated name in string preserved",
			input:  `(defsolid "base-plate" x)`,
			expect: `(defsolid "base-plate" x)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

func TestBoxForms(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"keywords", `(render (box :x 40 :y 20 :z 10))`},
		{"positional", `(render (box 40 20 10))`},
		{"size vector", `(render (box :size (vec3 40 20 10)))`},
		{"variables", "(def w 40)\n(render (box w (/ w 2) 10))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustEvaluate(t, tt.source)
			n := root(t, g)
			if n.Kind != graph.NodePrimitive {
				t.Fatalf("expected NodePrimitive, got %s", n.Kind)
			}
			bd, ok := n.Data.(graph.BoxData)
			if !ok {
				t.Fatalf("expected BoxData, got %T", n.Data)
			}
			if bd.Size != (graph.Vec3{X: 40, Y: 20, Z: 10}) {
				t.Errorf("size = %v, want (40, 20, 10)", bd.Size)
			}
		})
	}
}

func TestCylinder(t *testing.T) {
	g := mustEvaluate(t, `(render (cylinder :height 20 :radius 5 :segments 24))`)
	cd, ok := root(t, g).Data.(graph.CylinderData)
	if !ok {
		t.Fatalf("expected CylinderData, got %T", root(t, g).Data)
	}
	if cd.Height != 20 || cd.Radius != 5 || cd.Segments != 24 {
		t.Errorf("cylinder = %+v, want height 20 radius 5 segments 24", cd)
	}

	g = mustEvaluate(t, `(render (cylinder 20 5))`)
	cd = root(t, g).Data.(graph.CylinderData)
	if cd.Segments != 0 {
		t.Errorf("segments = %d, want 0 (graph default)", cd.Segments)
	}
}

func TestTorus(t *testing.T) {
	g := mustEvaluate(t, `(render (torus :inner 10 :outer 30))`)
	td, ok := root(t, g).Data.(graph.TorusData)
	if !ok {
		t.Fatalf("expected TorusData, got %T", root(t, g).Data)
	}
	if td.Inner != 10 || td.Outer != 30 {
		t.Errorf("torus = %+v, want inner 10 outer 30", td)
	}
}

func TestPrimitiveArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"box missing z", `(box 1 2)`, "box: z"},
		{"box non-number", `(box "a" 1 1)`, "expected number"},
		{"cylinder missing radius", `(cylinder :height 1)`, "cylinder: radius"},
		{"torus missing outer", `(torus :inner 1)`, "torus: outer"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evalErrors(t, tt.source)
			if !hasEvalError(errs, tt.wantMsg) {
				t.Errorf("errors = %v, want one containing %q", errs, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

func TestTranslateRotate(t *testing.T) {
	g := mustEvaluate(t, `(render (rotate (translate (box 1 1 1) (vec3 1 2 3)) (vec3 0 0 90)))`)

	rot := root(t, g)
	if rot.Kind != graph.NodeTransform {
		t.Fatalf("expected NodeTransform, got %s", rot.Kind)
	}
	rd := rot.Data.(graph.TransformData)
	if rd.Rotation == nil || *rd.Rotation != (graph.Vec3{Z: 90}) {
		t.Errorf("rotation = %v, want (0, 0, 90)", rd.Rotation)
	}
	if rd.Translation != nil {
		t.Errorf("rotate node should not translate, got %v", rd.Translation)
	}

	children := g.Children(rot)
	if len(children) != 1 {
		t.Fatalf("rotate children = %d, want 1", len(children))
	}
	td := children[0].Data.(graph.TransformData)
	if td.Translation == nil || *td.Translation != (graph.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("translation = %v, want (1, 2, 3)", td.Translation)
	}
}

func TestTransformErrors(t *testing.T) {
	errs := evalErrors(t, `(translate (vec3 1 2 3) (box 1 1 1))`)
	if !hasEvalError(errs, "expected solid") {
		t.Errorf("errors = %v, want 'expected solid'", errs)
	}
	errs = evalErrors(t, `(rotate (box 1 1 1))`)
	if !hasEvalError(errs, "requires a solid and a vec3") {
		t.Errorf("errors = %v, want arity error", errs)
	}
}

// ---------------------------------------------------------------------------
// Booleans
// ---------------------------------------------------------------------------

func TestBooleanOps(t *testing.T) {
	tests := []struct {
		fn string
		op graph.BoolOp
	}{
		{"union", graph.BoolUnion},
		{"difference", graph.BoolDifference},
		{"intersection", graph.BoolIntersection},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			g := mustEvaluate(t, "(render ("+tt.fn+" (box 2 2 2) (cylinder 4 0.5)))")
			n := root(t, g)
			if n.Kind != graph.NodeBoolean {
				t.Fatalf("expected NodeBoolean, got %s", n.Kind)
			}
			if bd := n.Data.(graph.BooleanData); bd.Op != tt.op {
				t.Errorf("op = %s, want %s", bd.Op, tt.op)
			}
			children := g.Children(n)
			if len(children) != 2 {
				t.Fatalf("children = %d, want 2", len(children))
			}
			if _, ok := children[0].Data.(graph.BoxData); !ok {
				t.Errorf("first operand = %T, want BoxData", children[0].Data)
			}
			if _, ok := children[1].Data.(graph.CylinderData); !ok {
				t.Errorf("second operand = %T, want CylinderData", children[1].Data)
			}
		})
	}
}

func TestBooleanLeftFold(t *testing.T) {
	g := mustEvaluate(t, `(render (difference (box 3 3 3) (box 1 1 1) (cylinder 5 1)))`)
	if g.NodeCount() != 5 {
		t.Fatalf("node count = %d, want 5", g.NodeCount())
	}

	outer := root(t, g)
	children := g.Children(outer)
	if children[0].Kind != graph.NodeBoolean {
		t.Fatalf("first operand of outer difference = %s, want boolean", children[0].Kind)
	}
	if _, ok := children[1].Data.(graph.CylinderData); !ok {
		t.Errorf("second operand = %T, want CylinderData", children[1].Data)
	}
	inner := g.Children(children[0])
	if inner[0].Data.(graph.BoxData).Size.X != 3 || inner[1].Data.(graph.BoxData).Size.X != 1 {
		t.Error("inner difference operands out of order")
	}
}

func TestBooleanListArgument(t *testing.T) {
	g := mustEvaluate(t, `(render (union (list (box 1 1 1) (box 2 2 2) (box 3 3 3))))`)
	if got := len(g.Booleans()); got != 2 {
		t.Errorf("boolean nodes = %d, want 2", got)
	}
}

func TestBooleanTooFewOperands(t *testing.T) {
	errs := evalErrors(t, `(union (box 1 1 1))`)
	if !hasEvalError(errs, "at least 2 solids") {
		t.Errorf("errors = %v, want 'at least 2 solids'", errs)
	}
}

// ---------------------------------------------------------------------------
// Naming and rendering
// ---------------------------------------------------------------------------

func TestDefsolidAndLookup(t *testing.T) {
	source := `
; a plate with a hole
(defsolid "plate" (box 40 40 5))
(defsolid "hole" (translate (cylinder 10 4) (vec3 20 20 2.5)))
(render (difference (solid "plate") (solid "hole")))
`
	g := mustEvaluate(t, source)

	plate := g.Lookup("plate")
	if plate == nil {
		t.Fatal("expected node named 'plate'")
	}
	if plate.Kind != graph.NodePrimitive {
		t.Errorf("plate kind = %s, want primitive", plate.Kind)
	}
	hole := g.Lookup("hole")
	if hole == nil || hole.Kind != graph.NodeTransform {
		t.Fatal("expected transform node named 'hole'")
	}

	diff := root(t, g)
	if diff.Children[0] != plate.ID || diff.Children[1] != hole.ID {
		t.Error("difference should reference the named solids in order")
	}
}

func TestDefsolidErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"duplicate", "(defsolid \"a\" (box 1 1 1))\n(defsolid \"a\" (box 2 2 2))", "already defined"},
		{"rename", "(defsolid \"a\" (box 1 1 1))\n(defsolid \"b\" (solid \"a\"))", "already named"},
		{"empty name", `(defsolid "" (box 1 1 1))`, "must not be empty"},
		{"not a solid", `(defsolid "v" (vec3 1 2 3))`, "expected solid"},
		{"unknown solid", `(solid "nope")`, "no solid named"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evalErrors(t, tt.source)
			if !hasEvalError(errs, tt.wantMsg) {
				t.Errorf("errors = %v, want one containing %q", errs, tt.wantMsg)
			}
		})
	}
}

func TestRenderMultiple(t *testing.T) {
	g := mustEvaluate(t, `(render (box 1 1 1) (list (torus 1 2) (cylinder 1 1)))`)
	if len(g.Roots) != 3 {
		t.Fatalf("roots = %d, want 3", len(g.Roots))
	}
}

func TestRenderErrors(t *testing.T) {
	errs := evalErrors(t, `(render)`)
	if !hasEvalError(errs, "at least 1 solid") {
		t.Errorf("errors = %v, want 'at least 1 solid'", errs)
	}
}

// ---------------------------------------------------------------------------
// Validation surfaces as eval errors and warnings
// ---------------------------------------------------------------------------

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"zero box", `(render (box 0 1 1))`, "box dimension X"},
		{"inverted torus", `(render (torus :inner 3 :outer 2))`, "must exceed"},
		{"two segments", `(render (cylinder 1 1 2))`, "at least 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evalErrors(t, tt.source)
			if !hasEvalError(errs, tt.wantMsg) {
				t.Errorf("errors = %v, want one containing %q", errs, tt.wantMsg)
			}
		})
	}
}

func TestWarningsOrphan(t *testing.T) {
	g := mustEvaluate(t, "(defsolid \"spare\" (box 1 1 1))\n(render (union (box 1 1 1) (box 2 2 2)))")
	warnings := Warnings(g)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
	if !strings.Contains(warnings[0].Message, "orphan") {
		t.Errorf("warning = %q, want orphan", warnings[0].Message)
	}
	if warnings[0].NodeID != g.Lookup("spare").ID {
		t.Error("warning should point at the unrendered solid")
	}

	if Warnings(nil) != nil {
		t.Error("Warnings(nil) should be nil")
	}
}

// ---------------------------------------------------------------------------
// Regressions
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	g := mustEvaluate(t, "")
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	g := mustEvaluate(t, "(+ 1 2)")
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
}
