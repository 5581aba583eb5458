package trimesh

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/tricsg/pkg/csg"
)

const tol = 1e-9

func checkBox(t *testing.T, gotMin, gotMax, wantMin, wantMax [3]float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(gotMin[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, gotMin[i], wantMin[i])
		}
		if math.Abs(gotMax[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, gotMax[i], wantMax[i])
		}
	}
}

// --- Primitives ---

func TestBox(t *testing.T) {
	k := Default()
	box := k.Box(100, 50, 25)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() != 12 {
		t.Fatalf("box triangle count: %d, want 12", mesh.TriangleCount())
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	min, max := box.BoundingBox()
	checkBox(t, min, max, [3]float64{0, 0, 0}, [3]float64{100, 50, 25})
	if got := Unwrap(box).Volume(); math.Abs(got-125000) > 1e-6 {
		t.Errorf("volume = %f, want 125000", got)
	}
}

func TestCylinder(t *testing.T) {
	k := Default()
	tests := []struct {
		name     string
		segments int
	}{
		{"explicit segments", 32},
		{"from sagitta", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cyl := k.Cylinder(50, 10, tt.segments)
			mesh, err := k.ToMesh(cyl)
			if err != nil {
				t.Fatalf("ToMesh failed: %v", err)
			}
			if tt.segments > 0 && mesh.TriangleCount() != 4*tt.segments {
				t.Errorf("triangle count = %d, want %d", mesh.TriangleCount(), 4*tt.segments)
			}
			min, max := cyl.BoundingBox()
			if math.Abs(min[2]+25) > tol || math.Abs(max[2]-25) > tol {
				t.Errorf("z extent = [%f, %f], want [-25, 25]", min[2], max[2])
			}
			t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
		})
	}
}

func TestTorus(t *testing.T) {
	k := Default()
	tor := k.Torus(10, 30)
	min, max := tor.BoundingBox()
	if max[2] > 10+tol || min[2] < -10-tol {
		t.Errorf("z extent = [%f, %f], want within [-10, 10]", min[2], max[2])
	}
	if max[0] > 30+tol || max[0] < 29 {
		t.Errorf("x max = %f, want just under 30", max[0])
	}
	want := 2 * math.Pi * math.Pi * 20 * 10 * 10
	if got := Unwrap(tor).Volume(); math.Abs(got-want)/want > 0.03 {
		t.Errorf("volume = %f, want ~%f", got, want)
	}
}

func TestPrimitivePanics(t *testing.T) {
	k := Default()
	tests := []struct {
		name string
		fn   func()
	}{
		{"box", func() { k.Box(0, 1, 1) }},
		{"cylinder", func() { k.Cylinder(-1, 1, 8) }},
		{"torus", func() { k.Torus(3, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

// --- Booleans ---

func TestBooleans(t *testing.T) {
	k := Default()
	a := k.Box(2, 2, 2)
	b := k.Translate(k.Box(2, 2, 2), 1, 0, 0)

	u, err := k.Union(a, b)
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	min, max := u.BoundingBox()
	checkBox(t, min, max, [3]float64{0, 0, 0}, [3]float64{3, 2, 2})
	if got := Unwrap(u).Volume(); math.Abs(got-12) > 1e-6 {
		t.Errorf("union volume = %f, want 12", got)
	}

	i, err := k.Intersection(a, b)
	if err != nil {
		t.Fatalf("Intersection failed: %v", err)
	}
	min, max = i.BoundingBox()
	checkBox(t, min, max, [3]float64{1, 0, 0}, [3]float64{2, 2, 2})
	if got := Unwrap(i).Volume(); math.Abs(got-4) > 1e-6 {
		t.Errorf("intersection volume = %f, want 4", got)
	}

	d, err := k.Difference(a, b)
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	min, max = d.BoundingBox()
	checkBox(t, min, max, [3]float64{0, 0, 0}, [3]float64{1, 2, 2})
	if got := Unwrap(d).Volume(); math.Abs(got-4) > 1e-6 {
		t.Errorf("difference volume = %f, want 4", got)
	}

	// Operands are left untouched.
	if got := Unwrap(a).FaceCount(); got != 12 {
		t.Errorf("operand face count after booleans = %d, want 12", got)
	}
}

func TestDrilledBox(t *testing.T) {
	k := Default()
	box := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	cyl := k.Translate(k.Cylinder(120, 20, 16), 50, 50, 50)
	diff, err := k.Difference(box, cyl)
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
	hole := Unwrap(cyl).Volume() * 100 / 120
	want := 1e6 - hole
	if got := Unwrap(diff).Volume(); math.Abs(got-want) > 1e-3 {
		t.Errorf("volume = %f, want %f", got, want)
	}
}

func TestBooleanError(t *testing.T) {
	opts := csg.DefaultOptions()
	opts.MaxSplitFactor = 1
	k := New(opts)
	a := k.Box(2, 2, 2)
	b := k.Translate(k.Box(2, 2, 2), 1, 1, 1)
	_, err := k.Union(a, b)
	if !errors.Is(err, csg.ErrSplitLimit) {
		t.Fatalf("Union error = %v, want ErrSplitLimit", err)
	}
}

// --- Transforms ---

func TestTranslate(t *testing.T) {
	k := Default()
	box := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)
	min, max := translated.BoundingBox()
	checkBox(t, min, max, [3]float64{100, 200, 300}, [3]float64{110, 210, 310})
}

func TestRotate(t *testing.T) {
	k := Default()
	box := k.Box(10, 20, 30)
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()
	checkBox(t, min, max, [3]float64{-20, 0, 0}, [3]float64{0, 10, 30})
}

func TestEmptyBoundingBox(t *testing.T) {
	min, max := Wrap(csg.NewSolid("empty")).BoundingBox()
	if min != [3]float64{} || max != [3]float64{} {
		t.Errorf("BoundingBox() = %v %v, want zero", min, max)
	}
}

func TestToMeshNames(t *testing.T) {
	k := Default()
	u, err := k.Union(k.Box(1, 1, 1), k.Translate(k.Box(1, 1, 1), 0.5, 0, 0))
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.PartName != Unwrap(u).Name {
		t.Errorf("PartName = %q, want %q", mesh.PartName, Unwrap(u).Name)
	}
}
