package fit

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshfit/pkg/geom"
)

// triangleChar builds the minimal character: 3 verts, 1 face.
func triangleChar(t *testing.T) *geom.Geometry {
	t.Helper()
	g, err := geom.New(
		[]r3.Vec{{}, {X: 1}, {Y: 1}},
		[][]int{{0, 1, 2}},
	)
	if err != nil {
		t.Fatalf("building character: %v", err)
	}
	return g
}

// planeChar builds an n×n quad grid character in the XY plane.
func planeChar(t *testing.T, n int) *geom.Geometry {
	t.Helper()
	verts := make([]r3.Vec, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			verts = append(verts, r3.Vec{X: float64(x), Y: float64(y)})
		}
	}
	var faces [][]int
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			a := y*n + x
			faces = append(faces, []int{a, a + 1, a + n + 1, a + n})
		}
	}
	g, err := geom.New(verts, faces)
	if err != nil {
		t.Fatalf("building character: %v", err)
	}
	return g
}

func newCalc(t *testing.T, char *geom.Geometry) *FitCalculator {
	t.Helper()
	c, err := NewFitCalculator(char)
	if err != nil {
		t.Fatalf("NewFitCalculator() error: %v", err)
	}
	return c
}

func TestNilCharacterGeometry(t *testing.T) {
	_, err := NewFitCalculator(nil)
	if err == nil {
		t.Fatal("expected error for nil character geometry")
	}
	var ferr *FitError
	if !errors.As(err, &ferr) {
		t.Errorf("expected FitError, got %T: %v", err, err)
	}
}

func TestNilAssetGeometry(t *testing.T) {
	calc := newCalc(t, triangleChar(t))
	_, err := calc.GetWeights(&Asset{Name: "broken"})
	if err == nil {
		t.Fatal("expected error for nil asset geometry")
	}
	var ferr *FitError
	if !errors.As(err, &ferr) {
		t.Errorf("expected FitError, got %T: %v", err, err)
	}
}

func TestCentroidWeights(t *testing.T) {
	calc := newCalc(t, triangleChar(t))

	centroid := r3.Vec{X: 1. / 3, Y: 1. / 3}
	w, err := calc.WeightsForPoints([]r3.Vec{centroid})
	if err != nil {
		t.Fatalf("WeightsForPoints() error: %v", err)
	}

	idx, weights := w.Row(0)
	if len(idx) != 3 {
		t.Fatalf("row has %d entries, want 3 (%v)", len(idx), idx)
	}
	for k, v := range weights {
		if math.Abs(v-1./3) > 1e-6 {
			t.Errorf("weight for vertex %d = %v, want 1/3", idx[k], v)
		}
	}
}

func TestOneHotAtFaceVertex(t *testing.T) {
	calc := newCalc(t, triangleChar(t))

	w, err := calc.WeightsForPoints([]r3.Vec{{X: 1}}) // exactly vertex 1
	if err != nil {
		t.Fatalf("WeightsForPoints() error: %v", err)
	}

	idx, weights := w.Row(0)
	if len(idx) != 1 {
		t.Fatalf("row has %d entries, want one-hot (%v %v)", len(idx), idx, weights)
	}
	if idx[0] != 1 {
		t.Errorf("one-hot vertex = %d, want 1", idx[0])
	}
	if math.Abs(weights[0]-1) > 1e-6 {
		t.Errorf("one-hot weight = %v, want 1", weights[0])
	}
}

func TestSeedOnlyRowFarFromSurface(t *testing.T) {
	char := planeChar(t, 4) // 16 vertices
	calc := newCalc(t, char)

	// Far beyond the 0.1 search radius of any face.
	w, err := calc.WeightsForPoints([]r3.Vec{{X: 1.5, Y: 1.5, Z: 5}})
	if err != nil {
		t.Fatalf("WeightsForPoints() error: %v", err)
	}

	idx, weights := w.Row(0)
	if len(idx) == 0 {
		t.Fatal("expected a nonempty seed-only row")
	}
	sum := floats.Sum(weights)
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("row sum = %v, want 1", sum)
	}
	for k, v := range weights {
		if v < 0 {
			t.Errorf("negative weight %v for vertex %d", v, idx[k])
		}
	}
}

func TestGetWeightsNormalizedRows(t *testing.T) {
	char := planeChar(t, 4)
	calc := newCalc(t, char)

	// Small asset triangle hovering just above the plane interior.
	asset, err := geom.New(
		[]r3.Vec{
			{X: 1.2, Y: 1.2, Z: 0.05},
			{X: 1.8, Y: 1.2, Z: 0.05},
			{X: 1.2, Y: 1.8, Z: 0.05},
		},
		[][]int{{0, 1, 2}},
	)
	if err != nil {
		t.Fatalf("building asset: %v", err)
	}

	w, err := calc.GetWeights(&Asset{Name: "patch", Geom: asset})
	if err != nil {
		t.Fatalf("GetWeights() error: %v", err)
	}
	if w.Rows() != 3 {
		t.Fatalf("Rows() = %d, want 3", w.Rows())
	}
	for i := 0; i < w.Rows(); i++ {
		idx, weights := w.Row(i)
		if len(idx) == 0 {
			t.Fatalf("row %d is empty", i)
		}
		if sum := floats.Sum(weights); math.Abs(sum-1) > 1e-6 {
			t.Errorf("row %d sum = %v, want 1", i, sum)
		}
	}
}

func TestSessionCacheReusesGeometry(t *testing.T) {
	calc := newCalc(t, planeChar(t, 4))
	key := NewMeshKey()

	assetVerts := []r3.Vec{
		{X: 1.2, Y: 1.2, Z: 0.05},
		{X: 1.8, Y: 1.2, Z: 0.05},
		{X: 1.2, Y: 1.8, Z: 0.05},
	}
	faces := [][]int{{0, 1, 2}}

	first, err := geom.New(assetVerts, faces)
	if err != nil {
		t.Fatalf("building asset: %v", err)
	}
	second, err := geom.New(assetVerts, faces)
	if err != nil {
		t.Fatalf("building asset: %v", err)
	}

	rec1, err := calc.FitAsset(&Asset{Name: "a", Key: key, Geom: first})
	if err != nil {
		t.Fatalf("FitAsset() error: %v", err)
	}
	rec2, err := calc.FitAsset(&Asset{Name: "a", Key: key, Geom: second})
	if err != nil {
		t.Fatalf("FitAsset() error: %v", err)
	}

	if rec1.Geom != rec2.Geom {
		t.Error("expected the session cache to reuse the first geometry for the same key")
	}
	if rec1.Geom != first {
		t.Error("expected the cached geometry to be the first one supplied")
	}
}

func TestTransferVertexGroups(t *testing.T) {
	char := planeChar(t, 4)
	calc := newCalc(t, char)

	w, err := calc.WeightsForPoints([]r3.Vec{
		{X: 0.5, Y: 0.5, Z: 0.01},
		{X: 1.5, Y: 1.5, Z: 0.01},
	})
	if err != nil {
		t.Fatalf("WeightsForPoints() error: %v", err)
	}

	// A group covering the whole character with weight 1 transfers to
	// weight 1 through normalized rows.
	full := VertexGroup{Name: "all"}
	for i := 0; i < char.VertexCount(); i++ {
		full.Index = append(full.Index, i)
		full.Weight = append(full.Weight, 1)
	}
	// A group with support far from both query points transfers to nothing.
	far := VertexGroup{Name: "corner", Index: []int{15}, Weight: []float64{1}}

	out := calc.TransferVertexGroups(w, []VertexGroup{full, far}, TransferMerge)

	if out.Mode != TransferMerge {
		t.Errorf("Mode = %v, want TransferMerge", out.Mode)
	}
	if len(out.Groups) != 1 {
		t.Fatalf("transferred %d groups, want 1 (far group should be dropped)", len(out.Groups))
	}
	g := out.Groups[0]
	if g.Name != "all" {
		t.Errorf("group name = %q, want %q", g.Name, "all")
	}
	if len(g.Index) != 2 {
		t.Fatalf("group entries = %d, want 2", len(g.Index))
	}
	for k, v := range g.Weight {
		if math.Abs(v-1) > 1e-6 {
			t.Errorf("transferred weight %d = %v, want 1", k, v)
		}
	}
}
