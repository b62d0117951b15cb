package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNearestNOrderedAndComplete(t *testing.T) {
	verts, faces := quadPlane(4)
	g, err := New(verts, faces)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	index, err := g.VertexIndex()
	if err != nil {
		t.Fatalf("VertexIndex() error: %v", err)
	}

	hits := index.NearestN(r3.Vec{X: 0.1, Y: 0.1}, 4)
	if len(hits) != 4 {
		t.Fatalf("NearestN returned %d hits, want 4", len(hits))
	}
	if hits[0].ID != 0 {
		t.Errorf("nearest vertex = %d, want 0", hits[0].ID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Dist < hits[i-1].Dist {
			t.Errorf("hits not sorted by distance: %v", hits)
		}
	}
}

func TestNearestNFewerThanRequested(t *testing.T) {
	g, err := New([]r3.Vec{{}, {X: 1}}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	index, err := g.VertexIndex()
	if err != nil {
		t.Fatalf("VertexIndex() error: %v", err)
	}
	hits := index.NearestN(r3.Vec{}, 16)
	if len(hits) != 2 {
		t.Errorf("NearestN returned %d hits, want 2", len(hits))
	}
}

func TestVertexIndexRespectsSubset(t *testing.T) {
	verts, faces := quadPlane(3)
	sub, err := NewSubset(verts, faces, nil, []int{8, 7})
	if err != nil {
		t.Fatalf("NewSubset() error: %v", err)
	}
	index, err := sub.VertexIndex()
	if err != nil {
		t.Fatalf("VertexIndex() error: %v", err)
	}
	// Vertex 0 is the true nearest but is outside the subset; vertex 7 at
	// (1,2) is the nearest indexed one.
	hit := index.Nearest(r3.Vec{})
	if hit.ID != 7 {
		t.Errorf("Nearest() = %d, want 7", hit.ID)
	}
}

func TestSurfaceNearestOnTriangle(t *testing.T) {
	verts := []r3.Vec{{}, {X: 1}, {Y: 1}}
	g, err := New(verts, [][]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	index, err := g.SurfaceIndex()
	if err != nil {
		t.Fatalf("SurfaceIndex() error: %v", err)
	}

	q := r3.Vec{X: 0.25, Y: 0.25, Z: 0.05}
	hit, ok := index.Nearest(q, 0.1)
	if !ok {
		t.Fatal("expected a surface hit within radius")
	}
	if math.Abs(hit.Dist-0.05) > 1e-9 {
		t.Errorf("Dist = %v, want 0.05", hit.Dist)
	}
	want := r3.Vec{X: 0.25, Y: 0.25}
	if r3.Norm(r3.Sub(hit.Point, want)) > 1e-9 {
		t.Errorf("Point = %v, want %v", hit.Point, want)
	}
	sum := hit.Bary[0] + hit.Bary[1] + hit.Bary[2]
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("barycentric sum = %v, want 1", sum)
	}
	// Reconstruct the hit point from the barycentric weights.
	rec := r3.Add(r3.Scale(hit.Bary[0], verts[hit.Vertex[0]]),
		r3.Add(r3.Scale(hit.Bary[1], verts[hit.Vertex[1]]),
			r3.Scale(hit.Bary[2], verts[hit.Vertex[2]])))
	if r3.Norm(r3.Sub(rec, hit.Point)) > 1e-9 {
		t.Errorf("barycentric reconstruction %v != hit point %v", rec, hit.Point)
	}
}

func TestSurfaceNearestBeyondRadius(t *testing.T) {
	verts := []r3.Vec{{}, {X: 1}, {Y: 1}}
	g, err := New(verts, [][]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	index, err := g.SurfaceIndex()
	if err != nil {
		t.Fatalf("SurfaceIndex() error: %v", err)
	}
	if _, ok := index.Nearest(r3.Vec{X: 0.25, Y: 0.25, Z: 1}, 0.1); ok {
		t.Error("expected no hit beyond the search radius")
	}
}

func TestSurfaceNearestEdgeClamp(t *testing.T) {
	verts := []r3.Vec{{}, {X: 1}, {Y: 1}}
	g, err := New(verts, [][]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	index, err := g.SurfaceIndex()
	if err != nil {
		t.Fatalf("SurfaceIndex() error: %v", err)
	}
	// Outside the triangle, past the X axis edge.
	hit, ok := index.Nearest(r3.Vec{X: 0.5, Y: -0.05}, 0.1)
	if !ok {
		t.Fatal("expected a surface hit within radius")
	}
	want := r3.Vec{X: 0.5}
	if r3.Norm(r3.Sub(hit.Point, want)) > 1e-9 {
		t.Errorf("Point = %v, want clamp to edge point %v", hit.Point, want)
	}
}

func TestSurfaceIndexQuadFaces(t *testing.T) {
	verts, faces := quadPlane(3)
	g, err := New(verts, faces)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	index, err := g.SurfaceIndex()
	if err != nil {
		t.Fatalf("SurfaceIndex() error: %v", err)
	}
	// Interior of the second quad (face 1 spans x in [1,2], y in [0,1]).
	hit, ok := index.Nearest(r3.Vec{X: 1.5, Y: 0.5, Z: 0.01}, 0.1)
	if !ok {
		t.Fatal("expected a surface hit within radius")
	}
	if hit.Face != 1 {
		t.Errorf("Face = %d, want 1", hit.Face)
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	a := r3.Vec{}
	b := r3.Vec{X: 1}
	c := r3.Vec{X: 2} // collinear
	if _, _, _, ok := Barycentric(r3.Vec{X: 1}, a, b, c); ok {
		t.Error("expected ok=false for a degenerate triangle")
	}
}

func TestBarycentricInterior(t *testing.T) {
	a := r3.Vec{}
	b := r3.Vec{X: 1}
	c := r3.Vec{Y: 1}
	wa, wb, wc, ok := Barycentric(r3.Vec{X: 1. / 3, Y: 1. / 3}, a, b, c)
	if !ok {
		t.Fatal("expected ok=true")
	}
	for i, w := range []float64{wa, wb, wc} {
		if math.Abs(w-1./3) > 1e-9 {
			t.Errorf("weight %d = %v, want 1/3", i, w)
		}
	}
}
