package geom

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// VertexIndex answers N-nearest-vertex queries over a Geometry's enumerated
// vertices. Distances are squared inside the tree (cheaper pruning) and
// reported in world units.
type VertexIndex struct {
	tree *kdtree.Tree
}

// vertexPoint is a mesh vertex as a kd-tree Comparable.
type vertexPoint struct {
	pos r3.Vec
	id  int
}

func (p vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(vertexPoint)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	default:
		return p.pos.Z - q.pos.Z
	}
}

func (p vertexPoint) Dims() int { return 3 }

func (p vertexPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(vertexPoint)
	return r3.Norm2(r3.Sub(p.pos, q.pos))
}

type vertexPoints []vertexPoint

func (p vertexPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p vertexPoints) Len() int                      { return len(p) }
func (p vertexPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p vertexPoints) Pivot(d kdtree.Dim) int {
	return vertexPlane{vertexPoints: p, Dim: d}.Pivot()
}

// vertexPlane sorts vertexPoints along a dimension for tree construction.
type vertexPlane struct {
	vertexPoints
	kdtree.Dim
}

func (p vertexPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.vertexPoints[i].pos.X < p.vertexPoints[j].pos.X
	case 1:
		return p.vertexPoints[i].pos.Y < p.vertexPoints[j].pos.Y
	default:
		return p.vertexPoints[i].pos.Z < p.vertexPoints[j].pos.Z
	}
}

func (p vertexPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p vertexPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertexPoints = p.vertexPoints[start:end]
	return p
}

func (p vertexPlane) Swap(i, j int) {
	p.vertexPoints[i], p.vertexPoints[j] = p.vertexPoints[j], p.vertexPoints[i]
}

func newVertexIndex(g *Geometry) *VertexIndex {
	points := make(vertexPoints, 0, g.VertexCount())
	g.EachVertex(func(id int, pos r3.Vec) {
		points = append(points, vertexPoint{pos: pos, id: id})
	})
	return &VertexIndex{tree: kdtree.New(points, false)}
}

// NewVertexIndex builds a standalone index over a raw point set, with ids
// equal to slice positions.
func NewVertexIndex(verts []r3.Vec) *VertexIndex {
	points := make(vertexPoints, len(verts))
	for i, v := range verts {
		points[i] = vertexPoint{pos: v, id: i}
	}
	return &VertexIndex{tree: kdtree.New(points, false)}
}

// VertexHit is one result of a nearest-vertex query.
type VertexHit struct {
	ID   int
	Dist float64
}

// NearestN returns up to n nearest vertices to p, closest first.
func (x *VertexIndex) NearestN(p r3.Vec, n int) []VertexHit {
	if n <= 0 {
		return nil
	}
	keep := kdtree.NewNKeeper(n)
	x.tree.NearestSet(keep, vertexPoint{pos: p})
	hits := make([]VertexHit, 0, n)
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		hits = append(hits, VertexHit{
			ID:   c.Comparable.(vertexPoint).id,
			Dist: math.Sqrt(c.Dist),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Dist < hits[j].Dist })
	return hits
}

// Nearest returns the single nearest vertex to p.
func (x *VertexIndex) Nearest(p r3.Vec) VertexHit {
	c, dist := x.tree.Nearest(vertexPoint{pos: p})
	return VertexHit{ID: c.(vertexPoint).id, Dist: math.Sqrt(dist)}
}
