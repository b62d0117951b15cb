package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// SurfaceIndex answers bounded closest-point-on-surface queries. Polygon
// faces are fan-triangulated; the kd-tree is keyed on triangle centroids and
// candidate triangles are refined with exact point-triangle distance. The
// centroid search radius is padded by the largest triangle radius in the
// mesh, so a bounded query cannot miss the true nearest triangle.
type SurfaceIndex struct {
	tree      *kdtree.Tree
	tris      []surfaceTriangle
	maxRadius float64
}

// surfaceTriangle is one triangle of a fan-triangulated face.
type surfaceTriangle struct {
	centroid r3.Vec
	corners  [3]r3.Vec
	vertex   [3]int
	face     int
}

func (t surfaceTriangle) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(surfaceTriangle)
	switch d {
	case 0:
		return t.centroid.X - q.centroid.X
	case 1:
		return t.centroid.Y - q.centroid.Y
	default:
		return t.centroid.Z - q.centroid.Z
	}
}

func (t surfaceTriangle) Dims() int { return 3 }

func (t surfaceTriangle) Distance(c kdtree.Comparable) float64 {
	q := c.(surfaceTriangle)
	return r3.Norm2(r3.Sub(t.centroid, q.centroid))
}

type surfaceTriangles []surfaceTriangle

func (p surfaceTriangles) Index(i int) kdtree.Comparable { return p[i] }
func (p surfaceTriangles) Len() int                      { return len(p) }
func (p surfaceTriangles) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p surfaceTriangles) Pivot(d kdtree.Dim) int {
	return trianglePlane{surfaceTriangles: p, Dim: d}.Pivot()
}

type trianglePlane struct {
	surfaceTriangles
	kdtree.Dim
}

func (p trianglePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.surfaceTriangles[i].centroid.X < p.surfaceTriangles[j].centroid.X
	case 1:
		return p.surfaceTriangles[i].centroid.Y < p.surfaceTriangles[j].centroid.Y
	default:
		return p.surfaceTriangles[i].centroid.Z < p.surfaceTriangles[j].centroid.Z
	}
}

func (p trianglePlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p trianglePlane) Slice(start, end int) kdtree.SortSlicer {
	p.surfaceTriangles = p.surfaceTriangles[start:end]
	return p
}

func (p trianglePlane) Swap(i, j int) {
	p.surfaceTriangles[i], p.surfaceTriangles[j] = p.surfaceTriangles[j], p.surfaceTriangles[i]
}

const degenerateArea = 1e-12

func newSurfaceIndex(g *Geometry) (*SurfaceIndex, error) {
	var tris surfaceTriangles
	maxRadius := 0.0
	for fi, face := range g.faces {
		if len(face) < 3 {
			return nil, geometryErrorf("face %d has %d vertices, need at least 3", fi, len(face))
		}
		for k := 1; k+1 < len(face); k++ {
			tri := surfaceTriangle{
				corners: [3]r3.Vec{g.verts[face[0]], g.verts[face[k]], g.verts[face[k+1]]},
				vertex:  [3]int{face[0], face[k], face[k+1]},
				face:    fi,
			}
			ab := r3.Sub(tri.corners[1], tri.corners[0])
			ac := r3.Sub(tri.corners[2], tri.corners[0])
			if r3.Norm(r3.Cross(ab, ac)) < degenerateArea {
				continue
			}
			tri.centroid = r3.Scale(1./3., r3.Add(r3.Add(tri.corners[0], tri.corners[1]), tri.corners[2]))
			for _, c := range tri.corners {
				maxRadius = math.Max(maxRadius, r3.Norm(r3.Sub(c, tri.centroid)))
			}
			tris = append(tris, tri)
		}
	}
	if len(tris) == 0 {
		return nil, geometryErrorf("mesh has no usable faces for a surface index")
	}
	return &SurfaceIndex{
		tree:      kdtree.New(tris, false),
		tris:      tris,
		maxRadius: maxRadius,
	}, nil
}

// SurfaceHit is the closest surface point found within a query radius.
type SurfaceHit struct {
	Point  r3.Vec     // closest point on the surface
	Face   int        // source polygon face id
	Vertex [3]int     // corner vertex ids of the hit triangle
	Bary   [3]float64 // barycentric weights of Point on the hit triangle
	Dist   float64    // distance from the query point
}

// Nearest returns the closest point on the surface within radius of p.
// The second return is false when no face comes that close.
func (x *SurfaceIndex) Nearest(p r3.Vec, radius float64) (SurfaceHit, bool) {
	bound := radius + x.maxRadius
	keep := kdtree.NewDistKeeper(bound * bound)
	x.tree.NearestSet(keep, surfaceTriangle{centroid: p})

	best := SurfaceHit{Dist: math.Inf(1)}
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		tri := c.Comparable.(surfaceTriangle)
		point, bary := closestPointTriangle(p, tri.corners[0], tri.corners[1], tri.corners[2])
		dist := r3.Norm(r3.Sub(p, point))
		if dist < best.Dist {
			best = SurfaceHit{
				Point:  point,
				Face:   tri.face,
				Vertex: tri.vertex,
				Bary:   bary,
				Dist:   dist,
			}
		}
	}
	if best.Dist > radius {
		return SurfaceHit{}, false
	}
	return best, true
}
