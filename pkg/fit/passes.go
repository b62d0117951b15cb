package fit

import (
	"math"

	"github.com/Faultbox/meshfit/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Params are the numeric tunables of the weight passes. The defaults are
// load-bearing; override them only for meshes at unusual world scales.
type Params struct {
	// SearchRadius bounds surface-projection queries, in world units.
	SearchRadius float64
	// Epsilon floors the distance denominator of the generic passes.
	Epsilon float64
	// ReverseEpsilon is the tighter floor of the reverse projection pass,
	// kept low to avoid long-tail artifacts.
	ReverseEpsilon float64
	// RigEpsilon floors distances in the rig passes.
	RigEpsilon float64
	// SeedCount is the number of nearest vertices seeded per query point.
	SeedCount int
	// RigSeedCount is the neighbor count of the rig coverage pass.
	RigSeedCount int
	// Cutoff drops near-zero entries from transferred vertex groups.
	Cutoff float64
}

// DefaultParams returns the standard fitting parameters.
func DefaultParams() Params {
	return Params{
		SearchRadius:   0.1,
		Epsilon:        1e-30,
		ReverseEpsilon: 1e-15,
		RigEpsilon:     1e-5,
		SeedCount:      16,
		RigSeedCount:   4,
		Cutoff:         1e-4,
	}
}

// weightsFromNearestVertices seeds every query row from the n nearest
// character vertices. Distance is irrelevant to whether a row gets entries,
// so every query point ends up with a usable row even far off the surface.
func weightsFromNearestVertices(acc *Accumulator, charGeom *geom.Geometry, queries []r3.Vec, eps float64, n int) error {
	index, err := charGeom.VertexIndex()
	if err != nil {
		return err
	}
	for i, q := range queries {
		hits := index.NearestN(q, n)
		maxdist := 0.0
		for _, h := range hits {
			maxdist = math.Max(maxdist, h.Dist)
		}
		if maxdist == 0 {
			// All neighbors coincide with the query point.
			maxdist = 1
		}
		for _, h := range hits {
			w := (1 - h.Dist/maxdist) / math.Max(h.Dist, eps)
			acc.Max(i, h.ID, w)
		}
	}
	return nil
}

// weightsFromSurfaceProjection projects each query point onto the nearest
// character face within the search radius and merges the barycentric corner
// weights with max, so true surface contact overrides nearest-vertex seeds.
func weightsFromSurfaceProjection(acc *Accumulator, charGeom *geom.Geometry, queries []r3.Vec, p Params) error {
	index, err := charGeom.SurfaceIndex()
	if err != nil {
		return err
	}
	for i, q := range queries {
		hit, ok := index.Nearest(q, p.SearchRadius)
		if !ok {
			continue
		}
		scale := (1 - hit.Dist/p.SearchRadius) / math.Max(hit.Dist, p.Epsilon)
		for j, vi := range hit.Vertex {
			acc.Max(i, vi, hit.Bary[j]*scale)
		}
	}
	return nil
}

// weightsFromSurfaceProjectionReverse projects character vertices onto the
// nearest asset face and accumulates into the corresponding asset rows.
// The reduction is max for generic fitting and sum for rig weights.
func weightsFromSurfaceProjectionReverse(acc *Accumulator, charGeom, assetGeom *geom.Geometry, p Params, reduce reduceFunc) error {
	index, err := assetGeom.SurfaceIndex()
	if err != nil {
		return err
	}
	charGeom.EachVertex(func(id int, pos r3.Vec) {
		hit, ok := index.Nearest(pos, p.SearchRadius)
		if !ok {
			return
		}
		scale := (1 - hit.Dist/p.SearchRadius) / math.Max(hit.Dist, p.ReverseEpsilon)
		for j, vi := range hit.Vertex {
			reduce(acc, vi, id, hit.Bary[j]*scale)
		}
	})
	return nil
}

// weightsFromNearestVerticesReverse maps every character vertex onto its
// nearest asset vertices with inverse-square-distance weight. This is the
// rig coverage guarantee: a character vertex that influences no rig vertex
// would not deform with the rig at all.
func weightsFromNearestVerticesReverse(acc *Accumulator, charGeom, assetGeom *geom.Geometry, p Params) error {
	index, err := assetGeom.VertexIndex()
	if err != nil {
		return err
	}
	charGeom.EachVertex(func(id int, pos r3.Vec) {
		for _, h := range index.NearestN(pos, p.RigSeedCount) {
			acc.Add(h.ID, id, 1/math.Max(h.Dist*h.Dist, p.RigEpsilon))
		}
	})
	return nil
}
