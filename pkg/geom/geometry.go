// Package geom provides mesh geometry containers with lazily built
// spatial acceleration structures for nearest-vertex and nearest-surface
// queries.
package geom

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeometryError describes malformed mesh topology.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "geometry: " + e.Reason
}

func geometryErrorf(format string, args ...any) error {
	return &GeometryError{Reason: fmt.Sprintf(format, args...)}
}

// Geometry holds a vertex/face mesh and memoizes derived spatial indices.
// Derived state is built on first use and kept for the lifetime of the
// handle; it is never invalidated automatically when the vertex buffer is
// mutated. Call Invalidate after mutating verts in place.
type Geometry struct {
	verts []r3.Vec
	faces [][]int

	// subset restricts enumeration and vertex indexing to the listed
	// vertex ids, in their declared order. nil means the full mesh.
	subset []int

	vindex *VertexIndex
	sindex *SurfaceIndex
	bounds *Bounds
}

// New creates a Geometry from a vertex buffer and polygon faces.
// Face indices must reference existing vertices.
func New(verts []r3.Vec, faces [][]int) (*Geometry, error) {
	if err := checkFaces(verts, faces); err != nil {
		return nil, err
	}
	return &Geometry{verts: verts, faces: faces}, nil
}

// NewSubset creates a restricted Geometry sharing the same buffers but
// enumerating only subsetVerts (in their declared order) and indexing only
// the faces listed in subsetFaces.
func NewSubset(verts []r3.Vec, faces [][]int, subsetFaces, subsetVerts []int) (*Geometry, error) {
	if err := checkFaces(verts, faces); err != nil {
		return nil, err
	}
	sub := make([][]int, len(subsetFaces))
	for i, fi := range subsetFaces {
		if fi < 0 || fi >= len(faces) {
			return nil, geometryErrorf("subset face %d out of range (%d faces)", fi, len(faces))
		}
		sub[i] = faces[fi]
	}
	for _, vi := range subsetVerts {
		if vi < 0 || vi >= len(verts) {
			return nil, geometryErrorf("subset vertex %d out of range (%d verts)", vi, len(verts))
		}
	}
	return &Geometry{verts: verts, faces: sub, subset: subsetVerts}, nil
}

func checkFaces(verts []r3.Vec, faces [][]int) error {
	for fi, face := range faces {
		for _, vi := range face {
			if vi < 0 || vi >= len(verts) {
				return geometryErrorf("face %d references vertex %d, mesh has %d", fi, vi, len(verts))
			}
		}
	}
	return nil
}

// Copy returns a new handle sharing the underlying vertex and face buffers.
// Memoized indices are not carried over.
func (g *Geometry) Copy() *Geometry {
	return &Geometry{verts: g.verts, faces: g.faces, subset: g.subset}
}

// MorphedCopy returns a copy with a deep-copied vertex buffer and the given
// morphs applied in order. The receiver's buffers are left untouched.
func (g *Geometry) MorphedCopy(morphs ...Morph) (*Geometry, error) {
	result := g.Copy()
	var verts []r3.Vec
	if err := deepcopy.Copy(&verts, g.verts); err != nil {
		return nil, fmt.Errorf("copying vertex buffer: %w", err)
	}
	for _, m := range morphs {
		m.Apply(verts)
	}
	result.verts = verts
	return result, nil
}

// Verts returns the shared vertex buffer.
func (g *Geometry) Verts() []r3.Vec { return g.verts }

// Faces returns the indexed polygon faces.
func (g *Geometry) Faces() [][]int { return g.faces }

// VertexCount returns the number of enumerated vertices.
func (g *Geometry) VertexCount() int {
	if g.subset != nil {
		return len(g.subset)
	}
	return len(g.verts)
}

// EachVertex calls fn for every enumerated vertex in deterministic order:
// subset declaration order for restricted geometry, vertex id order otherwise.
func (g *Geometry) EachVertex(fn func(id int, pos r3.Vec)) {
	if g.subset != nil {
		for _, id := range g.subset {
			fn(id, g.verts[id])
		}
		return
	}
	for id, v := range g.verts {
		fn(id, v)
	}
}

// VertexIndex returns the memoized nearest-vertex index, building it on
// first use.
func (g *Geometry) VertexIndex() (*VertexIndex, error) {
	if g.vindex != nil {
		return g.vindex, nil
	}
	if g.VertexCount() == 0 {
		return nil, geometryErrorf("vertex index requested for empty mesh")
	}
	g.vindex = newVertexIndex(g)
	return g.vindex, nil
}

// SurfaceIndex returns the memoized nearest-surface index, building it on
// first use.
func (g *Geometry) SurfaceIndex() (*SurfaceIndex, error) {
	if g.sindex != nil {
		return g.sindex, nil
	}
	if len(g.verts) == 0 {
		return nil, geometryErrorf("surface index requested for empty mesh")
	}
	idx, err := newSurfaceIndex(g)
	if err != nil {
		return nil, err
	}
	g.sindex = idx
	return g.sindex, nil
}

// BoundingBox returns the memoized axis-aligned bounding box of the full
// vertex buffer.
func (g *Geometry) BoundingBox() (Bounds, error) {
	if g.bounds != nil {
		return *g.bounds, nil
	}
	if len(g.verts) == 0 {
		return Bounds{}, geometryErrorf("bounding box requested for empty mesh")
	}
	b := boundsOf(g.verts)
	g.bounds = &b
	return b, nil
}

// Invalidate drops all memoized derived state so the next query rebuilds it.
func (g *Geometry) Invalidate() {
	g.vindex = nil
	g.sindex = nil
	g.bounds = nil
}
