package geom

import "gonum.org/v1/gonum/spatial/r3"

// Morph is a deformation applied in place to a vertex buffer. Hosts supply
// morphs as opaque apply functions; the fitting core never inspects them.
type Morph interface {
	Apply(verts []r3.Vec)
}

// DeltaMorph is a sparse morph: per-vertex offsets added to the listed
// vertex ids. Ids outside the buffer are ignored.
type DeltaMorph struct {
	Index []int
	Delta []r3.Vec
}

// Apply adds the morph deltas to verts.
func (m *DeltaMorph) Apply(verts []r3.Vec) {
	for i, id := range m.Index {
		if id < 0 || id >= len(verts) {
			continue
		}
		verts[id] = r3.Add(verts[id], m.Delta[i])
	}
}

// MorphFunc adapts a plain function to the Morph interface.
type MorphFunc func(verts []r3.Vec)

// Apply calls f.
func (f MorphFunc) Apply(verts []r3.Vec) { f(verts) }
