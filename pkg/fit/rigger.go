package fit

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshfit/pkg/geom"
)

// RiggerFitCalculator produces unnormalized bone/joint weights. Rows are
// accumulated joint influence, not a partition of unity, so they are
// consumed downstream as raw deform weights.
type RiggerFitCalculator struct {
	FitCalculator
}

// NewRiggerFitCalculator creates the rig-weight calculator variant. Pass the
// morpher's calculator as parent to share its session geometry cache.
func NewRiggerFitCalculator(charGeom *geom.Geometry, parent *FitCalculator, opts ...Option) (*RiggerFitCalculator, error) {
	base, err := newCalculator(charGeom, append([]Option{WithParent(parent)}, opts...))
	if err != nil {
		return nil, err
	}
	r := &RiggerFitCalculator{FitCalculator: *base}
	r.variant = r
	return r, nil
}

// computeWeights seeds from nearest vertices, adds the reverse coverage
// pass so every original character vertex maps onto the new topology, sums
// in the reverse surface projection, and assembles without pruning or
// normalization.
func (r *RiggerFitCalculator) computeWeights(rec *Record) (*SparseWeights, error) {
	t := newPassTimer(r.log)
	cg, err := r.variant.charGeometry(rec)
	if err != nil {
		return nil, err
	}
	verts := rec.Geom.Verts()
	acc := NewAccumulator(len(verts))
	if err := weightsFromNearestVertices(acc, cg, verts, r.params.RigEpsilon, r.params.SeedCount); err != nil {
		return nil, err
	}
	t.mark("nearest-vertex seeding")
	if err := weightsFromNearestVerticesReverse(acc, cg, rec.Geom, r.params); err != nil {
		return nil, err
	}
	t.mark("reverse coverage")
	if len(rec.Geom.Faces()) > 0 {
		if err := weightsFromSurfaceProjectionReverse(acc, cg, rec.Geom, r.params, (*Accumulator).Add); err != nil {
			return nil, err
		}
		t.mark("reverse projection")
	}
	w := acc.Assemble(false)
	t.mark("assembly")
	return w, nil
}

// WeightsForJoints computes rig weights for a bare joint position array.
func (r *RiggerFitCalculator) WeightsForJoints(joints []r3.Vec) (*SparseWeights, error) {
	g, err := geom.New(joints, nil)
	if err != nil {
		return nil, err
	}
	return r.computeWeights(&Record{Geom: g})
}
