package fit

import (
	"github.com/Faultbox/meshfit/pkg/geom"
)

// FitSubset restricts weight computation to a part of the character mesh,
// for performance on large bases. Vertex enumeration follows the subset's
// declared order.
type FitSubset struct {
	Faces []int
	Verts []int
}

// MorpherFitCalculator fits assets against a morphing character. An asset
// may declare a corrective morph: a deformation applied to a copied
// character geometry only to sharpen weight computation, never part of the
// character's visible deformation.
type MorpherFitCalculator struct {
	FitCalculator
	morphs map[string]geom.Morph
}

// NewMorpherFitCalculator creates the character-morphing calculator variant.
// subset may be nil to fit against the full mesh. morphs resolves asset
// corrective-morph references by name.
func NewMorpherFitCalculator(charGeom *geom.Geometry, subset *FitSubset, morphs map[string]geom.Morph, opts ...Option) (*MorpherFitCalculator, error) {
	if charGeom == nil {
		return nil, fitErrorf("no usable character geometry")
	}
	if subset != nil {
		sub, err := geom.NewSubset(charGeom.Verts(), charGeom.Faces(), subset.Faces, subset.Verts)
		if err != nil {
			return nil, err
		}
		charGeom = sub
	}
	base, err := newCalculator(charGeom, opts)
	if err != nil {
		return nil, err
	}
	m := &MorpherFitCalculator{FitCalculator: *base, morphs: morphs}
	m.variant = m
	return m, nil
}

// annotate resolves the asset's corrective morph reference.
func (m *MorpherFitCalculator) annotate(rec *Record) error {
	name := rec.Asset.MorphName
	if name == "" {
		return nil
	}
	morph, ok := m.morphs[name]
	if !ok {
		return configErrorf("asset %q references unknown corrective morph %q", rec.Asset.Name, name)
	}
	rec.Morph = morph
	return nil
}

// charGeometry returns a deep-copied character geometry with the asset's
// corrective morph applied, or the shared base geometry when there is none.
func (m *MorpherFitCalculator) charGeometry(rec *Record) (*geom.Geometry, error) {
	if rec == nil || rec.Morph == nil {
		return m.geom, nil
	}
	return m.geom.MorphedCopy(rec.Morph)
}
