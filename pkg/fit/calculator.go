package fit

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshfit/pkg/geom"
)

// Asset is one secondary mesh (clothing, hair, accessory or rig) to be fit
// onto the character. Key is a caller-supplied stable mesh identity token
// used for session geometry caching; leave it empty to bypass the cache.
type Asset struct {
	Name      string
	Key       string
	Geom      *geom.Geometry
	MorphName string // optional corrective morph reference
}

// Record is the per-asset fit record: the asset handle, its resolved
// corrective morph, the session-cached geometry and the computed weights.
// Records live for one fitting session only.
type Record struct {
	Asset   *Asset
	Morph   geom.Morph
	Geom    *geom.Geometry
	Weights *SparseWeights
}

// variant is the hook set that distinguishes the calculator kinds: which
// character geometry a fit sees, how its weights are composed, and what
// extra data lands on the record.
type variant interface {
	charGeometry(rec *Record) (*geom.Geometry, error)
	computeWeights(rec *Record) (*SparseWeights, error)
	annotate(rec *Record) error
}

// FitCalculator computes normalized fitting weights mapping asset vertices
// onto the character mesh.
//
// Geometries are cached for the session by the caller-supplied identity key.
// Mutating or renaming a mesh without discarding its cache entry is
// undefined behavior; there is no invalidation hook.
type FitCalculator struct {
	geom    *geom.Geometry
	cache   map[string]*geom.Geometry
	params  Params
	log     *zap.Logger
	variant variant
	tmp     []float64
}

// Option configures a calculator.
type Option func(c *FitCalculator)

// WithLogger sets the logger used for pass timing. Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *FitCalculator) { c.log = log }
}

// WithParams overrides the default fitting parameters.
func WithParams(p Params) Option {
	return func(c *FitCalculator) { c.params = p }
}

// WithParent shares the parent's session geometry cache, so fitting the same
// asset through several calculators builds its spatial indices once.
func WithParent(parent *FitCalculator) Option {
	return func(c *FitCalculator) {
		if parent != nil {
			c.cache = parent.cache
		}
	}
}

func newCalculator(charGeom *geom.Geometry, opts []Option) (*FitCalculator, error) {
	if charGeom == nil {
		return nil, fitErrorf("no usable character geometry")
	}
	c := &FitCalculator{
		geom:   charGeom,
		cache:  make(map[string]*geom.Geometry),
		params: DefaultParams(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFitCalculator creates a generic asset-fitting calculator over the given
// character geometry. Returns a FitError when charGeom is nil.
func NewFitCalculator(charGeom *geom.Geometry, opts ...Option) (*FitCalculator, error) {
	c, err := newCalculator(charGeom, opts)
	if err != nil {
		return nil, err
	}
	c.variant = c
	return c, nil
}

// NewMeshKey returns a fresh opaque mesh identity token.
func NewMeshKey() string {
	return uuid.NewString()
}

// CharGeometry returns the character geometry the calculator fits against.
func (c *FitCalculator) CharGeometry() *geom.Geometry { return c.geom }

// assetGeometry resolves an asset's geometry through the session cache. The
// first geometry seen for a key wins, so its memoized indices are reused.
func (c *FitCalculator) assetGeometry(a *Asset) (*geom.Geometry, error) {
	if a == nil || a.Geom == nil {
		return nil, fitErrorf("no usable asset geometry")
	}
	if a.Key == "" {
		return a.Geom, nil
	}
	if g, ok := c.cache[a.Key]; ok {
		return g, nil
	}
	c.cache[a.Key] = a.Geom
	return a.Geom, nil
}

// FitAsset computes the full fit record for one asset.
func (c *FitCalculator) FitAsset(a *Asset) (*Record, error) {
	rec := &Record{Asset: a}
	if err := c.variant.annotate(rec); err != nil {
		return nil, err
	}
	g, err := c.assetGeometry(a)
	if err != nil {
		return nil, err
	}
	rec.Geom = g
	w, err := c.variant.computeWeights(rec)
	if err != nil {
		return nil, err
	}
	rec.Weights = w
	return rec, nil
}

// GetWeights computes the sparse weight matrix for one asset.
func (c *FitCalculator) GetWeights(a *Asset) (*SparseWeights, error) {
	rec, err := c.FitAsset(a)
	if err != nil {
		return nil, err
	}
	return rec.Weights, nil
}

// WeightsForPoints computes normalized weights for a bare point array (hair
// roots, particle anchors). Only the seeding and direct projection passes
// run; there is no asset surface to project back from.
func (c *FitCalculator) WeightsForPoints(points []r3.Vec) (*SparseWeights, error) {
	return c.calcWeights(points, nil)
}

// charGeometry is the default hook: every asset fits against the shared
// character geometry.
func (c *FitCalculator) charGeometry(*Record) (*geom.Geometry, error) {
	return c.geom, nil
}

// annotate is the default hook: nothing to resolve.
func (c *FitCalculator) annotate(*Record) error { return nil }

// computeWeights is the default hook: two-sided passes, pruned, normalized.
func (c *FitCalculator) computeWeights(rec *Record) (*SparseWeights, error) {
	return c.calcWeights(rec.Geom.Verts(), rec)
}

// calcWeights runs the generic pass pipeline in its fixed order: seeding
// guarantees non-empty rows, direct projection overrides seeds with true
// surface locality, reverse projection fills coverage holes on coarse asset
// meshes.
func (c *FitCalculator) calcWeights(queries []r3.Vec, rec *Record) (*SparseWeights, error) {
	t := newPassTimer(c.log)
	cg, err := c.variant.charGeometry(rec)
	if err != nil {
		return nil, err
	}
	acc := NewAccumulator(len(queries))
	if err := weightsFromNearestVertices(acc, cg, queries, c.params.Epsilon, c.params.SeedCount); err != nil {
		return nil, err
	}
	t.mark("nearest-vertex seeding")
	if err := weightsFromSurfaceProjection(acc, cg, queries, c.params); err != nil {
		return nil, err
	}
	t.mark("direct projection")
	if rec != nil && rec.Geom != nil && len(rec.Geom.Faces()) > 0 {
		if err := weightsFromSurfaceProjectionReverse(acc, cg, rec.Geom, c.params, (*Accumulator).Max); err != nil {
			return nil, err
		}
		t.mark("reverse projection")
	}
	w := acc.Assemble(true)
	w.Normalize()
	t.mark("assembly")
	return w, nil
}

// passTimer logs per-pass durations at debug level.
type passTimer struct {
	log  *zap.Logger
	last time.Time
}

func newPassTimer(log *zap.Logger) *passTimer {
	return &passTimer{log: log, last: time.Now()}
}

func (t *passTimer) mark(name string) {
	now := time.Now()
	t.log.Debug("fit pass", zap.String("pass", name), zap.Duration("took", now.Sub(t.last)))
	t.last = now
}
