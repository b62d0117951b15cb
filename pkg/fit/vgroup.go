package fit

// VertexGroup is a sparse named per-vertex weight set, the host-side unit of
// skin and deform weights.
type VertexGroup struct {
	Name   string
	Index  []int
	Weight []float64
}

// TransferMode tells the host what to do with transferred groups that clash
// with existing ones. The core passes it through untouched.
type TransferMode int

const (
	// TransferOverwrite replaces existing groups of the same name.
	TransferOverwrite TransferMode = iota
	// TransferMerge merges into existing groups.
	TransferMerge
)

// Transfer is a batch of transferred vertex groups ready for host
// materialization.
type Transfer struct {
	Mode   TransferMode
	Groups []VertexGroup
}

// TransferVertexGroups maps the source vertex groups through a fitting
// weight matrix. Result entries at or below the cutoff are dropped, and
// groups left with no entries are omitted.
func (c *FitCalculator) TransferVertexGroups(weights *SparseWeights, groups []VertexGroup, mode TransferMode) Transfer {
	if c.tmp == nil {
		c.tmp = make([]float64, len(c.geom.Verts()))
	}
	out := Transfer{Mode: mode}
	for _, g := range groups {
		for i := range c.tmp {
			c.tmp[i] = 0
		}
		for k, vi := range g.Index {
			if vi >= 0 && vi < len(c.tmp) {
				c.tmp[vi] = g.Weight[k]
			}
		}
		fitted := weights.Apply(c.tmp)
		var idx []int
		var w []float64
		for i, v := range fitted {
			if v > c.params.Cutoff {
				idx = append(idx, i)
				w = append(w, v)
			}
		}
		if len(idx) == 0 {
			continue
		}
		out.Groups = append(out.Groups, VertexGroup{Name: g.Name, Index: idx, Weight: w})
	}
	return out
}
