// Package fit computes sparse interpolation weights that map an asset mesh
// onto a deforming character mesh with unrelated topology.
package fit

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// pruneDivisor bounds row density: entries below max(row)/pruneDivisor are
// dropped at assembly time.
const pruneDivisor = 32

// Accumulator collects per-row (target vertex, weight) candidates during the
// weight passes. Rows are growable buffers, frozen into compact arrays by
// Assemble.
type Accumulator struct {
	index  [][]int
	weight [][]float64
}

// NewAccumulator creates an accumulator with rows rows.
func NewAccumulator(rows int) *Accumulator {
	return &Accumulator{
		index:  make([][]int, rows),
		weight: make([][]float64, rows),
	}
}

// Rows returns the number of rows.
func (a *Accumulator) Rows() int { return len(a.index) }

func (a *Accumulator) find(row, target int) int {
	for k, id := range a.index[row] {
		if id == target {
			return k
		}
	}
	return -1
}

func (a *Accumulator) put(row, target int, w float64) {
	a.index[row] = append(a.index[row], target)
	a.weight[row] = append(a.weight[row], w)
}

// Max merges w into (row, target) keeping the larger weight.
func (a *Accumulator) Max(row, target int, w float64) {
	if k := a.find(row, target); k >= 0 {
		if w > a.weight[row][k] {
			a.weight[row][k] = w
		}
		return
	}
	a.put(row, target, w)
}

// Set overwrites (row, target) with w.
func (a *Accumulator) Set(row, target int, w float64) {
	if k := a.find(row, target); k >= 0 {
		a.weight[row][k] = w
		return
	}
	a.put(row, target, w)
}

// Add accumulates w into (row, target).
func (a *Accumulator) Add(row, target int, w float64) {
	if k := a.find(row, target); k >= 0 {
		a.weight[row][k] += w
		return
	}
	a.put(row, target, w)
}

// reduceFunc merges a new candidate weight with an existing one.
type reduceFunc func(a *Accumulator, row, target int, w float64)

// Assemble freezes the accumulated rows into a SparseWeights. With cut, any
// entry below max(row)/32 is dropped; the strongest entry of a nonempty row
// always survives.
func (a *Accumulator) Assemble(cut bool) *SparseWeights {
	s := &SparseWeights{Offsets: make([]int, len(a.index))}
	for i, idx := range a.index {
		s.Offsets[i] = len(s.Index)
		thresh := 0.0
		if cut && len(idx) > 0 {
			thresh = floats.Max(a.weight[i]) / pruneDivisor
		}
		for k, id := range idx {
			if w := a.weight[i][k]; w >= thresh {
				s.Index = append(s.Index, id)
				s.Weight = append(s.Weight, w)
			}
		}
	}
	return s
}

// SparseWeights is a ragged row-major sparse matrix: row i holds the
// (target vertex, weight) pairs at Index/Weight[Offsets[i]:Offsets[i+1]].
type SparseWeights struct {
	Offsets []int
	Index   []int
	Weight  []float64
}

// Rows returns the number of rows.
func (s *SparseWeights) Rows() int { return len(s.Offsets) }

func (s *SparseWeights) rowRange(i int) (int, int) {
	end := len(s.Index)
	if i+1 < len(s.Offsets) {
		end = s.Offsets[i+1]
	}
	return s.Offsets[i], end
}

// Row returns the target indices and weights of row i. The slices alias the
// matrix storage.
func (s *SparseWeights) Row(i int) ([]int, []float64) {
	lo, hi := s.rowRange(i)
	return s.Index[lo:hi], s.Weight[lo:hi]
}

// Normalize scales every row to sum to 1. Empty and zero-sum rows are left
// untouched.
func (s *SparseWeights) Normalize() {
	for i := range s.Offsets {
		lo, hi := s.rowRange(i)
		if lo == hi {
			continue
		}
		row := s.Weight[lo:hi]
		if sum := floats.Sum(row); sum > 0 {
			floats.Scale(1/sum, row)
		}
	}
}

// Apply maps a per-target-vertex scalar array through the weights: result
// row i is the weighted sum of values over row i's entries.
func (s *SparseWeights) Apply(values []float64) []float64 {
	result := make([]float64, s.Rows())
	for i := range s.Offsets {
		lo, hi := s.rowRange(i)
		acc := 0.0
		for k := lo; k < hi; k++ {
			acc += values[s.Index[k]] * s.Weight[k]
		}
		result[i] = acc
	}
	return result
}

// ApplyVec is Apply for per-target-vertex positions or vector attributes.
func (s *SparseWeights) ApplyVec(values []r3.Vec) []r3.Vec {
	result := make([]r3.Vec, s.Rows())
	for i := range s.Offsets {
		lo, hi := s.rowRange(i)
		var acc r3.Vec
		for k := lo; k < hi; k++ {
			acc = r3.Add(acc, r3.Scale(s.Weight[k], values[s.Index[k]]))
		}
		result[i] = acc
	}
	return result
}
