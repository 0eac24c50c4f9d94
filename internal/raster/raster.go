// Package raster provides the grid and mask primitives shared by the
// synthesis builders and the statistics engine. Grids hold float64
// intensities in row-major order; masks are boolean rasters registered to
// the same shape. All helpers are pure and allocate their results, so
// callers can run realizations concurrently without sharing state.
package raster

import (
	"fmt"
	"math"
	"sort"
)

// Grid is a dense two-dimensional intensity field. Data is row-major:
// the value at (y, x) lives at Data[y*W+x].
type Grid struct {
	H, W int
	Data []float64
}

// NewGrid allocates an H×W grid filled with zeros.
func NewGrid(h, w int) (*Grid, error) {
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", h, w)
	}
	return &Grid{H: h, W: w, Data: make([]float64, h*w)}, nil
}

// MustGrid is NewGrid for dimensions already validated by the caller.
func MustGrid(h, w int) *Grid {
	g, err := NewGrid(h, w)
	if err != nil {
		panic(err)
	}
	return g
}

// At returns the value at (y, x). Bounds are the caller's responsibility.
func (g *Grid) At(y, x int) float64 { return g.Data[y*g.W+x] }

// Set stores v at (y, x).
func (g *Grid) Set(y, x int, v float64) { g.Data[y*g.W+x] = v }

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{H: g.H, W: g.W, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// Fill sets every cell to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// AddScaled accumulates scale*other into g cellwise.
func (g *Grid) AddScaled(other *Grid, scale float64) {
	for i, v := range other.Data {
		g.Data[i] += scale * v
	}
}

// Clamp limits every cell to [lo, hi].
func (g *Grid) Clamp(lo, hi float64) {
	for i, v := range g.Data {
		if v < lo {
			g.Data[i] = lo
		} else if v > hi {
			g.Data[i] = hi
		}
	}
}

// MinMax returns the extreme values of the grid.
func (g *Grid) MinMax() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range g.Data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Mean returns the arithmetic mean of all cells.
func (g *Grid) Mean() float64 {
	if len(g.Data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range g.Data {
		sum += v
	}
	return sum / float64(len(g.Data))
}

// Variance returns the population variance of all cells.
func (g *Grid) Variance() float64 {
	if len(g.Data) == 0 {
		return 0
	}
	mean := g.Mean()
	var sum float64
	for _, v := range g.Data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(g.Data))
}

// Normalize rescales the grid to [0, 1] in place. A near-constant grid
// (range below eps) is zeroed so degenerate fields stay well defined.
func (g *Grid) Normalize() {
	const eps = 1e-6
	min, max := g.MinMax()
	if max-min <= eps {
		g.Fill(0)
		return
	}
	inv := 1.0 / (max - min)
	for i, v := range g.Data {
		g.Data[i] = (v - min) * inv
	}
}

// Threshold returns the mask of cells with value >= t.
func (g *Grid) Threshold(t float64) *Mask {
	m := MustMask(g.H, g.W)
	for i, v := range g.Data {
		m.Bits[i] = v >= t
	}
	return m
}

// Quantile returns the q-th quantile (0..1) of the cell values using a
// counting approach over a sorted copy.
func (g *Grid) Quantile(q float64) float64 {
	if len(g.Data) == 0 {
		return 0
	}
	sorted := make([]float64, len(g.Data))
	copy(sorted, g.Data)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := q * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Mask is a boolean raster registered to the same shape as its grid.
type Mask struct {
	H, W int
	Bits []bool
}

// NewMask allocates an empty H×W mask.
func NewMask(h, w int) (*Mask, error) {
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("mask dimensions must be positive, got %dx%d", h, w)
	}
	return &Mask{H: h, W: w, Bits: make([]bool, h*w)}, nil
}

// MustMask is NewMask for dimensions already validated by the caller.
func MustMask(h, w int) *Mask {
	m, err := NewMask(h, w)
	if err != nil {
		panic(err)
	}
	return m
}

// At reports whether (y, x) is set.
func (m *Mask) At(y, x int) bool { return m.Bits[y*m.W+x] }

// Set flags (y, x).
func (m *Mask) Set(y, x int, v bool) { m.Bits[y*m.W+x] = v }

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := &Mask{H: m.H, W: m.W, Bits: make([]bool, len(m.Bits))}
	copy(out.Bits, m.Bits)
	return out
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Fraction returns the areal fraction of set cells.
func (m *Mask) Fraction() float64 {
	if len(m.Bits) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.Bits))
}

// Empty reports whether no cell is set.
func (m *Mask) Empty() bool { return m.Count() == 0 }

// Union sets m to m ∪ other in place.
func (m *Mask) Union(other *Mask) {
	for i, b := range other.Bits {
		if b {
			m.Bits[i] = true
		}
	}
}

// Subtract clears every cell of m that is set in other.
func (m *Mask) Subtract(other *Mask) {
	for i, b := range other.Bits {
		if b {
			m.Bits[i] = false
		}
	}
}

// Complement returns the inverted mask.
func (m *Mask) Complement() *Mask {
	out := MustMask(m.H, m.W)
	for i, b := range m.Bits {
		out.Bits[i] = !b
	}
	return out
}

// Float returns a grid with 1.0 on set cells and 0.0 elsewhere.
func (m *Mask) Float() *Grid {
	g := MustGrid(m.H, m.W)
	for i, b := range m.Bits {
		if b {
			g.Data[i] = 1
		}
	}
	return g
}

// Coords01 returns normalized coordinate grids: yy varies 0..1 down rows,
// xx varies 0..1 across columns.
func Coords01(h, w int) (yy, xx *Grid, err error) {
	yy, err = NewGrid(h, w)
	if err != nil {
		return nil, nil, err
	}
	xx = MustGrid(h, w)
	for y := 0; y < h; y++ {
		fy := 0.0
		if h > 1 {
			fy = float64(y) / float64(h-1)
		}
		for x := 0; x < w; x++ {
			fx := 0.0
			if w > 1 {
				fx = float64(x) / float64(w-1)
			}
			yy.Set(y, x, fy)
			xx.Set(y, x, fx)
		}
	}
	return yy, xx, nil
}

// BlendGrids returns the weighted cellwise blend of same-shaped grids,
// clipped to [0, 1]. Nil weights means equal weighting.
func BlendGrids(grids []*Grid, weights []float64) (*Grid, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("at least one grid must be provided")
	}
	if weights != nil && len(weights) != len(grids) {
		return nil, fmt.Errorf("weights length %d does not match grids length %d", len(weights), len(grids))
	}
	h, w := grids[0].H, grids[0].W
	var total float64
	for i, g := range grids {
		if g.H != h || g.W != w {
			return nil, fmt.Errorf("grid %d shape %dx%d does not match %dx%d", i, g.H, g.W, h, w)
		}
		if weights == nil {
			total++
		} else {
			total += weights[i]
		}
	}
	out := MustGrid(h, w)
	for i, g := range grids {
		wgt := 1.0
		if weights != nil {
			wgt = weights[i]
		}
		out.AddScaled(g, wgt)
	}
	if total != 0 {
		for i := range out.Data {
			out.Data[i] /= total
		}
	}
	out.Clamp(0, 1)
	return out, nil
}
