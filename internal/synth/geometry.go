package synth

import (
	"math"

	"github.com/strata-data/stratigen/internal/raster"
)

// linspace returns n evenly spaced values from a to b inclusive.
func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	return out
}

// interp evaluates piecewise-linear interpolation of (xs, ys) at x,
// clamping outside the domain. xs must be ascending.
func interp(x float64, xs, ys []float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			t := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}

// sampleCurve interpolates control points (ctrlX ascending) onto every
// integer column 0..w-1.
func sampleCurve(ctrlX, ctrlY []float64, w int) []float64 {
	out := make([]float64, w)
	for x := 0; x < w; x++ {
		out[x] = interp(float64(x), ctrlX, ctrlY)
	}
	return out
}

// clampF limits v to [lo, hi].
func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// centerlineField rasterizes a per-column centerline into a 0/1 field of
// cells within half the (per-column) width of the line.
func centerlineField(center []float64, h, w int, widthPx []float64) *raster.Grid {
	g := raster.MustGrid(h, w)
	for x := 0; x < w; x++ {
		if widthPx[x] <= 0 {
			continue
		}
		half := widthPx[x] / 2
		lo := int(math.Ceil(center[x] - half))
		hi := int(math.Floor(center[x] + half))
		if lo < 0 {
			lo = 0
		}
		if hi >= h {
			hi = h - 1
		}
		for y := lo; y <= hi; y++ {
			g.Set(y, x, 1)
		}
	}
	return g
}

// uniformWidth returns a constant per-column width profile.
func uniformWidth(w int, px float64) []float64 {
	out := make([]float64, w)
	for i := range out {
		out[i] = px
	}
	return out
}

// stampEllipse paints an axis-aligned ellipse of half-axes (ry, rx)
// centered at (row, col) into the field with the given value, keeping the
// cellwise maximum.
func stampEllipse(g *raster.Grid, row, col int, ry, rx, value float64) {
	if ry < 1 {
		ry = 1
	}
	if rx < 1 {
		rx = 1
	}
	y0 := max(0, int(float64(row)-ry))
	y1 := min(g.H-1, int(float64(row)+ry))
	x0 := max(0, int(float64(col)-rx))
	x1 := min(g.W-1, int(float64(col)+rx))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dy := (float64(y) - float64(row)) / ry
			dx := (float64(x) - float64(col)) / rx
			if dy*dy+dx*dx <= 1 {
				if value > g.At(y, x) {
					g.Set(y, x, value)
				}
			}
		}
	}
}

// stampCircle sets all mask cells within radius of (row, col).
func stampCircle(m *raster.Mask, row, col int, radius float64) {
	r := int(math.Ceil(radius))
	y0 := max(0, row-r)
	y1 := min(m.H-1, row+r)
	x0 := max(0, col-r)
	x1 := min(m.W-1, col+r)
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dy := float64(y - row)
			dx := float64(x - col)
			if dy*dy+dx*dx <= r2 {
				m.Set(y, x, true)
			}
		}
	}
}

// pathSinuosity is the centerline path length divided by the straight-line
// distance between its endpoints.
func pathSinuosity(center []float64) float64 {
	if len(center) < 2 {
		return 1
	}
	var pathLen float64
	for i := 1; i < len(center); i++ {
		dy := center[i] - center[i-1]
		pathLen += math.Hypot(1, dy)
	}
	straight := math.Hypot(float64(len(center)-1), center[len(center)-1]-center[0])
	if straight <= 0 {
		return 1
	}
	return pathLen / straight
}

// angleDiff returns the wrapped difference a-b in (-π, π].
func angleDiff(a, b float64) float64 {
	return math.Atan2(math.Sin(a-b), math.Cos(a-b))
}
