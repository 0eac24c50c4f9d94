package raster

import "math"

// DistanceToMask returns the exact Euclidean distance in pixels from each
// cell to the nearest set cell of the mask. Cells inside the mask have
// distance zero. If the mask is empty every cell gets +Inf scaled down to
// the grid diagonal so downstream normalization stays finite.
//
// Uses the two-pass separable squared-distance transform of Felzenszwalb
// and Huttenlocher.
func DistanceToMask(m *Mask) *Grid {
	h, w := m.H, m.W
	out := MustGrid(h, w)
	inf := float64(h*h + w*w + 1)

	// Column pass: squared distance to nearest set cell in the same column.
	for x := 0; x < w; x++ {
		d := inf
		for y := 0; y < h; y++ {
			if m.At(y, x) {
				d = 0
			} else if d < inf {
				d++
			}
			out.Set(y, x, d*d)
		}
		d = inf
		for y := h - 1; y >= 0; y-- {
			if m.At(y, x) {
				d = 0
			} else if d < inf {
				d++
			}
			if v := d * d; v < out.At(y, x) {
				out.Set(y, x, v)
			}
		}
	}

	// Row pass: 1-D squared distance transform of the column distances.
	f := make([]float64, w)
	dt := make([]float64, w)
	v := make([]int, w)
	z := make([]float64, w+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f[x] = out.At(y, x)
		}
		edt1d(f, dt, v, z)
		for x := 0; x < w; x++ {
			out.Set(y, x, math.Sqrt(dt[x]))
		}
	}
	return out
}

// edt1d computes the lower envelope of parabolas rooted at (i, f[i]),
// writing squared distances into dt.
func edt1d(f, dt []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		var s float64
		for {
			p := v[k]
			s = ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / (2*float64(q) - 2*float64(p))
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}
	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		d := float64(q) - float64(v[k])
		dt[q] = d*d + f[v[k]]
	}
}

// SignedDistance returns the signed Euclidean distance transform:
// positive outside the mask, negative inside.
func SignedDistance(m *Mask) *Grid {
	outside := DistanceToMask(m)
	inside := DistanceToMask(m.Complement())
	out := MustGrid(m.H, m.W)
	for i := range out.Data {
		if m.Bits[i] {
			out.Data[i] = -inside.Data[i]
		} else {
			out.Data[i] = outside.Data[i]
		}
	}
	return out
}

// Dilate returns the mask grown by radius pixels (chebyshev metric),
// equivalent to a square max filter of size 2*radius+1.
func Dilate(m *Mask, radius int) *Mask {
	if radius <= 0 {
		return m.Clone()
	}
	out := MustMask(m.H, m.W)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(y, x) {
				continue
			}
			y0, y1 := max(0, y-radius), min(m.H-1, y+radius)
			x0, x1 := max(0, x-radius), min(m.W-1, x+radius)
			for yy := y0; yy <= y1; yy++ {
				for xx := x0; xx <= x1; xx++ {
					out.Set(yy, xx, true)
				}
			}
		}
	}
	return out
}

// Erode returns the mask shrunk by one pixel (8-neighbourhood).
func Erode(m *Mask) *Mask {
	out := MustMask(m.H, m.W)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(y, x) {
				continue
			}
			keep := true
			for dy := -1; dy <= 1 && keep; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= m.H || nx < 0 || nx >= m.W || !m.At(ny, nx) {
						keep = false
						break
					}
				}
			}
			out.Set(y, x, keep)
		}
	}
	return out
}

// Boundary returns the one-pixel outline of the mask (set cells with at
// least one unset 8-neighbour or on the raster edge).
func Boundary(m *Mask) *Mask {
	eroded := Erode(m)
	out := m.Clone()
	out.Subtract(eroded)
	return out
}

// GaussianBlur returns the grid convolved with a separable Gaussian of the
// given sigma. Sigma <= 0 returns a copy.
func GaussianBlur(g *Grid, sigma float64) *Grid {
	if sigma <= 0 {
		return g.Clone()
	}
	kernel := gaussianKernel(sigma)
	tmp := MustGrid(g.H, g.W)
	out := MustGrid(g.H, g.W)
	r := len(kernel) / 2
	// Horizontal pass.
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var sum, wsum float64
			for k := -r; k <= r; k++ {
				xx := x + k
				if xx < 0 || xx >= g.W {
					continue
				}
				wk := kernel[k+r]
				sum += wk * g.At(y, xx)
				wsum += wk
			}
			tmp.Set(y, x, sum/wsum)
		}
	}
	// Vertical pass.
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var sum, wsum float64
			for k := -r; k <= r; k++ {
				yy := y + k
				if yy < 0 || yy >= g.H {
					continue
				}
				wk := kernel[k+r]
				sum += wk * tmp.At(yy, x)
				wsum += wk
			}
			out.Set(y, x, sum/wsum)
		}
	}
	return out
}

// GaussianBlur1D smooths a 1-D series in place-compatible fashion and
// returns the result.
func GaussianBlur1D(series []float64, sigma float64) []float64 {
	out := make([]float64, len(series))
	if sigma <= 0 {
		copy(out, series)
		return out
	}
	kernel := gaussianKernel(sigma)
	r := len(kernel) / 2
	for i := range series {
		var sum, wsum float64
		for k := -r; k <= r; k++ {
			j := i + k
			if j < 0 || j >= len(series) {
				continue
			}
			wk := kernel[k+r]
			sum += wk * series[j]
			wsum += wk
		}
		out[i] = sum / wsum
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	r := int(math.Ceil(3 * sigma))
	if r < 1 {
		r = 1
	}
	kernel := make([]float64, 2*r+1)
	inv := 1.0 / (2 * sigma * sigma)
	for k := -r; k <= r; k++ {
		kernel[k+r] = math.Exp(-float64(k*k) * inv)
	}
	return kernel
}

// SobelMagnitude returns the gradient magnitude of the grid using 3×3
// Sobel kernels with edge clamping.
func SobelMagnitude(g *Grid) *Grid {
	out := MustGrid(g.H, g.W)
	at := func(y, x int) float64 {
		if y < 0 {
			y = 0
		} else if y >= g.H {
			y = g.H - 1
		}
		if x < 0 {
			x = 0
		} else if x >= g.W {
			x = g.W - 1
		}
		return g.At(y, x)
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			gx := -at(y-1, x-1) + at(y-1, x+1) - 2*at(y, x-1) + 2*at(y, x+1) - at(y+1, x-1) + at(y+1, x+1)
			gy := -at(y-1, x-1) - 2*at(y-1, x) - at(y-1, x+1) + at(y+1, x-1) + 2*at(y+1, x) + at(y+1, x+1)
			out.Set(y, x, math.Hypot(gx, gy))
		}
	}
	return out
}
