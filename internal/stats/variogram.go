package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/strata-data/stratigen/internal/raster"
)

// DefaultMaxLag bounds the variogram lag distance in pixels. Beyond this
// the pair counts thin out and the log-log fit degrades.
const DefaultMaxLag = 24

// twoSegmentMargin is the fractional residual improvement a two-segment
// fit must deliver over the single power law before it is accepted.
const twoSegmentMargin = 0.10

// direction is a unit lag step. Opposite steps bin identical pairs, so
// four directions cover the plane.
type direction struct {
	name   string
	dy, dx int
}

var variogramDirections = []direction{
	{"dir_0", 0, 1},
	{"dir_45", 1, 1},
	{"dir_90", 1, 0},
	{"dir_135", 1, -1},
}

// DirectionalVariogram holds the binned semivariance along one direction
// and the fitted power-law description of it.
type DirectionalVariogram struct {
	Direction string
	Lags      []float64
	Gamma     []float64
	Beta      float64 // log-log slope of the accepted fit
	Residual  float64 // mean squared log-residual of the accepted fit

	// Two-segment fit, populated when it beats the single power law by
	// the residual margin.
	TwoSegment bool
	BreakLag   float64
	BetaBelow  float64
	BetaAbove  float64
}

// directionalVariogram bins mean squared intensity differences by lag
// along (dy, dx). Lags that fit no pair are reported as zero.
func directionalVariogram(g *raster.Grid, dy, dx, maxLag int) (lags, gamma []float64) {
	lags = make([]float64, 0, maxLag)
	gamma = make([]float64, 0, maxLag)
	for lag := 1; lag <= maxLag; lag++ {
		oy, ox := dy*lag, dx*lag
		var sum float64
		var n int
		y0, y1 := 0, g.H-1
		if oy > 0 {
			y1 = g.H - 1 - oy
		} else if oy < 0 {
			y0 = -oy
		}
		x0, x1 := 0, g.W-1
		if ox > 0 {
			x1 = g.W - 1 - ox
		} else if ox < 0 {
			x0 = -ox
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				d := g.At(y, x) - g.At(y+oy, x+ox)
				sum += d * d
				n++
			}
		}
		lags = append(lags, float64(lag))
		if n > 0 {
			gamma = append(gamma, sum/(2*float64(n)))
		} else {
			gamma = append(gamma, 0)
		}
	}
	return lags, gamma
}

// fitPowerLaw regresses log(gamma) on log(lag) over bins with positive
// semivariance. Fewer than two usable bins means a degenerate (constant)
// field; the slope is then zero by definition rather than an error.
func fitPowerLaw(lags, gamma []float64) (beta, residual float64) {
	var lx, ly []float64
	for i := range lags {
		if gamma[i] > 0 {
			lx = append(lx, math.Log(lags[i]))
			ly = append(ly, math.Log(gamma[i]))
		}
	}
	if len(lx) < 2 {
		return 0, 0
	}
	alpha, slope := stat.LinearRegression(lx, ly, nil, false)
	var ss float64
	for i := range lx {
		r := ly[i] - (alpha + slope*lx[i])
		ss += r * r
	}
	return slope, ss / float64(len(lx))
}

// fitVariogram produces the accepted fit for one direction: a single
// power law, upgraded to a two-segment (breakpoint) model when splitting
// at the midpoint lag improves the combined residual by at least
// twoSegmentMargin.
func fitVariogram(name string, lags, gamma []float64) DirectionalVariogram {
	dv := DirectionalVariogram{Direction: name, Lags: lags, Gamma: gamma}
	dv.Beta, dv.Residual = fitPowerLaw(lags, gamma)

	mid := len(lags) / 2
	if mid < 2 || len(lags)-mid < 2 {
		return dv
	}
	betaLo, resLo := fitPowerLaw(lags[:mid], gamma[:mid])
	betaHi, resHi := fitPowerLaw(lags[mid:], gamma[mid:])
	combined := (resLo*float64(mid) + resHi*float64(len(lags)-mid)) / float64(len(lags))
	if dv.Residual > 0 && combined < dv.Residual*(1-twoSegmentMargin) {
		dv.TwoSegment = true
		dv.BreakLag = lags[mid]
		dv.BetaBelow = betaLo
		dv.BetaAbove = betaHi
	}
	return dv
}

// Variograms computes the four directional variograms of a grid up to
// maxLag (DefaultMaxLag when maxLag <= 0).
func Variograms(g *raster.Grid, maxLag int) []DirectionalVariogram {
	if maxLag <= 0 {
		maxLag = DefaultMaxLag
	}
	out := make([]DirectionalVariogram, 0, len(variogramDirections))
	for _, d := range variogramDirections {
		lags, gamma := directionalVariogram(g, d.dy, d.dx, maxLag)
		out = append(out, fitVariogram(d.name, lags, gamma))
	}
	return out
}

// isotropySummary collapses directional slopes into the isotropic slope
// and an anisotropy ratio. The ratio is 1 plus the slope spread relative
// to the mean magnitude, so a constant grid (all slopes zero) reports
// exactly 1.0.
func isotropySummary(vs []DirectionalVariogram) (betaIso, ratio float64) {
	if len(vs) == 0 {
		return 0, 1
	}
	minB, maxB := vs[0].Beta, vs[0].Beta
	var sum float64
	for _, v := range vs {
		sum += v.Beta
		minB = math.Min(minB, v.Beta)
		maxB = math.Max(maxB, v.Beta)
	}
	betaIso = sum / float64(len(vs))
	ratio = 1 + (maxB-minB)/(math.Abs(betaIso)+1e-9)
	if betaIso == 0 && maxB == minB {
		ratio = 1
	}
	return betaIso, ratio
}

// FractalDimension maps the isotropic variogram slope onto a surface
// fractal dimension through D = 3 - beta/2, clamped to the meaningful
// [2, 3] band.
func FractalDimension(betaIso float64) float64 {
	d := 3 - betaIso/2
	if d < 2 {
		return 2
	}
	if d > 3 {
		return 3
	}
	return d
}

// ShannonEntropy bins intensities into nBins over [0, 1] and reports the
// entropy of the histogram in bits. A constant grid lands in one bin and
// yields zero.
func ShannonEntropy(g *raster.Grid, nBins int) float64 {
	if nBins <= 0 {
		nBins = 64
	}
	hist := make([]float64, nBins)
	for _, v := range g.Data {
		b := int(v * float64(nBins))
		if b < 0 {
			b = 0
		}
		if b >= nBins {
			b = nBins - 1
		}
		hist[b]++
	}
	total := float64(len(g.Data))
	var h float64
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}
