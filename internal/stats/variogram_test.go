package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-data/stratigen/internal/raster"
)

func noisyGrid(h, w int, seed uint64) *raster.Grid {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	g := raster.MustGrid(h, w)
	for i := range g.Data {
		g.Data[i] = rng.Float64()
	}
	return g
}

// Opposite lag steps pair the same cells, so the semivariance must be
// identical either way.
func TestDirectionalVariogram_OppositeStepsMatch(t *testing.T) {
	t.Parallel()

	g := noisyGrid(48, 64, 11)
	for _, d := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}} {
		_, fwd := directionalVariogram(g, d[0], d[1], 12)
		_, rev := directionalVariogram(g, -d[0], -d[1], 12)
		for i := range fwd {
			assert.InDelta(t, fwd[i], rev[i], 1e-12)
		}
	}
}

func TestVariograms_ConstantGrid(t *testing.T) {
	t.Parallel()

	g := raster.MustGrid(32, 32)
	g.Fill(0.7)
	vs := Variograms(g, 0)
	require.Len(t, vs, 4)
	for _, v := range vs {
		assert.Equal(t, 0.0, v.Beta)
		for _, gm := range v.Gamma {
			assert.Equal(t, 0.0, gm)
		}
	}
	betaIso, ratio := isotropySummary(vs)
	assert.Equal(t, 0.0, betaIso)
	assert.Equal(t, 1.0, ratio)
}

func TestFitPowerLaw_RecoversExponent(t *testing.T) {
	t.Parallel()

	lags := make([]float64, 20)
	gamma := make([]float64, 20)
	for i := range lags {
		lags[i] = float64(i + 1)
		gamma[i] = 0.3 * math.Pow(lags[i], 1.7)
	}
	beta, residual := fitPowerLaw(lags, gamma)
	assert.InDelta(t, 1.7, beta, 1e-9)
	assert.InDelta(t, 0, residual, 1e-12)
}

func TestFitPowerLaw_DegenerateBins(t *testing.T) {
	t.Parallel()

	beta, residual := fitPowerLaw([]float64{1, 2, 3}, []float64{0, 0, 0.5})
	assert.Equal(t, 0.0, beta)
	assert.Equal(t, 0.0, residual)
}

func TestFitVariogram_TwoSegmentBreak(t *testing.T) {
	t.Parallel()

	// Exact power laws on both sides of the midpoint: the split fit has
	// zero residual, so it must beat the single fit.
	lags := make([]float64, 24)
	gamma := make([]float64, 24)
	for i := range lags {
		lags[i] = float64(i + 1)
		if i < 12 {
			gamma[i] = math.Pow(lags[i], 0.5)
		} else {
			gamma[i] = math.Pow(lags[i], 3) / 1000
		}
	}
	dv := fitVariogram("dir_0", lags, gamma)
	require.True(t, dv.TwoSegment, "piecewise power law must trigger the segmented fit")
	assert.Equal(t, 13.0, dv.BreakLag)
	assert.InDelta(t, 0.5, dv.BetaBelow, 1e-9)
	assert.InDelta(t, 3.0, dv.BetaAbove, 1e-9)
}

func TestVariograms_LinearRamp(t *testing.T) {
	t.Parallel()

	// v = x/w gives gamma proportional to lag squared along dir_0 and a
	// flat zero variogram along dir_90.
	g := raster.MustGrid(48, 64)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.Set(y, x, float64(x)/float64(g.W))
		}
	}
	vs := Variograms(g, 12)
	byName := map[string]DirectionalVariogram{}
	for _, v := range vs {
		byName[v.Direction] = v
	}
	assert.InDelta(t, 2.0, byName["dir_0"].Beta, 1e-6)
	assert.Equal(t, 0.0, byName["dir_90"].Beta)

	betaIso, ratio := isotropySummary(vs)
	assert.Greater(t, betaIso, 0.0)
	assert.Greater(t, ratio, 1.0)
}

func TestFractalDimension_Clamped(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.5, FractalDimension(1))
	assert.Equal(t, 2.0, FractalDimension(2))
	assert.Equal(t, 2.0, FractalDimension(5))
	assert.Equal(t, 3.0, FractalDimension(0))
	assert.Equal(t, 3.0, FractalDimension(-2))
}

func TestShannonEntropy(t *testing.T) {
	t.Parallel()

	t.Run("constant grid has zero entropy", func(t *testing.T) {
		t.Parallel()
		g := raster.MustGrid(16, 16)
		g.Fill(0.5)
		assert.Equal(t, 0.0, ShannonEntropy(g, 64))
	})

	t.Run("two equal bins give one bit", func(t *testing.T) {
		t.Parallel()
		g := raster.MustGrid(2, 16)
		for x := 0; x < 16; x++ {
			g.Set(0, x, 0.1)
			g.Set(1, x, 0.9)
		}
		assert.InDelta(t, 1.0, ShannonEntropy(g, 64), 1e-12)
	})

	t.Run("uniform 64 levels give six bits", func(t *testing.T) {
		t.Parallel()
		g := raster.MustGrid(64, 64)
		for i := range g.Data {
			g.Data[i] = (float64(i%64) + 0.5) / 64
		}
		assert.InDelta(t, 6.0, ShannonEntropy(g, 64), 1e-12)
	})
}
