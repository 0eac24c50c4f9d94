package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-data/stratigen/internal/raster"
)

func maskCentroid(m *raster.Mask) (cy, cx float64, n int) {
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.At(y, x) {
				cy += float64(y)
				cx += float64(x)
				n++
			}
		}
	}
	if n > 0 {
		cy /= float64(n)
		cx /= float64(n)
	}
	return cy, cx, n
}

func TestBarchan_InterduneFractionOnTarget(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleBarchan)
	cfg.Height = 256
	cfg.Width = 256
	cfg.Seed = 1
	cfg.Aeolian.InterduneFraction = 0.3

	r, err := Generate(cfg)
	require.NoError(t, err)

	// The corridor cut is a quantile of a continuous field, so the areal
	// fraction tracks the target closely.
	assert.InDelta(t, 0.3, r.Masks["interdune"].Fraction(), 0.05)
}

func TestBarchan_SlipfaceLiesDownwind(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleBarchan)
	cfg.Height = 256
	cfg.Width = 256
	cfg.Seed = 1
	cfg.Aeolian.ThetaDeg = 45

	r, err := Generate(cfg)
	require.NoError(t, err)

	crestY, crestX, nCrest := maskCentroid(r.Masks["crest"])
	slipY, slipX, nSlip := maskCentroid(r.Masks["slipface"])
	require.Positive(t, nCrest)
	require.Positive(t, nSlip)

	theta := 45 * math.Pi / 180
	downwind := (slipY-crestY)*math.Sin(theta) + (slipX-crestX)*math.Cos(theta)
	assert.Positive(t, downwind, "slipface centroid must sit downwind of the crest")
}

func TestTransverse_SpacingBoundToHeight(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleTransverseDune)
	cfg.Height = 256
	cfg.Width = 256
	r, err := Generate(cfg)
	require.NoError(t, err)

	ratio, ok := r.Meta["spacing_height_ratio"].(float64)
	require.True(t, ok)
	assert.InDelta(t, cfg.Aeolian.SpacingRatioK, ratio, 1e-9)
	assert.InDelta(t, cfg.Aeolian.SpacingRatioK*cfg.Aeolian.HeightPx, r.Meta["crest_spacing_px"].(float64), 1e-9)
}

func TestLinearDune_RidgesMoreContinuous(t *testing.T) {
	t.Parallel()

	base := DefaultConfig(StyleBarchan)
	base.Height = 256
	base.Width = 256
	base.Aeolian.DefectRate = 0.5

	barchan, err := Generate(base)
	require.NoError(t, err)

	linCfg := base
	linCfg.Style = StyleLinearDune
	linear, err := Generate(linCfg)
	require.NoError(t, err)

	bc := barchan.Meta["continuity_index"].(float64)
	lc := linear.Meta["continuity_index"].(float64)
	assert.Greater(t, lc, 0.0)
	assert.LessOrEqual(t, lc, 1.0)
	// Linear dunes damp the defect rate, so more crest survives.
	assert.Greater(t, lc, bc)
}

func TestDunes_MasksTileTheGrid(t *testing.T) {
	t.Parallel()

	for _, style := range []Style{StyleBarchan, StyleLinearDune, StyleTransverseDune} {
		t.Run(style.String(), func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig(style)
			cfg.Height = 160
			cfg.Width = 192
			r, err := Generate(cfg)
			require.NoError(t, err)

			interdune := r.Masks["interdune"]
			stoss := r.Masks["stoss"]
			crest := r.Masks["crest"]
			slip := r.Masks["slipface"]
			for i := range interdune.Bits {
				if !(interdune.Bits[i] || stoss.Bits[i] || crest.Bits[i] || slip.Bits[i]) {
					t.Fatalf("cell %d belongs to no dune facies", i)
				}
			}
		})
	}
}
