package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-data/stratigen/internal/raster"
	"github.com/strata-data/stratigen/internal/synth"
)

func TestCompute_ConstantGrid(t *testing.T) {
	t.Parallel()

	g := raster.MustGrid(64, 64)
	g.Fill(0.4)
	rec, err := Compute(g, map[string]*raster.Mask{}, "stacked")
	require.NoError(t, err, "degeneracy must never surface as an error")

	assert.True(t, rec.Flags["zero_variance"])
	assert.Equal(t, 0.0, rec.Values["beta_iso"])
	assert.Equal(t, 1.0, rec.Values["anisotropy_ratio"])
	assert.Equal(t, 3.0, rec.Values["fractal_dimension"])
	assert.Equal(t, 0.0, rec.Values["entropy_bits"])
}

func TestCompute_NilGrid(t *testing.T) {
	t.Parallel()

	_, err := Compute(nil, nil, "meandering")
	assert.Error(t, err)
}

func TestCompute_MeanderingRealization(t *testing.T) {
	t.Parallel()

	cfg := synth.DefaultConfig(synth.StyleMeandering)
	cfg.Height = 192
	cfg.Width = 256
	r, err := synth.Generate(cfg)
	require.NoError(t, err)

	rec, err := Compute(r.Grid, r.Masks, "meandering")
	require.NoError(t, err)

	assert.Equal(t, "meandering", rec.Style)
	assert.Len(t, rec.Variograms, 4)
	for _, key := range []string{
		"beta_iso", "anisotropy_ratio", "fractal_dimension", "entropy_bits",
		"beta_dir_0", "beta_dir_45", "beta_dir_90", "beta_dir_135",
		"psd_aspect_ratio", "psd_orientation_deg",
		"area_channel", "components_channel", "area_floodplain",
	} {
		assert.Contains(t, rec.Values, key, key)
	}

	// A textured grid is not degenerate, and the mandatory facies exist.
	assert.False(t, rec.Flags["zero_variance"])
	assert.False(t, rec.Flags["facies_empty_channel"])
	assert.False(t, rec.Flags["facies_empty_floodplain"])
	assert.Greater(t, rec.Values["entropy_bits"], 1.0)
	assert.GreaterOrEqual(t, rec.Values["fractal_dimension"], 2.0)
	assert.LessOrEqual(t, rec.Values["fractal_dimension"], 3.0)
}

// An empty oxbow is an allowed outcome, not a QA failure.
func TestCompute_OptionalFaciesEmpty(t *testing.T) {
	t.Parallel()

	cfg := synth.DefaultConfig(synth.StyleMeandering)
	cfg.Height = 160
	cfg.Width = 192
	cfg.Meander.OxbowProbability = 0
	r, err := synth.Generate(cfg)
	require.NoError(t, err)

	rec, err := Compute(r.Grid, r.Masks, "meandering")
	require.NoError(t, err)
	assert.False(t, rec.Flags["facies_empty_oxbow"])
}

// Unknown style names (stacked composites) skip expectation checks and
// measure whatever masks are present.
func TestCompute_UnknownStyleMeasuresMasks(t *testing.T) {
	t.Parallel()

	g := noisyGrid(64, 64, 3)
	m := raster.MustMask(64, 64)
	fillRect(m, 4, 4, 20, 50)
	rec, err := Compute(g, map[string]*raster.Mask{"channel": m}, "stacked")
	require.NoError(t, err)

	assert.Contains(t, rec.Values, "area_channel")
	for flag := range rec.Flags {
		assert.NotContains(t, flag, "facies_empty", flag)
	}
}

// Topology order must not depend on map iteration when the style carries
// no schema, or repeated runs would emit differently ordered records.
func TestCompute_UnknownStyleTopologyOrderStable(t *testing.T) {
	t.Parallel()

	g := noisyGrid(48, 48, 9)
	masks := map[string]*raster.Mask{}
	for _, name := range []string{"gamma", "alpha", "delta", "beta"} {
		m := raster.MustMask(48, 48)
		fillRect(m, 4, 4, 12, 12)
		masks[name] = m
	}

	first, err := Compute(g, masks, "stacked")
	require.NoError(t, err)
	require.Len(t, first.Topology, 4)
	for i, want := range []string{"alpha", "beta", "delta", "gamma"} {
		assert.Equal(t, want, first.Topology[i].Facies)
	}
	for i := 0; i < 10; i++ {
		rec, err := Compute(g, masks, "stacked")
		require.NoError(t, err)
		for j := range first.Topology {
			assert.Equal(t, first.Topology[j].Facies, rec.Topology[j].Facies)
		}
	}
}

func TestPreview_ConstantGrid(t *testing.T) {
	t.Parallel()

	g := raster.MustGrid(32, 32)
	g.Fill(0.4)
	rec, err := Preview(g, map[string]*raster.Mask{}, "stacked")
	require.NoError(t, err)
	assert.True(t, rec.Flags["zero_variance"])
}

func TestPreview_CheapSubset(t *testing.T) {
	t.Parallel()

	cfg := synth.DefaultConfig(synth.StyleBraided)
	cfg.Height = 256
	cfg.Width = 160
	r, err := synth.Generate(cfg)
	require.NoError(t, err)

	rec, err := Preview(r.Grid, r.Masks, "braided")
	require.NoError(t, err)

	assert.Contains(t, rec.Values, "beta_dir_0")
	assert.Contains(t, rec.Values, "entropy_bits")
	assert.Contains(t, rec.Values, "area_channel")
	assert.NotContains(t, rec.Values, "psd_aspect_ratio")
	assert.Empty(t, rec.Topology)
	require.Len(t, rec.Variograms, 1)
	assert.LessOrEqual(t, rec.Variograms[0].Lags[len(rec.Variograms[0].Lags)-1], float64(previewMaxLag))
}
