package synth

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-data/stratigen/internal/rngutil"
)

func testStackConfig(style Style) StackConfig {
	cfg := DefaultStackConfig(style)
	cfg.Base.Height = 160
	cfg.Base.Width = 192
	return cfg
}

func TestErosionStyle_Parse(t *testing.T) {
	t.Parallel()

	for _, s := range []ErosionStyle{ErosionFlat, ErosionRelief} {
		parsed, err := ParseErosionStyle(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseErosionStyle("glacial")
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestStackConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := testStackConfig(StyleMeandering)
	require.NoError(t, cfg.Validate())

	cfg.PackageCount = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidParam)

	cfg = testStackConfig(StyleMeandering)
	cfg.StackSeed = -1
	assert.ErrorIs(t, cfg.Validate(), rngutil.ErrInvalidSeed)

	cfg = testStackConfig(StyleMeandering)
	cfg.ThicknessPx = []float64{0}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidParam)

	// Cycled styles are validated against the base parameter blocks.
	cfg = testStackConfig(StyleMeandering)
	cfg.Styles = []Style{StyleMeandering, StyleBraided}
	cfg.Base.Braided.ThreadCount = 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidParam)
}

// A one-package stack must reproduce the single-realization output
// byte for byte.
func TestGenerateStacked_SinglePackageMatchesGenerate(t *testing.T) {
	t.Parallel()

	cfg := testStackConfig(StyleBraided)
	cfg.PackageCount = 1

	single, err := Generate(cfg.Base)
	require.NoError(t, err)
	stacked, err := GenerateStacked(cfg)
	require.NoError(t, err)

	if diff := cmp.Diff(single.Grid.Data, stacked.Realization.Grid.Data); diff != "" {
		t.Fatalf("grid differs from plain Generate:\n%s", diff)
	}
	require.Equal(t, len(single.Masks), len(stacked.Realization.Masks))
	for name, m := range single.Masks {
		if diff := cmp.Diff(m.Bits, stacked.Realization.Masks[name].Bits); diff != "" {
			t.Fatalf("mask %q differs from plain Generate:\n%s", name, diff)
		}
	}
	require.Len(t, stacked.Packages, 1)
	assert.Equal(t, cfg.Base.Seed, stacked.Packages[0].Seed)
}

func TestGenerateStacked_Deterministic(t *testing.T) {
	t.Parallel()

	cfg := testStackConfig(StyleMeandering)
	a, err := GenerateStacked(cfg)
	require.NoError(t, err)
	b, err := GenerateStacked(cfg)
	require.NoError(t, err)

	if diff := cmp.Diff(a.PackageIDs.IDs, b.PackageIDs.IDs); diff != "" {
		t.Fatalf("package ID map differs between identical runs:\n%s", diff)
	}
	if diff := cmp.Diff(a.Realization.Grid.Data, b.Realization.Grid.Data); diff != "" {
		t.Fatalf("composite grid differs between identical runs:\n%s", diff)
	}
}

func TestGenerateStacked_PackageBookkeeping(t *testing.T) {
	t.Parallel()

	cfg := testStackConfig(StyleMeandering)
	cfg.Styles = []Style{StyleMeandering, StyleBraided, StyleAnastomosing}
	cfg.ReliefPx = []float64{10, 18, 26}
	res, err := GenerateStacked(cfg)
	require.NoError(t, err)

	require.Len(t, res.Packages, 3)
	assert.Equal(t, "meandering", res.Packages[0].Style)
	assert.Equal(t, "braided", res.Packages[1].Style)
	assert.Equal(t, "anastomosing", res.Packages[2].Style)
	for i, want := range []float64{10, 18, 26} {
		assert.Equal(t, want, res.Packages[i].ReliefPx)
	}

	// Sub-seeds must be distinct so packages draw independent geometry.
	seeds := map[int64]bool{}
	for _, p := range res.Packages {
		seeds[p.Seed] = true
	}
	assert.Len(t, seeds, 3)

	var sum float64
	for _, p := range res.Packages {
		assert.GreaterOrEqual(t, p.AreaFraction, 0.0)
		assert.LessOrEqual(t, p.AreaFraction, 1.0)
		sum += p.AreaFraction
	}
	assert.LessOrEqual(t, sum, 1.0+1e-9)

	// The upper surface is exactly the area owned by the final package.
	upperFrac := res.UpperSurface.Fraction()
	assert.InDelta(t, res.Packages[2].AreaFraction, upperFrac, 1e-9)

	// Every owned cell cites a valid package; erosion with a positive
	// depth leaves a truncation surface.
	for _, id := range res.PackageIDs.IDs {
		assert.GreaterOrEqual(t, id, int32(-1))
		assert.Less(t, id, int32(3))
	}
	assert.False(t, res.ErosionSurface.Empty())
}

func TestGenerateStacked_AllPackagesVisible(t *testing.T) {
	t.Parallel()

	cfg := testStackConfig(StyleMeandering)
	cfg.Base.Height = 256
	cfg.Base.Width = 256
	res, err := GenerateStacked(cfg)
	require.NoError(t, err)

	seen := map[int32]bool{}
	for _, id := range res.PackageIDs.IDs {
		seen[id] = true
	}
	// Belts at different sub-seeds cross different ground, so each
	// package keeps some exposed area, and bare floodplain stays
	// unassigned.
	for want := int32(-1); want < 3; want++ {
		assert.True(t, seen[want], "package id %d never appears", want)
	}
}

func TestGenerateStacked_ErosionClampFlag(t *testing.T) {
	t.Parallel()

	cfg := testStackConfig(StyleMeandering)
	cfg.ErosionDepthPx = []float64{500} // far beyond any package thickness
	res, err := GenerateStacked(cfg)
	require.NoError(t, err)

	assert.True(t, res.Packages[0].ErosionClamped)
	assert.Equal(t, true, res.Realization.Meta["qa_erosion_clamped"])
}

func TestGenerateStacked_CompositeMetadata(t *testing.T) {
	t.Parallel()

	cfg := testStackConfig(StyleBraided)
	res, err := GenerateStacked(cfg)
	require.NoError(t, err)

	meta := res.Realization.Meta
	assert.Equal(t, "stacked", meta["style"])
	assert.Equal(t, 3, meta["package_count"])
	assert.Equal(t, "flat", meta["erosion_style"])

	pkgs, ok := meta["stacked_packages"].([]Metadata)
	require.True(t, ok)
	require.Len(t, pkgs, 3)
	for i, pm := range pkgs {
		assert.Equal(t, i, pm["package_index"])
		assert.Equal(t, "braided", pm["style"])
	}
}
