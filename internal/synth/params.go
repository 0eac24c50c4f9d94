// Package synth turns geomorphic parameters into labeled raster
// realizations of depositional environments. A realization is a grayscale
// intensity grid plus a closed set of named boolean facies masks and a
// metadata record; synthesis is deterministic for a fixed (style,
// parameters, seed, shape).
package synth

import (
	"errors"
	"fmt"
)

// Style identifies a depositional style. The set is closed: every style is
// bound to one geometry builder, one facies schema, and one layering order,
// selected once at the Generate entry point.
type Style int

const (
	StyleMeandering Style = iota
	StyleBraided
	StyleAnastomosing
	StyleBarchan
	StyleLinearDune
	StyleTransverseDune
	StyleTideEstuary
	StyleWaveEstuary
	StyleMixedEstuary
)

var styleNames = map[Style]string{
	StyleMeandering:     "meandering",
	StyleBraided:        "braided",
	StyleAnastomosing:   "anastomosing",
	StyleBarchan:        "barchan",
	StyleLinearDune:     "linear_dune",
	StyleTransverseDune: "transverse_dune",
	StyleTideEstuary:    "tide_estuary",
	StyleWaveEstuary:    "wave_estuary",
	StyleMixedEstuary:   "mixed_estuary",
}

// String returns the canonical lowercase style name.
func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// ParseStyle resolves a style name, accepting the canonical names only.
func ParseStyle(name string) (Style, error) {
	for s, n := range styleNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown style %q", ErrInvalidParam, name)
}

// Sentinel errors. Parameter and geometry errors are fatal to a
// Generate call; numeric degeneracy never surfaces as an error.
var (
	ErrInvalidParam = errors.New("invalid parameter")
	ErrGeometry     = errors.New("geometric impossibility")
)

// MeanderParams controls the meandering channel-belt builder.
type MeanderParams struct {
	NControlPoints   int     // centerline control points, >= 3
	AmpLow           float64 // sinuosity amplitude range, fraction of height
	AmpHigh          float64
	DriftFraction    float64 // vertical drift of the belt axis
	ChannelWidthMin  float64 // bankfull width range, px
	ChannelWidthMax  float64
	LeveeIterations  int     // dilation radius for levee rims
	ScrollLambdaPx   float64 // scroll-bar banding period
	OxbowProbability float64 // chance of stamping a detected neck cutoff
	NeckTolerancePx  float64 // centerline self-approach distance for cutoffs
	FloodplainNoise  float64
}

// DefaultMeanderParams returns the canonical meandering defaults.
func DefaultMeanderParams() MeanderParams {
	return MeanderParams{
		NControlPoints:   6,
		AmpLow:           0.08,
		AmpHigh:          0.22,
		DriftFraction:    0.08,
		ChannelWidthMin:  26.0,
		ChannelWidthMax:  46.0,
		LeveeIterations:  5,
		ScrollLambdaPx:   28.0,
		OxbowProbability: 0.25,
		NeckTolerancePx:  12.0,
		FloodplainNoise:  0.08,
	}
}

// Validate rejects out-of-range meandering parameters.
func (p MeanderParams) Validate() error {
	if p.NControlPoints < 3 {
		return fmt.Errorf("%w: n_control_points must be >= 3, got %d", ErrInvalidParam, p.NControlPoints)
	}
	if p.AmpLow < 0 || p.AmpHigh < p.AmpLow {
		return fmt.Errorf("%w: amplitude range (%g, %g) must be ordered and non-negative", ErrInvalidParam, p.AmpLow, p.AmpHigh)
	}
	if p.ChannelWidthMin <= 0 || p.ChannelWidthMax < p.ChannelWidthMin {
		return fmt.Errorf("%w: channel width range (%g, %g) must be ordered and positive", ErrInvalidParam, p.ChannelWidthMin, p.ChannelWidthMax)
	}
	if p.LeveeIterations < 1 {
		return fmt.Errorf("%w: levee_iterations must be >= 1, got %d", ErrInvalidParam, p.LeveeIterations)
	}
	if p.OxbowProbability < 0 || p.OxbowProbability > 1 {
		return fmt.Errorf("%w: oxbow_probability must be in [0, 1], got %g", ErrInvalidParam, p.OxbowProbability)
	}
	return nil
}

// BraidedParams controls the braided belt builder.
type BraidedParams struct {
	ThreadCount      int
	MeanThreadWidth  float64 // px
	BarSpacingFactor float64 // bars at factor*width spacing, 3.5..5.5
	ChuteFrequency   float64 // 0..1
	FloodplainNoise  float64
}

// DefaultBraidedParams returns the canonical braided defaults.
func DefaultBraidedParams() BraidedParams {
	return BraidedParams{
		ThreadCount:      5,
		MeanThreadWidth:  18.0,
		BarSpacingFactor: 4.2,
		ChuteFrequency:   0.35,
		FloodplainNoise:  0.05,
	}
}

// Validate rejects out-of-range braided parameters.
func (p BraidedParams) Validate() error {
	if p.ThreadCount < 3 || p.ThreadCount > 9 {
		return fmt.Errorf("%w: thread_count must be between 3 and 9, got %d", ErrInvalidParam, p.ThreadCount)
	}
	if p.MeanThreadWidth < 12.0 || p.MeanThreadWidth > 28.0 {
		return fmt.Errorf("%w: mean_thread_width must be between 12 and 28 px, got %g", ErrInvalidParam, p.MeanThreadWidth)
	}
	if p.BarSpacingFactor < 3.5 || p.BarSpacingFactor > 5.5 {
		return fmt.Errorf("%w: bar_spacing_factor must be between 3.5 and 5.5, got %g", ErrInvalidParam, p.BarSpacingFactor)
	}
	if p.ChuteFrequency < 0 || p.ChuteFrequency > 1 {
		return fmt.Errorf("%w: chute_frequency must be in [0, 1], got %g", ErrInvalidParam, p.ChuteFrequency)
	}
	return nil
}

// AnastoParams controls the anastomosing belt builder.
type AnastoParams struct {
	BranchCount      int
	LeveeWidthPx     float64
	LeveeHeightScale float64
	MarshFraction    float64 // target marsh areal fraction, 0.2..0.7
	FanLengthPx      float64 // crevasse fan length, 15..60
	FloodplainNoise  float64
}

// DefaultAnastoParams returns the canonical anastomosing defaults.
func DefaultAnastoParams() AnastoParams {
	return AnastoParams{
		BranchCount:      3,
		LeveeWidthPx:     6.0,
		LeveeHeightScale: 0.65,
		MarshFraction:    0.45,
		FanLengthPx:      35.0,
		FloodplainNoise:  0.04,
	}
}

// Validate rejects out-of-range anastomosing parameters.
func (p AnastoParams) Validate() error {
	if p.BranchCount < 2 || p.BranchCount > 6 {
		return fmt.Errorf("%w: branch_count must be between 2 and 6, got %d", ErrInvalidParam, p.BranchCount)
	}
	if p.LeveeWidthPx < 1 {
		return fmt.Errorf("%w: levee_width_px must be >= 1, got %g", ErrInvalidParam, p.LeveeWidthPx)
	}
	if p.MarshFraction < 0.2 || p.MarshFraction > 0.7 {
		return fmt.Errorf("%w: marsh_fraction must be between 0.2 and 0.7, got %g", ErrInvalidParam, p.MarshFraction)
	}
	if p.FanLengthPx < 15.0 || p.FanLengthPx > 60.0 {
		return fmt.Errorf("%w: fan_length_px must be between 15 and 60, got %g", ErrInvalidParam, p.FanLengthPx)
	}
	return nil
}

// AeolianParams controls the dune-field builders (barchan, linear,
// transverse). SpacingRatioK binds crest spacing to dune height for the
// transverse variant (spacing ≈ k·height).
type AeolianParams struct {
	ThetaDeg          float64 // wind azimuth, degrees clockwise from +x
	SpacingPx         float64 // crest-to-crest spacing
	HeightPx          float64 // nominal dune height driving relief amplitude
	DefectRate        float64 // 0..1, rate of ridge-continuity breaks
	InterduneFraction float64 // target areal fraction of interdune corridors
	SpacingRatioK     float64 // transverse constraint spacing ≈ k·height
}

// DefaultAeolianParams returns the canonical dune-field defaults.
func DefaultAeolianParams() AeolianParams {
	return AeolianParams{
		ThetaDeg:          30.0,
		SpacingPx:         48.0,
		HeightPx:          8.0,
		DefectRate:        0.25,
		InterduneFraction: 0.35,
		SpacingRatioK:     6.0,
	}
}

// Validate rejects out-of-range aeolian parameters.
func (p AeolianParams) Validate() error {
	if p.SpacingPx < 8 {
		return fmt.Errorf("%w: spacing_px must be >= 8, got %g", ErrInvalidParam, p.SpacingPx)
	}
	if p.HeightPx <= 0 {
		return fmt.Errorf("%w: height_px must be positive, got %g", ErrInvalidParam, p.HeightPx)
	}
	if p.DefectRate < 0 || p.DefectRate > 1 {
		return fmt.Errorf("%w: defect_rate must be in [0, 1], got %g", ErrInvalidParam, p.DefectRate)
	}
	if p.InterduneFraction < 0.05 || p.InterduneFraction > 0.8 {
		return fmt.Errorf("%w: interdune_fraction must be in [0.05, 0.8], got %g", ErrInvalidParam, p.InterduneFraction)
	}
	if p.SpacingRatioK <= 0 {
		return fmt.Errorf("%w: spacing_ratio_k must be positive, got %g", ErrInvalidParam, p.SpacingRatioK)
	}
	return nil
}

// EstuaryParams controls the estuarine builders. Dominance selects the
// blend weight for the mixed variant: 1.0 is fully tide-dominated, 0.0
// fully wave-dominated; the blend is linear and applied identically to
// facies fields and metadata.
type EstuaryParams struct {
	Dominance          float64 // δ in [0, 1], mixed variant only
	TidalPrism         float64 // relative prism scaling bar size/count, 0.2..3
	Sinuosity          float64 // channel sinuosity factor, >= 1
	DeltaFrontAngleDeg float64 // bound on shoreline curvature, degrees
	MudflatFraction    float64 // target mudflat areal fraction
}

// DefaultEstuaryParams returns the canonical estuarine defaults.
func DefaultEstuaryParams() EstuaryParams {
	return EstuaryParams{
		Dominance:          0.5,
		TidalPrism:         1.0,
		Sinuosity:          1.15,
		DeltaFrontAngleDeg: 18.0,
		MudflatFraction:    0.25,
	}
}

// Validate rejects out-of-range estuarine parameters.
func (p EstuaryParams) Validate() error {
	if p.Dominance < 0 || p.Dominance > 1 {
		return fmt.Errorf("%w: dominance must be in [0, 1], got %g", ErrInvalidParam, p.Dominance)
	}
	if p.TidalPrism < 0.2 || p.TidalPrism > 3.0 {
		return fmt.Errorf("%w: tidal_prism must be between 0.2 and 3, got %g", ErrInvalidParam, p.TidalPrism)
	}
	if p.Sinuosity < 1.0 {
		return fmt.Errorf("%w: sinuosity must be >= 1, got %g", ErrInvalidParam, p.Sinuosity)
	}
	if p.DeltaFrontAngleDeg <= 0 || p.DeltaFrontAngleDeg >= 60 {
		return fmt.Errorf("%w: delta_front_angle_deg must be in (0, 60), got %g", ErrInvalidParam, p.DeltaFrontAngleDeg)
	}
	if p.MudflatFraction < 0.05 || p.MudflatFraction > 0.6 {
		return fmt.Errorf("%w: mudflat_fraction must be in [0.05, 0.6], got %g", ErrInvalidParam, p.MudflatFraction)
	}
	return nil
}

// OverlayParams controls the post-composition sedimentary overlay pass.
// Overlays modulate intensity and emit metadata; they never resize the
// grid, rename masks, or introduce facies.
type OverlayParams struct {
	Enabled             bool
	ChannelFillStrength float64 // 0..1 blend strength for channel fill
	CrossBedGain        float64 // intensity gain for cross-bed bands
	RippleGain          float64 // intensity gain for ripple texture
	ScourCount          int     // scour stamps cut into channel floors
	CementationTint     float64 // uniform diagenetic tint, -0.2..0.2
}

// DefaultOverlayParams returns overlays on with the canonical gains.
func DefaultOverlayParams() OverlayParams {
	return OverlayParams{
		Enabled:             true,
		ChannelFillStrength: 0.5,
		CrossBedGain:        0.1,
		RippleGain:          0.05,
		ScourCount:          3,
		CementationTint:     0.0,
	}
}

// Validate rejects out-of-range overlay parameters.
func (p OverlayParams) Validate() error {
	if p.ChannelFillStrength < 0 || p.ChannelFillStrength > 1 {
		return fmt.Errorf("%w: channel_fill_strength must be in [0, 1], got %g", ErrInvalidParam, p.ChannelFillStrength)
	}
	if p.CementationTint < -0.2 || p.CementationTint > 0.2 {
		return fmt.Errorf("%w: cementation_tint must be in [-0.2, 0.2], got %g", ErrInvalidParam, p.CementationTint)
	}
	if p.ScourCount < 0 {
		return fmt.Errorf("%w: scour_count must be >= 0, got %d", ErrInvalidParam, p.ScourCount)
	}
	return nil
}

// Config is the full parameter set for one single-mode realization.
// Only the parameter block matching Style is consulted.
type Config struct {
	Style  Style
	Height int
	Width  int
	Seed   int64

	Meander  MeanderParams
	Braided  BraidedParams
	Anasto   AnastoParams
	Aeolian  AeolianParams
	Estuary  EstuaryParams
	Overlays OverlayParams
}

// DefaultConfig returns a 512×512 configuration with canonical defaults
// for every style block.
func DefaultConfig(style Style) Config {
	return Config{
		Style:    style,
		Height:   512,
		Width:    512,
		Seed:     42,
		Meander:  DefaultMeanderParams(),
		Braided:  DefaultBraidedParams(),
		Anasto:   DefaultAnastoParams(),
		Aeolian:  DefaultAeolianParams(),
		Estuary:  DefaultEstuaryParams(),
		Overlays: DefaultOverlayParams(),
	}
}

// Validate checks shape, seed, the active style block, and overlays.
func (c Config) Validate() error {
	if c.Height <= 0 || c.Width <= 0 {
		return fmt.Errorf("%w: grid shape must be positive, got %dx%d", ErrInvalidParam, c.Height, c.Width)
	}
	if c.Seed < 0 {
		return fmt.Errorf("%w: seed must be non-negative, got %d", ErrInvalidParam, c.Seed)
	}
	if _, ok := styleNames[c.Style]; !ok {
		return fmt.Errorf("%w: unknown style %d", ErrInvalidParam, int(c.Style))
	}
	if err := c.Overlays.Validate(); err != nil {
		return err
	}
	switch c.Style {
	case StyleMeandering:
		return c.Meander.Validate()
	case StyleBraided:
		return c.Braided.Validate()
	case StyleAnastomosing:
		return c.Anasto.Validate()
	case StyleBarchan, StyleLinearDune, StyleTransverseDune:
		return c.Aeolian.Validate()
	case StyleTideEstuary, StyleWaveEstuary, StyleMixedEstuary:
		return c.Estuary.Validate()
	}
	return nil
}
