// Package config loads scenario files: JSON descriptions of a synthesis
// run (style, shape, seed, per-style parameter overrides, optional stack
// block). Fields omitted from the JSON keep their canonical defaults, so
// partial scenarios are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/strata-data/stratigen/internal/synth"
)

// maxScenarioSize caps scenario files at 1MB.
const maxScenarioSize = 1 * 1024 * 1024

// Scenario is the JSON schema of a run description. Pointer fields
// distinguish "omitted" from zero values.
type Scenario struct {
	Style  string `json:"style"`
	Height *int   `json:"height,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`

	Meander *MeanderBlock `json:"meander,omitempty"`
	Braided *BraidedBlock `json:"braided,omitempty"`
	Anasto  *AnastoBlock  `json:"anastomosing,omitempty"`
	Aeolian *AeolianBlock `json:"aeolian,omitempty"`
	Estuary *EstuaryBlock `json:"estuary,omitempty"`
	Overlay *OverlayBlock `json:"overlays,omitempty"`

	Stack *StackBlock `json:"stack,omitempty"`
}

// MeanderBlock overrides meandering parameters.
type MeanderBlock struct {
	NControlPoints   *int     `json:"n_control_points,omitempty"`
	AmpLow           *float64 `json:"amp_low,omitempty"`
	AmpHigh          *float64 `json:"amp_high,omitempty"`
	DriftFraction    *float64 `json:"drift_fraction,omitempty"`
	ChannelWidthMin  *float64 `json:"channel_width_min,omitempty"`
	ChannelWidthMax  *float64 `json:"channel_width_max,omitempty"`
	LeveeIterations  *int     `json:"levee_iterations,omitempty"`
	ScrollLambdaPx   *float64 `json:"scroll_lambda_px,omitempty"`
	OxbowProbability *float64 `json:"oxbow_probability,omitempty"`
	NeckTolerancePx  *float64 `json:"neck_tolerance_px,omitempty"`
	FloodplainNoise  *float64 `json:"floodplain_noise,omitempty"`
}

// BraidedBlock overrides braided parameters.
type BraidedBlock struct {
	ThreadCount      *int     `json:"thread_count,omitempty"`
	MeanThreadWidth  *float64 `json:"mean_thread_width,omitempty"`
	BarSpacingFactor *float64 `json:"bar_spacing_factor,omitempty"`
	ChuteFrequency   *float64 `json:"chute_frequency,omitempty"`
	FloodplainNoise  *float64 `json:"floodplain_noise,omitempty"`
}

// AnastoBlock overrides anastomosing parameters.
type AnastoBlock struct {
	BranchCount      *int     `json:"branch_count,omitempty"`
	LeveeWidthPx     *float64 `json:"levee_width_px,omitempty"`
	LeveeHeightScale *float64 `json:"levee_height_scale,omitempty"`
	MarshFraction    *float64 `json:"marsh_fraction,omitempty"`
	FanLengthPx      *float64 `json:"fan_length_px,omitempty"`
	FloodplainNoise  *float64 `json:"floodplain_noise,omitempty"`
}

// AeolianBlock overrides dune-field parameters.
type AeolianBlock struct {
	ThetaDeg          *float64 `json:"theta_deg,omitempty"`
	SpacingPx         *float64 `json:"spacing_px,omitempty"`
	HeightPx          *float64 `json:"height_px,omitempty"`
	DefectRate        *float64 `json:"defect_rate,omitempty"`
	InterduneFraction *float64 `json:"interdune_fraction,omitempty"`
	SpacingRatioK     *float64 `json:"spacing_ratio_k,omitempty"`
}

// EstuaryBlock overrides estuarine parameters.
type EstuaryBlock struct {
	Dominance          *float64 `json:"dominance,omitempty"`
	TidalPrism         *float64 `json:"tidal_prism,omitempty"`
	Sinuosity          *float64 `json:"sinuosity,omitempty"`
	DeltaFrontAngleDeg *float64 `json:"delta_front_angle_deg,omitempty"`
	MudflatFraction    *float64 `json:"mudflat_fraction,omitempty"`
}

// OverlayBlock overrides the sedimentary overlay pass.
type OverlayBlock struct {
	Enabled             *bool    `json:"enabled,omitempty"`
	ChannelFillStrength *float64 `json:"channel_fill_strength,omitempty"`
	CrossBedGain        *float64 `json:"cross_bed_gain,omitempty"`
	RippleGain          *float64 `json:"ripple_gain,omitempty"`
	ScourCount          *int     `json:"scour_count,omitempty"`
	CementationTint     *float64 `json:"cementation_tint,omitempty"`
}

// StackBlock describes stacked mode. Presence of the block selects
// stacked generation; slices broadcast or cycle across packages.
type StackBlock struct {
	PackageCount   *int      `json:"package_count,omitempty"`
	StackSeed      *int64    `json:"stack_seed,omitempty"`
	Styles         []string  `json:"styles,omitempty"`
	ThicknessPx    []float64 `json:"thickness_px,omitempty"`
	ReliefPx       []float64 `json:"relief_px,omitempty"`
	ErosionDepthPx []float64 `json:"erosion_depth_px,omitempty"`
	ErosionStyle   *string   `json:"erosion_style,omitempty"`
}

// LoadScenario reads and parses a scenario file. The path must carry a
// .json extension and stay under the size cap; the resulting config is
// validated before it is returned to the caller.
func LoadScenario(path string) (*Scenario, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scenario file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat scenario file: %w", err)
	}
	if info.Size() > maxScenarioSize {
		return nil, fmt.Errorf("scenario file too large: %d bytes (max %d)", info.Size(), maxScenarioSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario JSON: %w", err)
	}
	if _, err := s.BuildConfig(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// BuildConfig resolves the scenario into a validated synthesis config,
// applying overrides on top of the style defaults.
func (s *Scenario) BuildConfig() (synth.Config, error) {
	style, err := synth.ParseStyle(s.Style)
	if err != nil {
		return synth.Config{}, err
	}
	cfg := synth.DefaultConfig(style)
	setInt(&cfg.Height, s.Height)
	setInt(&cfg.Width, s.Width)
	setInt64(&cfg.Seed, s.Seed)

	if b := s.Meander; b != nil {
		setInt(&cfg.Meander.NControlPoints, b.NControlPoints)
		setFloat(&cfg.Meander.AmpLow, b.AmpLow)
		setFloat(&cfg.Meander.AmpHigh, b.AmpHigh)
		setFloat(&cfg.Meander.DriftFraction, b.DriftFraction)
		setFloat(&cfg.Meander.ChannelWidthMin, b.ChannelWidthMin)
		setFloat(&cfg.Meander.ChannelWidthMax, b.ChannelWidthMax)
		setInt(&cfg.Meander.LeveeIterations, b.LeveeIterations)
		setFloat(&cfg.Meander.ScrollLambdaPx, b.ScrollLambdaPx)
		setFloat(&cfg.Meander.OxbowProbability, b.OxbowProbability)
		setFloat(&cfg.Meander.NeckTolerancePx, b.NeckTolerancePx)
		setFloat(&cfg.Meander.FloodplainNoise, b.FloodplainNoise)
	}
	if b := s.Braided; b != nil {
		setInt(&cfg.Braided.ThreadCount, b.ThreadCount)
		setFloat(&cfg.Braided.MeanThreadWidth, b.MeanThreadWidth)
		setFloat(&cfg.Braided.BarSpacingFactor, b.BarSpacingFactor)
		setFloat(&cfg.Braided.ChuteFrequency, b.ChuteFrequency)
		setFloat(&cfg.Braided.FloodplainNoise, b.FloodplainNoise)
	}
	if b := s.Anasto; b != nil {
		setInt(&cfg.Anasto.BranchCount, b.BranchCount)
		setFloat(&cfg.Anasto.LeveeWidthPx, b.LeveeWidthPx)
		setFloat(&cfg.Anasto.LeveeHeightScale, b.LeveeHeightScale)
		setFloat(&cfg.Anasto.MarshFraction, b.MarshFraction)
		setFloat(&cfg.Anasto.FanLengthPx, b.FanLengthPx)
		setFloat(&cfg.Anasto.FloodplainNoise, b.FloodplainNoise)
	}
	if b := s.Aeolian; b != nil {
		setFloat(&cfg.Aeolian.ThetaDeg, b.ThetaDeg)
		setFloat(&cfg.Aeolian.SpacingPx, b.SpacingPx)
		setFloat(&cfg.Aeolian.HeightPx, b.HeightPx)
		setFloat(&cfg.Aeolian.DefectRate, b.DefectRate)
		setFloat(&cfg.Aeolian.InterduneFraction, b.InterduneFraction)
		setFloat(&cfg.Aeolian.SpacingRatioK, b.SpacingRatioK)
	}
	if b := s.Estuary; b != nil {
		setFloat(&cfg.Estuary.Dominance, b.Dominance)
		setFloat(&cfg.Estuary.TidalPrism, b.TidalPrism)
		setFloat(&cfg.Estuary.Sinuosity, b.Sinuosity)
		setFloat(&cfg.Estuary.DeltaFrontAngleDeg, b.DeltaFrontAngleDeg)
		setFloat(&cfg.Estuary.MudflatFraction, b.MudflatFraction)
	}
	if b := s.Overlay; b != nil {
		setBool(&cfg.Overlays.Enabled, b.Enabled)
		setFloat(&cfg.Overlays.ChannelFillStrength, b.ChannelFillStrength)
		setFloat(&cfg.Overlays.CrossBedGain, b.CrossBedGain)
		setFloat(&cfg.Overlays.RippleGain, b.RippleGain)
		setInt(&cfg.Overlays.ScourCount, b.ScourCount)
		setFloat(&cfg.Overlays.CementationTint, b.CementationTint)
	}

	if err := cfg.Validate(); err != nil {
		return synth.Config{}, err
	}
	return cfg, nil
}

// Stacked reports whether the scenario requests stacked mode.
func (s *Scenario) Stacked() bool { return s.Stack != nil }

// BuildStackConfig resolves the scenario's stack block into a validated
// stack config. Calling it without a stack block is an error.
func (s *Scenario) BuildStackConfig() (synth.StackConfig, error) {
	if s.Stack == nil {
		return synth.StackConfig{}, fmt.Errorf("scenario has no stack block")
	}
	base, err := s.BuildConfig()
	if err != nil {
		return synth.StackConfig{}, err
	}
	sc := synth.DefaultStackConfig(base.Style)
	sc.Base = base

	b := s.Stack
	setInt(&sc.PackageCount, b.PackageCount)
	setInt64(&sc.StackSeed, b.StackSeed)
	if len(b.ThicknessPx) > 0 {
		sc.ThicknessPx = b.ThicknessPx
	}
	if len(b.ReliefPx) > 0 {
		sc.ReliefPx = b.ReliefPx
	}
	if len(b.ErosionDepthPx) > 0 {
		sc.ErosionDepthPx = b.ErosionDepthPx
	}
	if len(b.Styles) > 0 {
		styles := make([]synth.Style, 0, len(b.Styles))
		for _, name := range b.Styles {
			st, err := synth.ParseStyle(name)
			if err != nil {
				return synth.StackConfig{}, err
			}
			styles = append(styles, st)
		}
		sc.Styles = styles
	}
	if b.ErosionStyle != nil {
		es, err := synth.ParseErosionStyle(*b.ErosionStyle)
		if err != nil {
			return synth.StackConfig{}, err
		}
		sc.Erosion = es
	}

	if err := sc.Validate(); err != nil {
		return synth.StackConfig{}, err
	}
	return sc, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
