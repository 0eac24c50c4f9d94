// Package stats measures spatial statistics of synthetic depositional
// grids: directional variograms with power-law fits, spectral anisotropy,
// histogram entropy, fractal dimension, and per-facies topology. Numeric
// degeneracy (constant grids, empty masks) always yields defined trivial
// values plus QA flags, never an error.
package stats

import (
	"fmt"
	"sort"

	"github.com/strata-data/stratigen/internal/raster"
	"github.com/strata-data/stratigen/internal/synth"
)

// isConstant detects a flat grid by its range rather than its variance,
// which carries rounding noise for nonzero fill values.
func isConstant(g *raster.Grid) bool {
	min, max := g.MinMax()
	return min == max
}

// previewMaxLag trades lag range for latency in Preview.
const previewMaxLag = 8

// poorFitResidual is the mean squared log-residual above which a
// variogram fit is flagged as unreliable.
const poorFitResidual = 0.5

// anisotropyBands holds the expected variogram anisotropy-ratio range per
// style family. Ratios outside the band raise an advisory flag.
var anisotropyBands = map[synth.Style][2]float64{
	synth.StyleMeandering:     {1.0, 6.0},
	synth.StyleBraided:        {1.0, 8.0},
	synth.StyleAnastomosing:   {1.0, 6.0},
	synth.StyleBarchan:        {1.0, 12.0},
	synth.StyleLinearDune:     {1.0, 12.0},
	synth.StyleTransverseDune: {1.0, 12.0},
	synth.StyleTideEstuary:    {1.0, 8.0},
	synth.StyleWaveEstuary:    {1.0, 8.0},
	synth.StyleMixedEstuary:   {1.0, 8.0},
}

// optionalFacies may legitimately be empty (probability-gated or
// parameter-suppressed structures); their absence raises no flag.
var optionalFacies = map[string]bool{
	"oxbow":         true,
	"chute":         true,
	"wetland_water": true,
	"fan":           true,
}

// Record is the metrics output for one grid. Values holds scalar
// metrics keyed by name; Flags holds advisory QA indicators. Flags never
// accompany an error: degeneracy is reported, not raised.
type Record struct {
	Style      string
	Values     map[string]float64
	Flags      map[string]bool
	Variograms []DirectionalVariogram
	Spectral   SpectralAnisotropy
	Topology   []FaciesTopology
}

// Compute runs the full metrics suite on a grid and its facies masks.
// styleName selects the expectation checks (facies schema, anisotropy
// band); an unrecognized style (e.g. a stacked composite) skips the
// expectation checks and measures whatever masks are present.
func Compute(g *raster.Grid, masks map[string]*raster.Mask, styleName string) (*Record, error) {
	if g == nil || len(g.Data) == 0 {
		return nil, fmt.Errorf("stats: nil or empty grid")
	}
	rec := &Record{
		Style:  styleName,
		Values: make(map[string]float64),
		Flags:  make(map[string]bool),
	}

	constant := isConstant(g)
	if constant {
		rec.Flags["zero_variance"] = true
	}

	rec.Variograms = Variograms(g, DefaultMaxLag)
	betaIso, ratio := isotropySummary(rec.Variograms)
	if constant {
		betaIso, ratio = 0, 1
	}
	rec.Values["beta_iso"] = betaIso
	rec.Values["anisotropy_ratio"] = ratio
	rec.Values["fractal_dimension"] = FractalDimension(betaIso)
	rec.Values["entropy_bits"] = ShannonEntropy(g, 64)

	for _, v := range rec.Variograms {
		rec.Values["beta_"+v.Direction] = v.Beta
		if v.TwoSegment {
			rec.Values["break_lag_"+v.Direction] = v.BreakLag
		}
		if v.Residual > poorFitResidual {
			rec.Flags["variogram_poor_fit"] = true
		}
	}

	rec.Spectral = ComputeSpectralAnisotropy(g)
	rec.Values["psd_aspect_ratio"] = rec.Spectral.AspectRatio
	rec.Values["psd_orientation_deg"] = rec.Spectral.OrientationDeg
	rec.Values["psd_dominant_deg"] = rec.Spectral.DominantDeg
	rec.Values["psd_sector_power"] = rec.Spectral.SectorPowerFrac

	style, styleErr := synth.ParseStyle(styleName)
	var names []string
	if styleErr == nil {
		names = synth.FaciesSchema(style)
	} else {
		for name := range masks {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		m, ok := masks[name]
		if !ok || m.Empty() {
			if styleErr == nil && !optionalFacies[name] {
				rec.Flags["facies_empty_"+name] = true
			}
			if !ok {
				continue
			}
		}
		ft := ComputeTopology(name, m)
		rec.Topology = append(rec.Topology, ft)
		rec.Values["area_"+name] = ft.AreaFraction
		rec.Values["components_"+name] = float64(ft.Components)
	}

	if styleErr == nil {
		if band, ok := anisotropyBands[style]; ok && (ratio < band[0] || ratio > band[1]) {
			rec.Flags["anisotropy_out_of_band"] = true
		}
	}
	return rec, nil
}

// Preview computes the cheap subset for interactive callers: one short
// variogram direction, entropy, and facies area fractions. No spectral
// analysis or topology labeling.
func Preview(g *raster.Grid, masks map[string]*raster.Mask, styleName string) (*Record, error) {
	if g == nil || len(g.Data) == 0 {
		return nil, fmt.Errorf("stats: nil or empty grid")
	}
	rec := &Record{
		Style:  styleName,
		Values: make(map[string]float64),
		Flags:  make(map[string]bool),
	}
	if isConstant(g) {
		rec.Flags["zero_variance"] = true
	}
	lags, gamma := directionalVariogram(g, 0, 1, previewMaxLag)
	dv := fitVariogram("dir_0", lags, gamma)
	rec.Variograms = []DirectionalVariogram{dv}
	rec.Values["beta_dir_0"] = dv.Beta
	rec.Values["entropy_bits"] = ShannonEntropy(g, 64)
	for name, m := range masks {
		rec.Values["area_"+name] = m.Fraction()
	}
	return rec, nil
}
