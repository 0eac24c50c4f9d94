package synth

import (
	"math"
	"math/rand/v2"

	"github.com/strata-data/stratigen/internal/raster"
)

// Grayscale base intensities for dune-field facies.
const (
	duneCrestWeight     = 0.85
	duneSlipfaceWeight  = 0.65
	duneStossWeight     = 0.50
	duneInterduneWeight = 0.30
)

// Crest cut level for the ridge pattern.
const crestFieldLevel = 0.90

// buildAeolian produces a dune field: a wind-azimuth-aligned crest
// pattern modulated by dune height, defect-broken ridges, downwind
// slipfaces, upwind stoss flanks, and interdune corridors sized to the
// target areal fraction.
//
// Variants share the machinery: barchan ridges run transverse to the wind
// with the full defect rate, linear ridges run parallel to the wind with
// ridge continuity enforced (defects damped), and transverse ridges bind
// crest spacing to dune height (spacing ≈ k·height).
func buildAeolian(style Style, p AeolianParams, rng *rand.Rand, h, w int) (*primitives, error) {
	theta := p.ThetaDeg * math.Pi / 180
	spacing := p.SpacingPx
	defectRate := p.DefectRate
	switch style {
	case StyleTransverseDune:
		spacing = clampF(p.SpacingRatioK*p.HeightPx, 8, float64(max(h, w)))
	case StyleLinearDune:
		defectRate *= 0.3
	}

	ridge := ridgePattern(style, theta, spacing, p.HeightPx, rng, h, w)

	// Interdune corridors: the low-relief complement, cut at the quantile
	// matching the requested areal fraction.
	interduneLevel := ridge.Quantile(p.InterduneFraction)
	interdune := raster.MustGrid(h, w)
	for i, v := range ridge.Data {
		if v <= interduneLevel {
			interdune.Data[i] = 1
		}
	}

	crestMask := ridge.Threshold(crestFieldLevel)
	crestMask, continuity := breakRidges(crestMask, defectRate, rng)
	crest := crestMask.Float()

	// Slipfaces are the downwind projection of each crest.
	offset := math.Max(3, spacing*0.12)
	dyOff := int(math.Round(math.Sin(theta) * offset))
	dxOff := int(math.Round(math.Cos(theta) * offset))
	slipMask := shiftMask(crestMask, dyOff, dxOff)
	slipMask.Subtract(crestMask)
	slip := slipMask.Float()

	// Stoss flanks are everything the other facies do not claim, so the
	// four dune masks tile the raster.
	stoss := raster.MustGrid(h, w)
	for i := range stoss.Data {
		if interdune.Data[i] == 0 && !crestMask.Bits[i] && !slipMask.Bits[i] {
			stoss.Data[i] = 1
		}
	}

	labels := raster.LabelComponents(crestMask)
	meta := Metadata{
		"wind_theta_deg":      p.ThetaDeg,
		"crest_spacing_px":    spacing,
		"dune_height_px":      p.HeightPx,
		"continuity_index":    continuity,
		"crest_segment_count": float64(labels.Count),
		"interdune_target":    p.InterduneFraction,
	}
	if style == StyleTransverseDune {
		meta["spacing_height_ratio"] = spacing / p.HeightPx
	}
	return &primitives{
		style: style,
		layers: []layer{
			{facies: "interdune", field: interdune, weight: duneInterduneWeight, threshold: 0.5},
			{facies: "stoss", field: stoss, weight: duneStossWeight, threshold: 0.5},
			{facies: "crest", field: crest, weight: duneCrestWeight, threshold: 0.5},
			{facies: "slipface", field: slip, weight: duneSlipfaceWeight, threshold: 0.5},
		},
		meta:       meta,
		noiseScale: 0.04,
	}, nil
}

// ridgePattern builds the periodic dune relief: a cosine wave along the
// wind axis (or across it for linear dunes) with amplitude scaled by dune
// height and a low-frequency wobble so crests are not ruler-straight.
func ridgePattern(style Style, theta, spacing, heightPx float64, rng *rand.Rand, h, w int) *raster.Grid {
	amp := clampF(heightPx/12, 0.3, 1.0)
	wobble := raster.NoiseField(h, w, 3, rng)
	ridge := raster.MustGrid(h, w)
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			proj := float64(x)*cosT + float64(y)*sinT
			if style == StyleLinearDune {
				proj = -float64(x)*sinT + float64(y)*cosT
			}
			phase := 2*math.Pi*proj/spacing + (wobble.At(y, x)-0.5)*1.2
			ridge.Set(y, x, amp*0.5*(1+math.Cos(phase)))
		}
	}
	// Rescale so the crest cut level is meaningful at any amplitude.
	ridge.Normalize()
	return ridge
}

// breakRidges clears crest cells where the defect field falls under the
// defect rate, breaking ridge continuity. Returns the damaged mask and the
// continuity index (surviving crest fraction).
func breakRidges(crest *raster.Mask, defectRate float64, rng *rand.Rand) (*raster.Mask, float64) {
	before := crest.Count()
	if defectRate <= 0 || before == 0 {
		return crest, 1
	}
	defects := raster.NoiseField(crest.H, crest.W, 8, rng)
	level := defects.Quantile(defectRate)
	out := crest.Clone()
	for i := range out.Bits {
		if out.Bits[i] && defects.Data[i] <= level {
			out.Bits[i] = false
		}
	}
	after := out.Count()
	if after == 0 {
		// Defects may not erase the crest field entirely; keep the original.
		return crest, 1
	}
	return out, float64(after) / float64(before)
}

// shiftMask translates a mask by (dy, dx), dropping cells shifted off the
// raster.
func shiftMask(m *raster.Mask, dy, dx int) *raster.Mask {
	out := raster.MustMask(m.H, m.W)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(y, x) {
				continue
			}
			ny, nx := y+dy, x+dx
			if ny >= 0 && ny < m.H && nx >= 0 && nx < m.W {
				out.Set(ny, nx, true)
			}
		}
	}
	return out
}
