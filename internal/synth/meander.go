package synth

import (
	"math"
	"math/rand/v2"

	"github.com/strata-data/stratigen/internal/raster"
)

// Grayscale base intensities for meandering facies.
const (
	meanderChannelWeight    = 0.65
	meanderLeveeWeight      = 0.20
	meanderScrollWeight     = 0.10
	meanderOxbowWeight      = 0.15
	meanderFloodplainWeight = 0.35
)

// buildMeandering produces the primitive geometry of a single meandering
// channel belt: sinuous centerline, variable bankfull channel, levee rims,
// concentric scroll bars, and neck-cutoff oxbows.
func buildMeandering(p MeanderParams, rng *rand.Rand, h, w int) (*primitives, error) {
	center := meanderCenterline(p, rng, h, w)
	channel := meanderChannel(center, p, rng, h, w)
	channelMask := channel.Threshold(0.5)

	levee := meanderLevees(channelMask, p.LeveeIterations)
	scroll := scrollBars(channel, channelMask, p.ScrollLambdaPx)
	oxbow, oxbowCount := neckCutoffOxbows(center, p, rng, h, w)

	// Floodplain is everything outside the channel belt and its scars.
	floodplain := raster.MustGrid(h, w)
	for i := range floodplain.Data {
		if channel.Data[i] < 0.5 && oxbow.Data[i] < 0.5 {
			floodplain.Data[i] = 1
		}
	}

	sinuosity := pathSinuosity(center)
	meta := Metadata{
		"sinuosity":   sinuosity,
		"oxbow_count": float64(oxbowCount),
	}

	return &primitives{
		style: StyleMeandering,
		layers: []layer{
			{facies: "floodplain", field: floodplain, weight: meanderFloodplainWeight, threshold: 0.5},
			{facies: "channel", field: channel, weight: meanderChannelWeight, threshold: 0.5},
			{facies: "levee", field: levee, weight: meanderLeveeWeight, threshold: leveeMaskThreshold},
			{facies: "scroll_bar", field: scroll, weight: meanderScrollWeight, threshold: 0.5},
			{facies: "oxbow", field: oxbow, weight: meanderOxbowWeight, threshold: 0.5},
		},
		meta:       meta,
		noiseScale: p.FloodplainNoise,
	}, nil
}

// meanderCenterline perturbs a small set of control points with cumulative
// drift and sinusoidal modulation, then interpolates a per-column path.
// Draw order is fixed: drift, amplitudes, phase.
func meanderCenterline(p MeanderParams, rng *rand.Rand, h, w int) []float64 {
	n := max(3, p.NControlPoints)
	ctrlX := linspace(0, float64(w-1), n)
	fh := float64(h)

	driftScale := p.DriftFraction * fh * 0.5
	baseY := make([]float64, n)
	cum := 0.0
	for i := range baseY {
		cum += rng.NormFloat64() * driftScale
		baseY[i] = clampF(fh/2+cum, fh*0.2, fh*0.8)
	}

	amps := make([]float64, n)
	for i := range amps {
		amps[i] = (p.AmpLow + rng.Float64()*(p.AmpHigh-p.AmpLow)) * fh
	}
	phase := rng.Float64() * 2 * math.Pi

	ctrlY := make([]float64, n)
	phases := linspace(0, 2*math.Pi, n)
	for i := range ctrlY {
		ctrlY[i] = clampF(baseY[i]+math.Sin(phases[i]+phase)*amps[i], 0, fh-1)
	}
	return sampleCurve(ctrlX, ctrlY, w)
}

// meanderChannel rasterizes the belt with a bankfull width that varies
// along the path: interpolated through fixed anchors plus per-column
// jitter, clamped to the configured range.
func meanderChannel(center []float64, p MeanderParams, rng *rand.Rand, h, w int) *raster.Grid {
	anchorsX := []float64{0.0, 0.3, 0.7, 1.0}
	anchorsY := []float64{p.ChannelWidthMin, p.ChannelWidthMax, p.ChannelWidthMin * 1.1, p.ChannelWidthMax * 0.9}
	jitter := (p.ChannelWidthMax - p.ChannelWidthMin) * 0.1
	widths := make([]float64, w)
	for x := 0; x < w; x++ {
		t := 0.0
		if w > 1 {
			t = float64(x) / float64(w-1)
		}
		widths[x] = clampF(interp(t, anchorsX, anchorsY)+rng.NormFloat64()*jitter, p.ChannelWidthMin, p.ChannelWidthMax)
	}
	return centerlineField(center, h, w, widths)
}

// leveeMaskThreshold is the field level at which levee intensity counts as
// levee facies.
const leveeMaskThreshold = 0.15

// meanderLevees builds the levee rim as a dilation of the channel blurred
// into a soft shoulder, minus the channel itself. The one-pixel dilation
// ring is forced above the mask cut level so the rim fully encloses the
// channel.
func meanderLevees(channel *raster.Mask, iterations int) *raster.Grid {
	iterations = max(1, iterations)
	dilated := raster.Dilate(channel, iterations)
	blurred := raster.GaussianBlur(dilated.Float(), math.Max(1.0, float64(iterations)/2.0))
	field := raster.MustGrid(channel.H, channel.W)
	for i := range field.Data {
		v := blurred.Data[i]
		if channel.Bits[i] {
			v = 0
		}
		field.Data[i] = clampF(v, 0, 1)
	}
	ring := raster.Dilate(channel, 1)
	ring.Subtract(channel)
	for i := range field.Data {
		if ring.Bits[i] && field.Data[i] < leveeMaskThreshold {
			field.Data[i] = leveeMaskThreshold
		}
	}
	return field
}

// scrollBars applies cosine banding keyed to distance from the channel
// with period lambda, restricted to the channel belt.
func scrollBars(channel *raster.Grid, channelMask *raster.Mask, lambdaPx float64) *raster.Grid {
	out := raster.MustGrid(channel.H, channel.W)
	if lambdaPx <= 0 {
		return out
	}
	dist := raster.DistanceToMask(channelMask)
	for i := range out.Data {
		if channel.Data[i] < 0.2 {
			continue
		}
		band := 0.5 * (math.Cos(2*math.Pi*dist.Data[i]/math.Max(lambdaPx, 1)) + 1)
		out.Data[i] = band
	}
	return out
}

// neckCutoffOxbows scans the centerline for non-adjacent self-approaches
// within the neck tolerance (a meander loop about to be cut off) and
// stamps an abandoned-channel scar near each detected neck with the
// configured probability.
func neckCutoffOxbows(center []float64, p MeanderParams, rng *rand.Rand, h, w int) (*raster.Grid, int) {
	mask := raster.MustMask(h, w)
	count := 0
	if p.OxbowProbability > 0 {
		stride := max(4, w/64)
		minSep := w / 16
		maxSep := w / 6
		lastStamp := -w
		for i := 0; i < w; i += stride {
			for sep := minSep; sep <= maxSep; sep += stride {
				j := i + sep
				if j >= w {
					break
				}
				if math.Abs(center[i]-center[j]) > p.NeckTolerancePx {
					continue
				}
				// Require an actual loop between the columns, not a straight reach.
				mid := (i + j) / 2
				if math.Abs(center[mid]-center[i]) < p.NeckTolerancePx*1.5 {
					continue
				}
				if mid-lastStamp < maxSep {
					continue
				}
				if rng.Float64() > p.OxbowProbability {
					continue
				}
				row := int(clampF(center[mid]+rng.NormFloat64()*float64(h)*0.05, 0, float64(h-1)))
				radius := math.Max(4, 6+rng.Float64()*(0.08*float64(min(h, w))-6))
				stampCircle(mask, row, mid, radius)
				lastStamp = mid
				count++
				break
			}
		}
	}
	return mask.Float(), count
}
