package synth

import (
	"math"
	"math/rand/v2"

	"github.com/strata-data/stratigen/internal/raster"
)

// Grayscale base intensities for estuarine facies.
const (
	estuaryChannelWeight   = 0.70
	estuaryBarWeight       = 0.60
	estuaryShorelineWeight = 0.55
	estuaryMudflatWeight   = 0.30
)

// estuaryFields holds the per-facies intensity fields of one estuarine
// end member so the mixed variant can blend them linearly.
type estuaryFields struct {
	channel   *raster.Grid
	bar       *raster.Grid
	mudflat   *raster.Grid
	shoreline *raster.Grid
	barCount  float64
}

// buildEstuarine produces tide-dominated, wave-dominated, or mixed
// estuary geometry. The estuary axis runs along x with the mouth at the
// left edge. The mixed variant blends the two end members linearly by the
// dominance weight δ (1 = fully tidal); the same blend is applied to the
// facies fields and to blended scalar metadata.
func buildEstuarine(style Style, p EstuaryParams, rng *rand.Rand, h, w int) (*primitives, error) {
	var fields estuaryFields
	var dominance float64
	switch style {
	case StyleTideEstuary:
		dominance = 1
		fields = tidalFields(p, rng, h, w)
	case StyleWaveEstuary:
		dominance = 0
		fields = waveFields(p, rng, h, w)
	default:
		dominance = p.Dominance
		// Fixed draw order: tidal end member first, then wave.
		tide := tidalFields(p, rng, h, w)
		wave := waveFields(p, rng, h, w)
		fields = blendEstuary(tide, wave, dominance)
	}

	// Mudflat is the background facies: it claims every cell the other
	// masks leave unclaimed, at full intensity in the quiet water beyond
	// the distance quantile matching the target fraction and muted closer
	// to the channels and bars.
	occupied := fields.channel.Threshold(0.5)
	occupied.Union(fields.bar.Threshold(0.5))
	occupied.Union(fields.shoreline.Threshold(0.5))
	dist := raster.DistanceToMask(occupied)
	mudLevel := dist.Quantile(1 - p.MudflatFraction)
	for i := range fields.mudflat.Data {
		if occupied.Bits[i] {
			continue
		}
		if dist.Data[i] >= mudLevel {
			fields.mudflat.Data[i] = 1
		} else {
			fields.mudflat.Data[i] = 0.6
		}
	}

	meta := Metadata{
		"dominance":   dominance,
		"blend":       "linear",
		"tidal_prism": p.TidalPrism,
		"bar_count":   fields.barCount,
	}

	return &primitives{
		style: style,
		layers: []layer{
			{facies: "mudflat", field: fields.mudflat, weight: estuaryMudflatWeight, threshold: 0.5},
			{facies: "shoreline", field: fields.shoreline, weight: estuaryShorelineWeight, threshold: 0.5},
			{facies: "bar", field: fields.bar, weight: estuaryBarWeight, threshold: 0.5},
			{facies: "channel", field: fields.channel, weight: estuaryChannelWeight, threshold: 0.5},
		},
		meta:       meta,
		noiseScale: 0.05,
	}, nil
}

// tidalFields builds a funnel-shaped main channel with bimodally oriented
// ebb/flood secondary channels and elongate tidal bars sized by the tidal
// prism.
func tidalFields(p EstuaryParams, rng *rand.Rand, h, w int) estuaryFields {
	fh, fw := float64(h), float64(w)
	f := estuaryFields{
		channel:   raster.MustGrid(h, w),
		bar:       raster.MustGrid(h, w),
		mudflat:   raster.MustGrid(h, w),
		shoreline: raster.MustGrid(h, w),
	}

	// Main channel: mildly sinuous centerline, width tapering landward
	// from a mouth width scaled by the tidal prism.
	phase := rng.Float64() * 2 * math.Pi
	amp := fh * 0.06 * (p.Sinuosity - 1) * 4
	mouthWidth := clampF(fh*0.18*p.TidalPrism, 8, fh*0.45)
	center := make([]float64, w)
	widths := make([]float64, w)
	for x := 0; x < w; x++ {
		t := float64(x) / math.Max(fw-1, 1)
		center[x] = clampF(fh/2+amp*math.Sin(2*math.Pi*p.Sinuosity*t+phase), 4, fh-5)
		widths[x] = math.Max(4, mouthWidth*math.Exp(-2.5*t))
	}
	mergeField(f.channel, centerlineField(center, h, w, widths))

	// Secondary ebb/flood channels: alternating positive and negative
	// approach angles off the axis give the bimodal orientation.
	secondary := max(2, int(math.Round(2*p.TidalPrism))+1)
	for i := 0; i < secondary; i++ {
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		angle := (8 + rng.Float64()*17) * math.Pi / 180 * sign
		startRow := center[0] + (rng.Float64()*2-1)*mouthWidth*0.4
		length := int(fw * (0.5 + rng.Float64()*0.3))
		sub := make([]float64, w)
		subW := make([]float64, w)
		for x := 0; x < w; x++ {
			sub[x] = clampF(startRow+math.Tan(angle)*float64(x), 2, fh-3)
			if x < length {
				subW[x] = math.Max(3, mouthWidth*0.25*math.Exp(-2*float64(x)/fw))
			}
		}
		mergeField(f.channel, centerlineField(sub, h, w, subW))
	}

	// Elongate tidal bars aligned with the axis, between the channels.
	barCount := max(1, int(math.Round(4*p.TidalPrism)))
	for i := 0; i < barCount; i++ {
		col := int(rng.Float64() * fw * 0.6)
		row := int(clampF(center[col]+(rng.Float64()*2-1)*mouthWidth*0.8, 2, fh-3))
		rx := (20 + rng.Float64()*20) * p.TidalPrism
		ry := 3 + rng.Float64()*5
		stampEllipse(f.bar, row, col, ry, rx, 1)
	}
	f.barCount = float64(barCount)

	// Shoreline: rim of the funnel envelope.
	envelope := raster.MustMask(h, w)
	for x := 0; x < w; x++ {
		half := widths[x]*1.6 + fh*0.04
		lo := max(0, int(center[x]-half))
		hi := min(h-1, int(center[x]+half))
		for y := lo; y <= hi; y++ {
			envelope.Set(y, x, true)
		}
	}
	rim := raster.Boundary(envelope)
	mergeField(f.shoreline, raster.Dilate(rim, 1).Float())
	return f
}

// waveFields builds a smoothed shoreline whose curvature is bounded by the
// delta-front angle, shore-parallel bars seaward of it, and a single
// narrow inlet channel.
func waveFields(p EstuaryParams, rng *rand.Rand, h, w int) estuaryFields {
	fh, fw := float64(h), float64(w)
	f := estuaryFields{
		channel:   raster.MustGrid(h, w),
		bar:       raster.MustGrid(h, w),
		mudflat:   raster.MustGrid(h, w),
		shoreline: raster.MustGrid(h, w),
	}

	// Shoreline position per row: random walk smoothed until its local
	// slope respects the delta-front angle bound.
	walk := make([]float64, h)
	cum := 0.0
	for y := 0; y < h; y++ {
		cum += rng.NormFloat64() * fw * 0.01
		walk[y] = cum
	}
	sigma := clampF(3/math.Tan(p.DeltaFrontAngleDeg*math.Pi/180), 2, 40)
	smooth := raster.GaussianBlur1D(walk, sigma)
	shoreX := make([]float64, h)
	for y := 0; y < h; y++ {
		shoreX[y] = clampF(fw*0.35+smooth[y], fw*0.15, fw*0.6)
	}

	// Shoreline band and landward mudflat candidates.
	for y := 0; y < h; y++ {
		x0 := max(0, int(shoreX[y])-2)
		x1 := min(w-1, int(shoreX[y])+2)
		for x := x0; x <= x1; x++ {
			f.shoreline.Set(y, x, 1)
		}
	}

	// Shore-parallel bars at fixed offsets seaward of the shoreline.
	barSpacing := clampF(fw*0.06*p.TidalPrism, 8, fw*0.2)
	barCount := 3
	for i := 1; i <= barCount; i++ {
		offset := float64(i) * barSpacing
		for y := 0; y < h; y++ {
			bx := shoreX[y] - offset
			x0 := int(bx - 2)
			x1 := int(bx + 2)
			for x := max(0, x0); x <= min(w-1, x1); x++ {
				f.bar.Set(y, x, 1)
			}
		}
	}
	f.barCount = float64(barCount)

	// One inlet channel crossing the shoreline, mildly sinuous.
	phase := rng.Float64() * 2 * math.Pi
	inletRow := fh * (0.3 + rng.Float64()*0.4)
	amp := fh * 0.04 * (p.Sinuosity - 1) * 4
	center := make([]float64, w)
	for x := 0; x < w; x++ {
		t := float64(x) / math.Max(fw-1, 1)
		center[x] = clampF(inletRow+amp*math.Sin(2*math.Pi*p.Sinuosity*t+phase), 3, fh-4)
	}
	mergeField(f.channel, centerlineField(center, h, w, uniformWidth(w, math.Max(5, fh*0.03))))
	return f
}

// blendEstuary mixes two end members linearly: out = δ*tide + (1-δ)*wave,
// applied identically to every facies field and to blended metadata.
func blendEstuary(tide, wave estuaryFields, delta float64) estuaryFields {
	mix := func(a, b *raster.Grid) *raster.Grid {
		out := raster.MustGrid(a.H, a.W)
		for i := range out.Data {
			out.Data[i] = delta*a.Data[i] + (1-delta)*b.Data[i]
		}
		return out
	}
	return estuaryFields{
		channel:   mix(tide.channel, wave.channel),
		bar:       mix(tide.bar, wave.bar),
		mudflat:   mix(tide.mudflat, wave.mudflat),
		shoreline: mix(tide.shoreline, wave.shoreline),
		barCount:  delta*tide.barCount + (1-delta)*wave.barCount,
	}
}

// mergeField keeps the cellwise maximum of dst and src in dst.
func mergeField(dst, src *raster.Grid) {
	for i, v := range src.Data {
		if v > dst.Data[i] {
			dst.Data[i] = v
		}
	}
}
