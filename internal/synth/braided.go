package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/strata-data/stratigen/internal/raster"
)

// Grayscale base intensities for braided facies.
const (
	braidedChannelWeight    = 0.60
	braidedBarWeight        = 0.25
	braidedChuteWeight      = 0.15
	braidedFloodplainWeight = 0.45
)

// thread captures one braided thread's geometry for bar seeding and chute
// routing.
type thread struct {
	center  []float64
	widthPx float64
	ampPx   float64
}

// buildBraided seeds parallel threads across the belt, places mid-channel
// bars at a spacing proportional to thread width, and optionally cuts
// chute channels between threads.
func buildBraided(p BraidedParams, rng *rand.Rand, h, w int) (*primitives, error) {
	threads, err := braidedThreads(p, rng, h, w)
	if err != nil {
		return nil, err
	}

	channel := raster.MustGrid(h, w)
	for _, t := range threads {
		field := centerlineField(t.center, h, w, uniformWidth(w, t.widthPx))
		for i, v := range field.Data {
			if v > channel.Data[i] {
				channel.Data[i] = v
			}
		}
	}

	bars, barSpacing := seedBars(threads, p.BarSpacingFactor, h, w)
	chutes := cutChutes(threads, p.ChuteFrequency, rng, h, w)

	floodplain := raster.MustGrid(h, w)
	for i := range floodplain.Data {
		if channel.Data[i] < 0.5 && bars.Data[i] < 0.5 && chutes.Data[i] < 0.5 {
			floodplain.Data[i] = 1
		}
	}

	meta := Metadata{
		"thread_count":       float64(len(threads)),
		"mean_thread_width":  meanThreadWidth(threads),
		"bar_spacing_px":     barSpacing,
		"bar_spacing_factor": p.BarSpacingFactor,
	}

	return &primitives{
		style: StyleBraided,
		layers: []layer{
			{facies: "floodplain", field: floodplain, weight: braidedFloodplainWeight, threshold: 0.5},
			{facies: "channel", field: channel, weight: braidedChannelWeight, threshold: 0.5},
			{facies: "bar", field: bars, weight: braidedBarWeight, threshold: 0.5},
			{facies: "chute", field: chutes, weight: braidedChuteWeight, threshold: 0.5},
		},
		meta:       meta,
		noiseScale: p.FloodplainNoise,
	}, nil
}

// braidedThreads lays thread_count sinusoidal paths across the belt. Thread
// amplitude is bounded so adjacent threads cannot merge: each thread stays
// a distinct connected component before bar placement.
func braidedThreads(p BraidedParams, rng *rand.Rand, h, w int) ([]thread, error) {
	fh := float64(h)
	beltSpan := fh * 0.6
	rowSpacing := beltSpan / float64(p.ThreadCount-1)
	if rowSpacing <= p.MeanThreadWidth*1.2 {
		return nil, fmt.Errorf("%w: %d threads of mean width %.1f px do not fit a %d px belt",
			ErrGeometry, p.ThreadCount, p.MeanThreadWidth, int(beltSpan))
	}
	// Keep thread envelopes separated by at least two pixels.
	ampMax := math.Max(2, (rowSpacing-p.MeanThreadWidth)/2-2)

	baseRows := linspace(fh*0.2, fh*0.8, p.ThreadCount)
	phases := make([]float64, p.ThreadCount)
	freqs := make([]float64, p.ThreadCount)
	for i := range phases {
		phases[i] = rng.Float64() * 2 * math.Pi
	}
	for i := range freqs {
		freqs[i] = 1 + rng.Float64()
	}

	threads := make([]thread, 0, p.ThreadCount)
	for idx := 0; idx < p.ThreadCount; idx++ {
		amp := math.Min((0.04+rng.Float64()*0.14)*fh, ampMax)
		widthPx := clampF(p.MeanThreadWidth+rng.NormFloat64()*p.MeanThreadWidth*0.2, 12, 28)
		widthPx = math.Min(widthPx, rowSpacing-2*ampMax-2)
		center := make([]float64, w)
		for x := 0; x < w; x++ {
			t := float64(x) / float64(max(w-1, 1))
			center[x] = clampF(baseRows[idx]+amp*math.Sin(freqs[idx]*2*math.Pi*t+phases[idx]), 2, fh-3)
		}
		threads = append(threads, thread{center: center, widthPx: widthPx, ampPx: amp})
	}
	return threads, nil
}

// seedBars drops elliptical mid-channel bars along each thread at a
// spacing of factor times the thread width. Returns the bar field and the
// mean spacing actually used.
func seedBars(threads []thread, factor float64, h, w int) (*raster.Grid, float64) {
	bars := raster.MustGrid(h, w)
	var spacingSum float64
	for _, t := range threads {
		spacing := math.Max(4, factor*t.widthPx)
		spacingSum += spacing
		for col := spacing / 2; col < float64(w); col += spacing {
			c := int(clampF(col, 0, float64(w-1)))
			r := int(clampF(t.center[c], 0, float64(h-1)))
			stampEllipse(bars, r, c, t.widthPx*0.3, spacing*0.3, 1)
		}
	}
	if len(threads) == 0 {
		return bars, 0
	}
	return bars, spacingSum / float64(len(threads))
}

// cutChutes connects random thread pairs with straight cut channels at a
// rate set by the chute frequency.
func cutChutes(threads []thread, frequency float64, rng *rand.Rand, h, w int) *raster.Grid {
	chutes := raster.MustGrid(h, w)
	frequency = clampF(frequency, 0, 1)
	if frequency == 0 || len(threads) == 0 {
		return chutes
	}
	nChutes := max(1, int(frequency*float64(len(threads))*2))
	for n := 0; n < nChutes; n++ {
		startIdx := rng.IntN(len(threads))
		endIdx := (startIdx + 1 + rng.IntN(len(threads)-1)) % len(threads)
		startCol := int(rng.Float64() * float64(w) * 0.3)
		endCol := int(float64(w)*0.7 + rng.Float64()*float64(w)*0.3)
		endCol = min(endCol, w-1)
		widthPx := clampF(threads[startIdx].widthPx*0.4+rng.NormFloat64()*2, 4, 12)

		span := max(2, endCol-startCol)
		r0 := threads[startIdx].center[startCol]
		r1 := threads[endIdx].center[endCol]
		for i := 0; i <= span; i++ {
			col := startCol + i
			if col >= w {
				break
			}
			row := int(r0 + (r1-r0)*float64(i)/float64(span))
			y0 := max(0, row-int(widthPx/2))
			y1 := min(h-1, row+int(widthPx/2))
			x0 := max(0, col-int(widthPx/4))
			x1 := min(w-1, col+int(widthPx/4))
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					chutes.Set(y, x, 1)
				}
			}
		}
	}
	return chutes
}

func meanThreadWidth(threads []thread) float64 {
	if len(threads) == 0 {
		return 0
	}
	var sum float64
	for _, t := range threads {
		sum += t.widthPx
	}
	return sum / float64(len(threads))
}
