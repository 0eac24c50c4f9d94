package synth

import (
	"math"
	"math/rand/v2"

	"github.com/strata-data/stratigen/internal/raster"
)

// Grayscale base intensities for anastomosing facies.
const (
	anastoChannelWeight  = 0.55
	anastoLeveeWeight    = 0.35
	anastoFanWeight      = 0.40
	anastoMarshWeight    = 0.25
	anastoOverbankWeight = 0.20
)

// buildAnastomosing seeds a few long, stable, low-curvature branches with
// narrow levees, a quantile-thresholded marsh, and crevasse fans at levee
// breach points.
func buildAnastomosing(p AnastoParams, rng *rand.Rand, h, w int) (*primitives, error) {
	branches, channel := anastoBranches(p.BranchCount, rng, h, w)
	channelMask := channel.Threshold(0.5)

	levee := narrowLevees(channelMask, p.LeveeWidthPx, p.LeveeHeightScale)
	marsh, overbank, wetland := marshFields(channelMask, p.MarshFraction, rng, h, w)
	breaches := breachPoints(channelMask, rng)
	fan := crevasseFans(breaches, p.FanLengthPx, rng, h, w)

	meta := Metadata{
		"branch_count":     float64(len(branches)),
		"branch_stability": 1.0 / math.Max(float64(len(branches)), 1),
		"breach_count":     float64(len(breaches)),
	}

	return &primitives{
		style: StyleAnastomosing,
		layers: []layer{
			{facies: "overbank", field: overbank, weight: anastoOverbankWeight, threshold: 0.5},
			{facies: "marsh", field: marsh, weight: anastoMarshWeight, threshold: 0.5},
			{facies: "wetland_water", field: wetland, weight: anastoMarshWeight * 0.8, threshold: 0.5},
			{facies: "branch_channel", field: channel, weight: anastoChannelWeight, threshold: 0.5},
			{facies: "levee", field: levee, weight: anastoLeveeWeight, threshold: 0.1},
			{facies: "fan", field: fan, weight: anastoFanWeight, threshold: 0.05},
		},
		meta:       meta,
		noiseScale: p.FloodplainNoise,
	}, nil
}

// anastoBranches builds branch centerlines from smoothed cumulative drift,
// giving long stable paths with low curvature.
func anastoBranches(branchCount int, rng *rand.Rand, h, w int) ([][]float64, *raster.Grid) {
	fh := float64(h)
	baseRows := linspace(fh*0.35, fh*0.65, branchCount)
	combined := raster.MustGrid(h, w)
	branches := make([][]float64, 0, branchCount)
	for _, base := range baseRows {
		drift := make([]float64, w)
		for i := range drift {
			drift[i] = rng.NormFloat64() * fh * 0.01
		}
		smooth := raster.GaussianBlur1D(drift, math.Max(1, float64(w)/80))
		offset := rng.NormFloat64() * fh * 0.01
		center := make([]float64, w)
		cum := 0.0
		for x := 0; x < w; x++ {
			cum += smooth[x]
			center[x] = clampF(base+cum*0.05+offset, 3, fh-3)
		}
		widthPx := 8 + rng.Float64()*6
		field := centerlineField(center, h, w, uniformWidth(w, widthPx))
		for i, v := range field.Data {
			if v > combined.Data[i] {
				combined.Data[i] = v
			}
		}
		branches = append(branches, center)
	}
	return branches, combined
}

// narrowLevees hugs the channels with an exponential distance-decay rim,
// thinner than the meandering levee treatment.
func narrowLevees(channel *raster.Mask, widthPx, heightScale float64) *raster.Grid {
	widthPx = math.Max(widthPx, 1)
	heightScale = clampF(heightScale, 0.2, 1.0)
	dist := raster.DistanceToMask(channel)
	out := raster.MustGrid(channel.H, channel.W)
	for i := range out.Data {
		if channel.Bits[i] {
			continue
		}
		out.Data[i] = clampF(math.Exp(-dist.Data[i]/widthPx)*heightScale-0.2, 0, 1)
	}
	return out
}

// marshFields scores every cell by channel distance plus a gradient/noise
// base and cuts the marsh at the quantile matching the target fraction.
// Overbank is the remaining dry floodplain; wetland water grades the marsh
// by score.
func marshFields(channel *raster.Mask, fraction float64, rng *rand.Rand, h, w int) (marsh, overbank, wetland *raster.Grid) {
	fraction = clampF(fraction, 0.2, 0.7)
	dist := raster.DistanceToMask(channel)
	_, distMax := dist.MinMax()
	noise := raster.NoiseField(h, w, 4, rng)

	score := raster.MustGrid(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fy := float64(y) / float64(max(h-1, 1))
			fx := float64(x) / float64(max(w-1, 1))
			base := 0.4*fy + 0.3*fx + 0.3*noise.At(y, x)
			score.Set(y, x, clampF(dist.At(y, x)/(distMax+1e-5), 0, 1)*0.6+base)
		}
	}
	thresh := score.Quantile(1 - fraction)
	_, scoreMax := score.MinMax()

	marsh = raster.MustGrid(h, w)
	overbank = raster.MustGrid(h, w)
	wetland = raster.MustGrid(h, w)
	for i := range score.Data {
		inChannel := channel.Bits[i]
		isMarsh := score.Data[i] >= thresh && !inChannel
		if isMarsh {
			marsh.Data[i] = 1
			wetland.Data[i] = clampF(score.Data[i]/(scoreMax+1e-5), 0, 1)
		} else if !inChannel {
			overbank.Data[i] = 1
		}
	}
	return marsh, overbank, wetland
}

// breachPoints samples levee-breach candidates from the channel boundary.
func breachPoints(channel *raster.Mask, rng *rand.Rand) [][2]int {
	edge := raster.Boundary(channel)
	var coords [][2]int
	for y := 0; y < edge.H; y++ {
		for x := 0; x < edge.W; x++ {
			if edge.At(y, x) {
				coords = append(coords, [2]int{y, x})
			}
		}
	}
	if len(coords) == 0 {
		return nil
	}
	rng.Shuffle(len(coords), func(i, j int) { coords[i], coords[j] = coords[j], coords[i] })
	count := max(1, min(len(coords), len(coords)/20+1))
	return coords[:count]
}

// crevasseFans emits radial cone deposits at a subset of breach points,
// with length drawn around the configured fan length and intensity
// decaying outward.
func crevasseFans(breaches [][2]int, fanLengthPx float64, rng *rand.Rand, h, w int) *raster.Grid {
	fan := raster.MustGrid(h, w)
	if len(breaches) == 0 {
		return fan
	}
	fanCount := max(1, len(breaches)/5)
	for n := 0; n < fanCount; n++ {
		pt := breaches[rng.IntN(len(breaches))]
		length := clampF(fanLengthPx+rng.NormFloat64()*fanLengthPx*0.15, 10, 80)
		spread := (15 + rng.Float64()*20) * math.Pi / 180
		angle := (rng.Float64()*2 - 1) * math.Pi / 3
		intensity := clampF(0.6+rng.NormFloat64()*0.05, 0.3, 0.9)

		y0 := max(0, pt[0]-int(length))
		y1 := min(h-1, pt[0]+int(length))
		x0 := max(0, pt[1]-int(length))
		x1 := min(w-1, pt[1]+int(length))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				dy := float64(y - pt[0])
				dx := float64(x - pt[1])
				d := math.Hypot(dy, dx)
				if d > length {
					continue
				}
				if math.Abs(angleDiff(math.Atan2(dy, dx), angle)) > spread {
					continue
				}
				v := intensity * clampF(1-d/length, 0, 1)
				if v > fan.At(y, x) {
					fan.Set(y, x, v)
				}
			}
		}
	}
	return fan
}
