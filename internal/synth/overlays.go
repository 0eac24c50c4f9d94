package synth

import (
	"math"
	"math/rand/v2"

	"github.com/strata-data/stratigen/internal/raster"
)

// Overlay application order is fixed per style (cross-bedding and
// cementation interact visually, so the order is part of the contract):
// channel fill, cross-bedding, ripples, lateral accretion, fining-upward,
// scour stamps, cementation tint, then mineralogy metadata.
//
// Overlays modulate the intensity raster inside existing facies masks and
// emit metadata. They never resize the grid, rename masks, or introduce
// facies: this is the single permitted post-composition mutation point.
func applyOverlays(gray *raster.Grid, masks map[string]*raster.Mask, style Style, p OverlayParams, rng *rand.Rand) Metadata {
	channel := firstMask(masks, "channel", "branch_channel", "crest")
	plain := firstMask(masks, "overbank", "floodplain", "interdune", "mudflat")

	meta := Metadata{}
	if channel != nil && !channel.Empty() {
		channelFill(gray, channel, p.ChannelFillStrength, rng)
		crossBedding(gray, channel, style, p.CrossBedGain, rng)
		lateralAccretion(gray, channel, rng)
		finingUpward(gray, channel)
		scourStamps(gray, channel, p.ScourCount, rng)
		meta["overlay_channel_fill"] = p.ChannelFillStrength
	}
	if plain != nil && !plain.Empty() {
		rippleMarks(gray, plain, p.RippleGain, rng)
	}
	if p.CementationTint != 0 {
		for i := range gray.Data {
			gray.Data[i] = clampF(gray.Data[i]+p.CementationTint, 0, 1)
		}
		meta["overlay_cementation_tint"] = p.CementationTint
	}
	for k, v := range mineralogyMetadata(masks) {
		meta[k] = v
	}
	gray.Clamp(0, 1)
	return meta
}

// channelFill blends a sandstone fill texture into the channel: distance
// shading toward the banks plus smoothed noise.
func channelFill(gray *raster.Grid, channel *raster.Mask, strength float64, rng *rand.Rand) {
	if strength <= 0 {
		return
	}
	noise := raster.GaussianBlur(raster.WhiteNoise(gray.H, gray.W, 1, rng), 5)
	noise.Normalize()
	depth := raster.DistanceToMask(channel.Complement())
	_, depthMax := depth.MinMax()
	for i := range gray.Data {
		if !channel.Bits[i] {
			continue
		}
		d := depth.Data[i] / (depthMax + 1e-5)
		fill := clampF((1-d)*0.7+noise.Data[i]*0.3, 0, 1)
		gray.Data[i] = clampF(gray.Data[i]*(1-strength)+fill*strength, 0, 1)
	}
}

// crossBedding adds oriented bands inside the channel fill. Braided belts
// get trough-style higher-frequency bands, other styles planar bedding.
func crossBedding(gray *raster.Grid, channel *raster.Mask, style Style, gain float64, rng *rand.Rand) {
	if gain <= 0 {
		return
	}
	frequency := 0.25
	if style == StyleBraided {
		frequency = 0.4
	}
	orientation := (rng.Float64()*2 - 1) * math.Pi / 4
	phase := rng.Float64() * 2 * math.Pi
	cosO, sinO := math.Cos(orientation), math.Sin(orientation)
	for y := 0; y < gray.H; y++ {
		for x := 0; x < gray.W; x++ {
			if !channel.At(y, x) {
				continue
			}
			band := 0.5 * (1 + math.Sin(frequency*(float64(x)*cosO+float64(y)*sinO)*2*math.Pi+phase))
			v := gray.At(y, x) + band*gain
			gray.Set(y, x, clampF(v, 0, 1))
		}
	}
}

// rippleMarks writes a fine oblique wave texture onto overbank areas.
func rippleMarks(gray *raster.Grid, plain *raster.Mask, gain float64, rng *rand.Rand) {
	if gain <= 0 {
		return
	}
	wavelength := 8 + rng.Float64()*6
	field := raster.MustGrid(gray.H, gray.W)
	for y := 0; y < gray.H; y++ {
		for x := 0; x < gray.W; x++ {
			field.Set(y, x, 0.5*(1+math.Sin((float64(y)/wavelength+float64(x)/(wavelength*0.7))*2*math.Pi)))
		}
	}
	field = raster.GaussianBlur(field, 1)
	for i := range gray.Data {
		if plain.Bits[i] {
			gray.Data[i] = clampF(gray.Data[i]+field.Data[i]*gain, 0, 1)
		}
	}
}

// lateralAccretion approximates accretion surfaces as gradient bands of
// the channel-distance field with slight jitter.
func lateralAccretion(gray *raster.Grid, channel *raster.Mask, rng *rand.Rand) {
	dist := raster.DistanceToMask(channel)
	_, distMax := dist.MinMax()
	band := raster.MustGrid(gray.H, gray.W)
	for i := range band.Data {
		band.Data[i] = clampF(1-dist.Data[i]/(distMax+1e-5), 0, 1)
	}
	grad := raster.SobelMagnitude(band)
	for i := range gray.Data {
		if !channel.Bits[i] {
			continue
		}
		jitter := rng.NormFloat64() * 0.02
		gray.Data[i] = clampF(gray.Data[i]+grad.Data[i]*0.05+jitter, 0, 1)
	}
}

// finingUpward darkens channel fill toward the banks, encoding the upward
// (bank-ward in plan view) grain-size decrease.
func finingUpward(gray *raster.Grid, channel *raster.Mask) {
	depth := raster.DistanceToMask(channel.Complement())
	_, depthMax := depth.MinMax()
	if depthMax <= 0 {
		return
	}
	for i := range gray.Data {
		if !channel.Bits[i] {
			continue
		}
		d := depth.Data[i] / depthMax // 1 at channel axis, 0 at banks
		gray.Data[i] = clampF(gray.Data[i]*(0.9+0.2*d), 0, 1)
	}
}

// scourStamps cuts a few darker elliptical scours into the channel floor.
func scourStamps(gray *raster.Grid, channel *raster.Mask, count int, rng *rand.Rand) {
	if count <= 0 {
		return
	}
	var cells []int
	for i, b := range channel.Bits {
		if b {
			cells = append(cells, i)
		}
	}
	if len(cells) == 0 {
		return
	}
	for n := 0; n < count; n++ {
		idx := cells[rng.IntN(len(cells))]
		row, col := idx/gray.W, idx%gray.W
		ry := 2 + rng.Float64()*3
		rx := 4 + rng.Float64()*8
		y0, y1 := max(0, row-int(ry)), min(gray.H-1, row+int(ry))
		x0, x1 := max(0, col-int(rx)), min(gray.W-1, col+int(rx))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				dy := (float64(y) - float64(row)) / ry
				dx := (float64(x) - float64(col)) / rx
				if dy*dy+dx*dx <= 1 && channel.At(y, x) {
					gray.Set(y, x, clampF(gray.At(y, x)*0.75, 0, 1))
				}
			}
		}
	}
}

// mineralogyMetadata derives a coarse mineral mix and diagenetic
// signature from the relative facies budget.
func mineralogyMetadata(masks map[string]*raster.Mask) Metadata {
	channelFrac := maskFraction(masks, "channel", "branch_channel", "crest")
	plainFrac := maskFraction(masks, "overbank", "floodplain", "interdune", "mudflat")
	marshFrac := maskFraction(masks, "marsh")
	total := channelFrac + plainFrac + marshFrac + 1e-6

	feldspar := clampF(channelFrac/total, 0.2, 0.7)
	clay := clampF((plainFrac+marshFrac)/total*0.5, 0.1, 0.6)
	quartz := math.Max(0, 1-feldspar-clay)
	norm := feldspar + clay + quartz + 1e-9

	cement := "calcite"
	if marshFrac > 0.2 {
		cement = "kaolinite"
	}
	return Metadata{
		"mineral_feldspar": feldspar / norm,
		"mineral_quartz":   quartz / norm,
		"mineral_clay":     clay / norm,
		"cement_signature": cement,
		"mud_clasts":       plainFrac > 0.1,
	}
}

func firstMask(masks map[string]*raster.Mask, names ...string) *raster.Mask {
	for _, name := range names {
		if m, ok := masks[name]; ok {
			return m
		}
	}
	return nil
}

func maskFraction(masks map[string]*raster.Mask, names ...string) float64 {
	if m := firstMask(masks, names...); m != nil {
		return m.Fraction()
	}
	return 0
}
