package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/strata-data/stratigen/internal/raster"
)

// Facies mask names per style. Each schema is a closed set: Generate
// always returns exactly these masks for the style, and a schema facies is
// empty only when the parameter combination makes it geometrically
// impossible (e.g. zero oxbow probability).
var faciesSchemas = map[Style][]string{
	StyleMeandering:     {"channel", "levee", "scroll_bar", "oxbow", "floodplain"},
	StyleBraided:        {"channel", "bar", "chute", "floodplain"},
	StyleAnastomosing:   {"branch_channel", "levee", "marsh", "fan", "overbank", "wetland_water"},
	StyleBarchan:        {"crest", "slipface", "stoss", "interdune"},
	StyleLinearDune:     {"crest", "slipface", "stoss", "interdune"},
	StyleTransverseDune: {"crest", "slipface", "stoss", "interdune"},
	StyleTideEstuary:    {"channel", "bar", "mudflat", "shoreline"},
	StyleWaveEstuary:    {"channel", "bar", "mudflat", "shoreline"},
	StyleMixedEstuary:   {"channel", "bar", "mudflat", "shoreline"},
}

// FaciesSchema returns the declared facies names for a style, in layering
// order (base first). Callers can rely on presence of every name in the
// generated mask set.
func FaciesSchema(style Style) []string {
	schema := faciesSchemas[style]
	out := make([]string, len(schema))
	copy(out, schema)
	return out
}

// layer couples one facies with its intensity field. Fields hold values in
// [0, 1]; the mask is the field cut at threshold, and weight is the base
// grayscale intensity the facies contributes.
type layer struct {
	facies    string
	field     *raster.Grid
	weight    float64
	threshold float64
}

// primitives is the uniform output of every style geometry builder and the
// input of the compositor.
type primitives struct {
	style      Style
	layers     []layer // layering order, base first
	meta       Metadata
	noiseScale float64
}

// compose blends primitive geometry into the grayscale analog and cuts the
// boolean facies masks. Layers are applied in order with the field value as
// alpha, so later facies overwrite earlier ones in the raster while every
// mask stays independently queryable. Noise comes from the derived stream,
// never an unseeded source.
func compose(p *primitives, rng *rand.Rand) (*raster.Grid, map[string]*raster.Mask, error) {
	if len(p.layers) == 0 {
		return nil, nil, fmt.Errorf("%w: style %s produced no layers", ErrGeometry, p.style)
	}
	h, w := p.layers[0].field.H, p.layers[0].field.W
	gray := raster.MustGrid(h, w)
	masks := make(map[string]*raster.Mask, len(p.layers))

	for _, ly := range p.layers {
		if ly.field.H != h || ly.field.W != w {
			return nil, nil, fmt.Errorf("%w: facies %q field shape %dx%d does not match grid %dx%d",
				ErrGeometry, ly.facies, ly.field.H, ly.field.W, h, w)
		}
		for i, f := range ly.field.Data {
			if f <= 0 {
				continue
			}
			a := f
			if a > 1 {
				a = 1
			}
			gray.Data[i] = gray.Data[i]*(1-a) + ly.weight*a
		}
		masks[ly.facies] = ly.field.Threshold(ly.threshold)
	}

	if p.noiseScale > 0 {
		noise := raster.WhiteNoise(h, w, p.noiseScale, rng)
		gray.AddScaled(noise, 1)
	}
	gray.Clamp(0, 4)
	gray.Normalize()

	// The schema contract: every declared facies must be present.
	for _, name := range faciesSchemas[p.style] {
		if _, ok := masks[name]; !ok {
			return nil, nil, fmt.Errorf("%w: builder for %s omitted facies %q", ErrGeometry, p.style, name)
		}
	}
	return gray, masks, nil
}
