// Package render turns grids and facies masks into images and diagnostic
// plots. It sits outside the synthesis core: everything here consumes the
// public grid/mask contracts and never feeds back into generation.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/strata-data/stratigen/internal/raster"
	"github.com/strata-data/stratigen/internal/synth"
)

// palettes maps each style to facies colors, in schema layering order so
// later facies paint over earlier ones.
var palettes = map[synth.Style][]paletteEntry{
	synth.StyleMeandering: {
		{"channel", rgb(0x0f, 0x30, 0x57)},
		{"levee", rgb(0xf2, 0xc3, 0x35)},
		{"scroll_bar", rgb(0xd9, 0x89, 0x43)},
		{"oxbow", rgb(0x9a, 0x6d, 0x38)},
		{"floodplain", rgb(0x6b, 0x70, 0x5c)},
	},
	synth.StyleBraided: {
		{"channel", rgb(0x18, 0x4e, 0x77)},
		{"bar", rgb(0xf4, 0xa2, 0x61)},
		{"chute", rgb(0xc0, 0x6c, 0x84)},
		{"floodplain", rgb(0x6d, 0x68, 0x75)},
	},
	synth.StyleAnastomosing: {
		{"branch_channel", rgb(0x26, 0x46, 0x53)},
		{"levee", rgb(0xa7, 0xc9, 0x57)},
		{"marsh", rgb(0x81, 0xb2, 0x9a)},
		{"fan", rgb(0xe0, 0x7a, 0x5f)},
		{"overbank", rgb(0xb0, 0x89, 0x68)},
		{"wetland_water", rgb(0x3d, 0x5a, 0x80)},
	},
}

// aeolianPalette and estuarinePalette are shared across their style
// variants, which carry identical facies schemas.
var aeolianPalette = []paletteEntry{
	{"crest", rgb(0xd9, 0xae, 0x61)},
	{"slipface", rgb(0xa0, 0x5c, 0x17)},
	{"stoss", rgb(0xf2, 0xcc, 0x8f)},
	{"interdune", rgb(0x6e, 0x6a, 0x5e)},
}

var estuarinePalette = []paletteEntry{
	{"channel", rgb(0x33, 0x5c, 0x67)},
	{"bar", rgb(0xf3, 0xa7, 0x12)},
	{"mudflat", rgb(0x93, 0x82, 0x7f)},
	{"shoreline", rgb(0xf4, 0xd5, 0x8d)},
}

func init() {
	for _, s := range []synth.Style{synth.StyleBarchan, synth.StyleLinearDune, synth.StyleTransverseDune} {
		palettes[s] = aeolianPalette
	}
	for _, s := range []synth.Style{synth.StyleTideEstuary, synth.StyleWaveEstuary, synth.StyleMixedEstuary} {
		palettes[s] = estuarinePalette
	}
}

type paletteEntry struct {
	facies string
	col    color.RGBA
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

// Palette returns the facies color for a style, or a zero color and
// false when the style or facies has no palette entry.
func Palette(style synth.Style, facies string) (color.RGBA, bool) {
	for _, e := range palettes[style] {
		if e.facies == facies {
			return e.col, true
		}
	}
	return color.RGBA{}, false
}

// EncodeGrayPNG writes the grid as an 8-bit grayscale PNG. Values are
// expected in [0, 1]; anything outside is clipped.
func EncodeGrayPNG(w io.Writer, g *raster.Grid) error {
	img := image.NewGray(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := g.At(y, x)
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v*254 + 0.5)})
		}
	}
	return png.Encode(w, img)
}

// EncodeFaciesPNG writes an RGB facies map: each cell gets the color of
// the last facies (in schema layering order) whose mask covers it, over a
// dark background for cells no mask claims.
func EncodeFaciesPNG(w io.Writer, style synth.Style, masks map[string]*raster.Mask, h, wd int) error {
	entries, ok := palettes[style]
	if !ok {
		return fmt.Errorf("render: no palette for style %s", style)
	}
	img := image.NewRGBA(image.Rect(0, 0, wd, h))
	bg := rgb(0x20, 0x20, 0x24)
	for y := 0; y < h; y++ {
		for x := 0; x < wd; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	for _, e := range entries {
		m, ok := masks[e.facies]
		if !ok {
			continue
		}
		if m.H != h || m.W != wd {
			return fmt.Errorf("render: mask %q shape %dx%d does not match image %dx%d", e.facies, m.H, m.W, h, wd)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < wd; x++ {
				if m.At(y, x) {
					img.SetRGBA(x, y, e.col)
				}
			}
		}
	}
	return png.Encode(w, img)
}

// SaveRealization writes the grayscale and facies PNGs of a realization
// next to each other under the given path prefix.
func SaveRealization(prefix string, style synth.Style, r *synth.Realization) error {
	gf, err := os.Create(prefix + "_gray.png")
	if err != nil {
		return err
	}
	defer gf.Close()
	if err := EncodeGrayPNG(gf, r.Grid); err != nil {
		return fmt.Errorf("gray png: %w", err)
	}

	ff, err := os.Create(prefix + "_facies.png")
	if err != nil {
		return err
	}
	defer ff.Close()
	if err := EncodeFaciesPNG(ff, style, r.Masks, r.Grid.H, r.Grid.W); err != nil {
		return fmt.Errorf("facies png: %w", err)
	}
	return nil
}
