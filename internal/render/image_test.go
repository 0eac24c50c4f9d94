package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-data/stratigen/internal/raster"
	"github.com/strata-data/stratigen/internal/synth"
)

func TestPalette_CoversEverySchema(t *testing.T) {
	t.Parallel()

	styles := []synth.Style{
		synth.StyleMeandering, synth.StyleBraided, synth.StyleAnastomosing,
		synth.StyleBarchan, synth.StyleLinearDune, synth.StyleTransverseDune,
		synth.StyleTideEstuary, synth.StyleWaveEstuary, synth.StyleMixedEstuary,
	}
	for _, style := range styles {
		for _, facies := range synth.FaciesSchema(style) {
			_, ok := Palette(style, facies)
			assert.True(t, ok, "%s/%s has no palette color", style, facies)
		}
	}
	_, ok := Palette(synth.StyleMeandering, "mudflat")
	assert.False(t, ok)
}

func TestEncodeGrayPNG(t *testing.T) {
	t.Parallel()

	g := raster.MustGrid(12, 20)
	g.Set(0, 0, 1)
	g.Set(1, 1, -4) // clipped to black

	var buf bytes.Buffer
	require.NoError(t, EncodeGrayPNG(&buf, g))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 20, bounds.Dx())
	assert.Equal(t, 12, bounds.Dy())

	r, _, _, _ := img.At(0, 0).RGBA()
	assert.NotZero(t, r)
	r, _, _, _ = img.At(1, 1).RGBA()
	assert.Zero(t, r)
}

func TestEncodeFaciesPNG(t *testing.T) {
	t.Parallel()

	h, w := 16, 24
	channel := raster.MustMask(h, w)
	channel.Set(3, 3, true)
	masks := map[string]*raster.Mask{"channel": channel}

	var buf bytes.Buffer
	require.NoError(t, EncodeFaciesPNG(&buf, synth.StyleMeandering, masks, h, w))

	img, err := png.Decode(&buf)
	require.NoError(t, err)

	want, ok := Palette(synth.StyleMeandering, "channel")
	require.True(t, ok)
	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(want.R), r>>8)
	assert.Equal(t, uint32(want.G), g>>8)
	assert.Equal(t, uint32(want.B), b>>8)

	// Unclaimed cells keep the background.
	r, g, b, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0x20), r>>8)
	assert.Equal(t, uint32(0x20), g>>8)
	assert.Equal(t, uint32(0x24), b>>8)
}

func TestEncodeFaciesPNG_ShapeMismatch(t *testing.T) {
	t.Parallel()

	masks := map[string]*raster.Mask{"channel": raster.MustMask(8, 8)}
	var buf bytes.Buffer
	err := EncodeFaciesPNG(&buf, synth.StyleMeandering, masks, 16, 16)
	assert.Error(t, err)
}

func TestSaveRealization(t *testing.T) {
	t.Parallel()

	cfg := synth.DefaultConfig(synth.StyleBarchan)
	cfg.Height = 96
	cfg.Width = 128
	r, err := synth.Generate(cfg)
	require.NoError(t, err)

	prefix := filepath.Join(t.TempDir(), "barchan_42")
	require.NoError(t, SaveRealization(prefix, cfg.Style, r))

	for _, suffix := range []string{"_gray.png", "_facies.png"} {
		f, err := os.Open(prefix + suffix)
		require.NoError(t, err)
		_, err = png.Decode(f)
		f.Close()
		assert.NoError(t, err, suffix)
	}
}
