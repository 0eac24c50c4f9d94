package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCenterlineField_ZeroWidthPaintsNothing(t *testing.T) {
	t.Parallel()

	h, w := 32, 48
	center := make([]float64, w)
	widths := make([]float64, w)
	for x := 0; x < w; x++ {
		// Integral centers sit exactly on a raster row, the worst case for
		// a degenerate half-width of zero.
		center[x] = 2
		if x < 16 {
			widths[x] = 5
		}
	}

	g := centerlineField(center, h, w, widths)
	for x := 0; x < 16; x++ {
		assert.Equal(t, 1.0, g.At(2, x), "column %d inside the channel run", x)
	}
	for x := 16; x < w; x++ {
		for y := 0; y < h; y++ {
			assert.Zero(t, g.At(y, x), "zero-width column %d must stay empty", x)
		}
	}
}
