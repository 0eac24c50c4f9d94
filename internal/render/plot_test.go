package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-data/stratigen/internal/raster"
	"github.com/strata-data/stratigen/internal/stats"
)

func TestSaveVariogramPlot(t *testing.T) {
	t.Parallel()

	g := raster.MustGrid(64, 64)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.Set(y, x, float64(x+y)/float64(g.H+g.W))
		}
	}
	vs := stats.Variograms(g, 16)

	path := filepath.Join(t.TempDir(), "variogram.png")
	require.NoError(t, SaveVariogramPlot(path, "test ramp", vs))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
