package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-data/stratigen/internal/raster"
)

// Thread amplitudes are bounded so adjacent threads stay separate; with
// chutes disabled the channel mask must hold exactly thread_count
// connected components.
func TestBraided_ThreadsStayDistinct(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleBraided)
	cfg.Height = 256
	cfg.Width = 320
	cfg.Seed = 7
	cfg.Braided.ThreadCount = 5
	cfg.Braided.MeanThreadWidth = 20
	cfg.Braided.ChuteFrequency = 0

	r, err := Generate(cfg)
	require.NoError(t, err)

	labels := raster.LabelComponents(r.Masks["channel"])
	assert.Equal(t, 5, labels.Count)
	assert.True(t, r.Masks["chute"].Empty())
}

func TestBraided_BarSpacingTracksWidth(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleBraided)
	cfg.Height = 256
	cfg.Width = 320
	r, err := Generate(cfg)
	require.NoError(t, err)

	spacing, ok := r.Meta["bar_spacing_px"].(float64)
	require.True(t, ok)
	width, ok := r.Meta["mean_thread_width"].(float64)
	require.True(t, ok)

	// Per-thread spacing is factor times thread width, so the means keep
	// the same ratio.
	assert.InDelta(t, cfg.Braided.BarSpacingFactor, spacing/width, 1e-6)
	assert.False(t, r.Masks["bar"].Empty())
}

func TestBraided_TooManyThreadsForBelt(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleBraided)
	cfg.Height = 96 // belt span 57.6 px cannot hold 5 wide threads
	cfg.Width = 256
	cfg.Braided.ThreadCount = 5
	cfg.Braided.MeanThreadWidth = 24

	_, err := Generate(cfg)
	assert.ErrorIs(t, err, ErrGeometry)
}
