package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstuary_DominanceMetadata(t *testing.T) {
	t.Parallel()

	cases := []struct {
		style Style
		want  float64
	}{
		{StyleTideEstuary, 1},
		{StyleWaveEstuary, 0},
		{StyleMixedEstuary, 0.35},
	}
	for _, tc := range cases {
		t.Run(tc.style.String(), func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig(tc.style)
			cfg.Height = 192
			cfg.Width = 256
			cfg.Estuary.Dominance = 0.35
			r, err := Generate(cfg)
			require.NoError(t, err)

			assert.InDelta(t, tc.want, r.Meta["dominance"].(float64), 1e-9)
			assert.Equal(t, "linear", r.Meta["blend"])
		})
	}
}

func TestEstuary_ChannelTapersLandward(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleTideEstuary)
	cfg.Height = 256
	cfg.Width = 320
	r, err := Generate(cfg)
	require.NoError(t, err)

	// The funnel opens at the mouth (left edge): channel columns near the
	// mouth must be wider than columns near the head.
	channel := r.Masks["channel"]
	colCount := func(x0, x1 int) int {
		n := 0
		for y := 0; y < channel.H; y++ {
			for x := x0; x < x1; x++ {
				if channel.At(y, x) {
					n++
				}
			}
		}
		return n
	}
	mouth := colCount(0, channel.W/4)
	head := colCount(3*channel.W/4, channel.W)
	assert.Greater(t, mouth, head)
}

func TestEstuary_MixedBlendsBarCount(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(StyleMixedEstuary)
	cfg.Height = 192
	cfg.Width = 256
	cfg.Estuary.Dominance = 0.5
	r, err := Generate(cfg)
	require.NoError(t, err)

	// δ·tidal + (1-δ)·wave applied to scalar metadata as well: the tidal
	// end member seeds 4 bars at the default prism, the wave one 3.
	barCount := r.Meta["bar_count"].(float64)
	assert.InDelta(t, 3.5, barCount, 1e-9)
}

func TestEstuary_MudflatClaimsBackground(t *testing.T) {
	t.Parallel()

	for _, style := range []Style{StyleTideEstuary, StyleWaveEstuary, StyleMixedEstuary} {
		t.Run(style.String(), func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig(style)
			cfg.Height = 160
			cfg.Width = 192
			r, err := Generate(cfg)
			require.NoError(t, err)

			channel := r.Masks["channel"]
			bar := r.Masks["bar"]
			shoreline := r.Masks["shoreline"]
			mudflat := r.Masks["mudflat"]
			for i := range mudflat.Bits {
				claimed := channel.Bits[i] || bar.Bits[i] || shoreline.Bits[i] || mudflat.Bits[i]
				if !claimed {
					t.Fatalf("cell %d belongs to no estuarine facies", i)
				}
			}
			assert.False(t, mudflat.Empty())
		})
	}
}
