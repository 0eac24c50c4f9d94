package raster

import (
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
)

// Perlin generator tuning. Alpha controls smoothing, beta the frequency
// step between octaves.
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// NoiseField returns an H×W Perlin noise grid with values in [0, 1].
// Scale is the number of noise periods across the longer grid axis; the
// generator is seeded from the supplied stream so fields are reproducible
// per derived RNG.
func NoiseField(h, w int, scale float64, rng *rand.Rand) *Grid {
	if scale <= 0 {
		scale = 1
	}
	p := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, int64(rng.Uint64()))
	g := MustGrid(h, w)
	longAxis := float64(max(h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := float64(x) / longAxis * scale
			ny := float64(y) / longAxis * scale
			g.Set(y, x, (p.Noise2D(nx, ny)+1)/2)
		}
	}
	return g
}

// WhiteNoise returns an H×W grid of normal draws with the given standard
// deviation, consumed from the supplied stream in row-major order.
func WhiteNoise(h, w int, stddev float64, rng *rand.Rand) *Grid {
	g := MustGrid(h, w)
	for i := range g.Data {
		g.Data[i] = rng.NormFloat64() * stddev
	}
	return g
}
