package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_RejectsBadShape(t *testing.T) {
	t.Parallel()

	_, err := NewGrid(0, 10)
	assert.Error(t, err)
	_, err = NewGrid(10, -1)
	assert.Error(t, err)

	g, err := NewGrid(4, 6)
	require.NoError(t, err)
	assert.Equal(t, 24, len(g.Data))
}

func TestGrid_AtSetClone(t *testing.T) {
	t.Parallel()

	g := MustGrid(3, 3)
	g.Set(1, 2, 7.5)
	assert.Equal(t, 7.5, g.At(1, 2))

	c := g.Clone()
	c.Set(1, 2, 0)
	assert.Equal(t, 7.5, g.At(1, 2), "clone must not share backing storage")
}

func TestGrid_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("spreads to unit range", func(t *testing.T) {
		t.Parallel()
		g := MustGrid(2, 2)
		copy(g.Data, []float64{2, 4, 6, 10})
		g.Normalize()
		lo, hi := g.MinMax()
		assert.InDelta(t, 0, lo, 1e-9)
		assert.InDelta(t, 1, hi, 1e-9)
	})

	t.Run("constant grid collapses to zeros", func(t *testing.T) {
		t.Parallel()
		g := MustGrid(2, 2)
		g.Fill(3)
		g.Normalize()
		for _, v := range g.Data {
			assert.Equal(t, 0.0, v)
		}
	})
}

func TestGrid_Quantile(t *testing.T) {
	t.Parallel()

	g := MustGrid(1, 5)
	copy(g.Data, []float64{5, 1, 3, 2, 4})
	assert.Equal(t, 1.0, g.Quantile(0))
	assert.Equal(t, 5.0, g.Quantile(1))
	assert.Equal(t, 3.0, g.Quantile(0.5))
}

func TestGrid_MeanVariance(t *testing.T) {
	t.Parallel()

	g := MustGrid(1, 4)
	copy(g.Data, []float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, g.Mean(), 1e-12)
	assert.InDelta(t, 1.25, g.Variance(), 1e-12)

	g.Fill(2)
	assert.Equal(t, 0.0, g.Variance())
}

func TestGrid_Threshold(t *testing.T) {
	t.Parallel()

	g := MustGrid(1, 4)
	copy(g.Data, []float64{0.1, 0.5, 0.6, 0.9})
	m := g.Threshold(0.5)
	assert.Equal(t, []bool{false, true, true, true}, m.Bits)
}

func TestMask_Ops(t *testing.T) {
	t.Parallel()

	a := MustMask(2, 2)
	a.Set(0, 0, true)
	a.Set(1, 1, true)
	b := MustMask(2, 2)
	b.Set(0, 1, true)
	b.Set(1, 1, true)

	u := a.Clone()
	u.Union(b)
	assert.Equal(t, 3, u.Count())

	s := a.Clone()
	s.Subtract(b)
	assert.Equal(t, 1, s.Count())
	assert.True(t, s.At(0, 0))

	c := a.Complement()
	assert.Equal(t, 2, c.Count())
	assert.InDelta(t, 0.5, a.Fraction(), 1e-12)
	assert.False(t, a.Empty())
	assert.True(t, MustMask(2, 2).Empty())
}

func TestMask_Float(t *testing.T) {
	t.Parallel()

	m := MustMask(1, 3)
	m.Set(0, 1, true)
	g := m.Float()
	assert.Equal(t, []float64{0, 1, 0}, g.Data)
}

func TestCoords01(t *testing.T) {
	t.Parallel()

	yy, xx, err := Coords01(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, yy.At(0, 0))
	assert.Equal(t, 1.0, yy.At(2, 4))
	assert.Equal(t, 0.5, yy.At(1, 0))
	assert.Equal(t, 1.0, xx.At(0, 4))
	assert.Equal(t, 0.25, xx.At(2, 1))
}

func TestBlendGrids(t *testing.T) {
	t.Parallel()

	a := MustGrid(1, 2)
	a.Fill(0.2)
	b := MustGrid(1, 2)
	b.Fill(0.6)

	out, err := BlendGrids([]*Grid{a, b}, []float64{0.25, 0.75})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.At(0, 0), 1e-12)

	_, err = BlendGrids([]*Grid{a}, []float64{1, 2})
	assert.Error(t, err)
}
