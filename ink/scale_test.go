package ink

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitNoop(t *testing.T) {
	r := NewRect(68, 58, 114, 94)
	res := Fit(r, DefaultMaxDimension)
	assert.Equal(t, 1.0, res.Scale)
	assert.Equal(t, Size{Width: 114, Height: 94}, res.Size)
	assert.Equal(t, r, res.Original)
	assert.False(t, res.NeedsScaling())
}

func TestFitExactlyAtLimit(t *testing.T) {
	res := Fit(NewRect(0, 0, 3200, 3200), DefaultMaxDimension)
	assert.Equal(t, 1.0, res.Scale)
}

func TestFitDownscales(t *testing.T) {
	res := Fit(NewRect(0, 0, 5000, 4000), DefaultMaxDimension)
	assert.InDelta(t, 0.64, res.Scale, 1e-12)
	assert.InDelta(t, 3200, res.Size.Width, 1e-9)
	assert.InDelta(t, 2560, res.Size.Height, 1e-9)

	w, h := res.PixelSize(DefaultMaxDimension)
	assert.Equal(t, 3200, w)
	assert.Equal(t, 2560, h)
}

func TestFitCeilingAndAspect(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		r := NewRect(0, 0, 0.5+rng.Float64()*20000, 0.5+rng.Float64()*20000)
		max := 1 + rng.Float64()*5000
		res := Fit(r, max)

		assert.LessOrEqual(t, res.Size.Width, max+1e-9)
		assert.LessOrEqual(t, res.Size.Height, max+1e-9)
		assert.Greater(t, res.Scale, 0.0)
		if res.NeedsScaling() {
			assert.InDelta(t, r.Width/r.Height, res.Size.Width/res.Size.Height, 1e-3*math.Max(1, r.Width/r.Height))
			assert.InDelta(t, r.Width*res.Scale, res.Size.Width, 1e-6)
			assert.InDelta(t, r.Height*res.Scale, res.Size.Height, 1e-6)
		} else {
			assert.Equal(t, r.Size(), res.Size)
		}
	}
}

func TestFitDegenerateInput(t *testing.T) {
	res := Fit(NewRect(0, 0, 0, -3), 10)
	assert.False(t, math.IsNaN(res.Scale))
	assert.Greater(t, res.Scale, 0.0)
	assert.LessOrEqual(t, res.Size.Width, 10.0)
	assert.LessOrEqual(t, res.Size.Height, 10.0)

	res = Fit(NewRect(0, 0, math.Inf(1), 100), 10)
	assert.Greater(t, res.Scale, 0.0)
	assert.False(t, math.IsInf(res.Size.Width, 0))
}

func TestFitWithoutLimit(t *testing.T) {
	r := NewRect(0, 0, 9000, 100)
	assert.Equal(t, 1.0, Fit(r, 0).Scale)
	assert.Equal(t, 1.0, Fit(r, math.NaN()).Scale)
	assert.Equal(t, 1.0, Fit(r, math.Inf(1)).Scale)
}

func TestPixelSizeFloor(t *testing.T) {
	res := Fit(NewRect(0, 0, 10000, 1), 100)
	w, h := res.PixelSize(100)
	assert.Equal(t, 100, w)
	assert.Equal(t, 1, h)
}
