package metrics

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/inkbridge/inkbridge/ink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferScenario(t *testing.T) {
	r := Transfer(750000)
	assert.Equal(t, 1000000, r.TheoreticalTextSize)
	assert.Equal(t, 250000, r.SavingsBytes)
	assert.InDelta(t, 25.0, r.SavingsPercent, 1e-9)
}

func TestBase64SizeRoundsUp(t *testing.T) {
	assert.Equal(t, 0, Base64Size(0))
	assert.Equal(t, 2, Base64Size(1))
	assert.Equal(t, 3, Base64Size(2))
	assert.Equal(t, 4, Base64Size(3))
	assert.Equal(t, 6, Base64Size(4))
}

func TestTransferSavingsAtLeastQuarter(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 1000; i++ {
		n := 1 + rng.Intn(10_000_000)
		r := Transfer(n)
		ratio := float64(r.TheoreticalTextSize-r.BinarySize) / float64(r.TheoreticalTextSize)
		require.GreaterOrEqual(t, ratio, 0.25-1e-12, "n=%d", n)
		require.Greater(t, r.TheoreticalTextSize, r.BinarySize)
	}
}

func TestTransferEmpty(t *testing.T) {
	r := Transfer(0)
	assert.Equal(t, TransferReport{}, r)
	assert.Equal(t, TransferReport{}, Transfer(-5))
}

func TestDimensions(t *testing.T) {
	r := Dimensions(ink.Size{Width: 100, Height: 100}, ink.Size{Width: 50, Height: 50}, ink.Size{Width: 50, Height: 50})
	assert.InDelta(t, 75.0, r.ReductionPercent, 1e-9)

	r = Dimensions(ink.Size{}, ink.Size{Width: 10, Height: 10}, ink.Size{Width: 10, Height: 10})
	assert.Equal(t, 0.0, r.ReductionPercent)
}

func TestExportJSONShape(t *testing.T) {
	e := New(ink.Size{Width: 2048, Height: 2732}, ink.Size{Width: 114, Height: 94}, ink.Size{Width: 114, Height: 94}, 3000)
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"originalSize", "croppedSize", "finalSize", "reductionPercent", "binarySize", "theoreticalTextSize", "savingsPercent"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, map[string]any{"w": 114.0, "h": 94.0}, m["finalSize"])
	assert.Contains(t, e.String(), "3000 bytes binary vs 4000 base64")
}
