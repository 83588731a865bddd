package export

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/visualize"
)

var tabletCanvas = ink.NewRect(0, 0, 2048, 2732)

func stroke(pts ...float64) ink.Stroke {
	var s ink.Stroke
	for i := 0; i+1 < len(pts); i += 2 {
		s.Points = append(s.Points, ink.Point{X: pts[i], Y: pts[i+1]})
	}
	return s
}

func recorder(e *Exporter) *[]Stage {
	var stages []Stage
	e.observe = func(s Stage) { stages = append(stages, s) }
	return &stages
}

func TestExportSmallStroke(t *testing.T) {
	d := ink.Drawing{Strokes: []ink.Stroke{stroke(100, 100, 150, 120, 130, 90)}}

	e := New(DefaultConfig())
	stages := recorder(e)
	res, err := e.Export(d, tabletCanvas, ink.DefaultMaxDimension)
	require.NoError(t, err)

	assert.Equal(t, ink.NewRect(100, 90, 50, 30), res.Bounds)
	assert.Equal(t, ink.NewRect(68, 58, 114, 94), res.Padded)
	assert.Equal(t, ink.NewRect(68, 58, 114, 94), res.Region)
	assert.Equal(t, 1.0, res.Scaling.Scale)
	assert.Equal(t, 114, res.Width)
	assert.Equal(t, 94, res.Height)
	assert.Equal(t, MimeType, res.MimeType)

	assert.Equal(t, []Stage{Received, BoundsComputed, Padded, Clipped, Scaled, Rendered, MetricsComputed, Done}, *stages)

	m := res.Metrics
	assert.Equal(t, ink.Size{Width: 2048, Height: 2732}, m.OriginalSize)
	assert.Equal(t, ink.Size{Width: 114, Height: 94}, m.FinalSize)
	assert.InDelta(t, (1-114.0*94/(2048*2732))*100, m.ReductionPercent, 1e-9)
	assert.Equal(t, len(res.Image), m.BinarySize)
}

func TestExportFullCanvas(t *testing.T) {
	d := ink.Drawing{Strokes: []ink.Stroke{
		stroke(0, 0, 2048, 2732),
		stroke(2048, 0, 0, 2732),
	}}
	res, err := Export(d, tabletCanvas, ink.DefaultMaxDimension)
	require.NoError(t, err)
	assert.Equal(t, ink.NewRect(-32, -32, 2112, 2796), res.Padded)
	assert.Equal(t, tabletCanvas, res.Region)
	assert.Equal(t, 1.0, res.Scaling.Scale)
	assert.Equal(t, 2048, res.Width)
	assert.Equal(t, 2732, res.Height)
	assert.InDelta(t, 0.0, res.Metrics.ReductionPercent, 1e-9)
}

func TestExportDownscalesLargeRegion(t *testing.T) {
	canvas := ink.NewRect(0, 0, 6000, 5000)
	d := ink.Drawing{Strokes: []ink.Stroke{stroke(100, 100, 5036, 4036)}}
	res, err := Export(d, canvas, ink.DefaultMaxDimension)
	require.NoError(t, err)

	assert.Equal(t, ink.NewRect(68, 68, 5000, 4000), res.Region)
	assert.InDelta(t, 0.64, res.Scaling.Scale, 1e-12)
	assert.Equal(t, 3200, res.Width)
	assert.Equal(t, 2560, res.Height)

	cfg, err := png.DecodeConfig(bytes.NewReader(res.Image))
	require.NoError(t, err)
	assert.Equal(t, 3200, cfg.Width)
	assert.Equal(t, 2560, cfg.Height)
}

func TestExportCustomMaxDimension(t *testing.T) {
	d := ink.Drawing{Strokes: []ink.Stroke{stroke(100, 100, 1100, 600)}}
	res, err := Export(d, tabletCanvas, 256)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Width, 256)
	assert.LessOrEqual(t, res.Height, 256)
	assert.Equal(t, 256, res.Width)
}

func TestExportEmpty(t *testing.T) {
	for _, d := range []ink.Drawing{{}, {Strokes: []ink.Stroke{{}, {}}}} {
		e := New(DefaultConfig())
		rendered := false
		e.render = func(ink.Drawing, ink.Rect, float64, int, int, visualize.Options) (image.Image, error) {
			rendered = true
			return nil, nil
		}
		stages := recorder(e)

		res, err := e.Export(d, tabletCanvas, ink.DefaultMaxDimension)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrEmptyContent)
		assert.False(t, rendered)
		assert.Equal(t, []Stage{Received, EmptyContent}, *stages)
	}
}

func TestExportNonFinitePoints(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	res, err := Export(ink.Drawing{Strokes: []ink.Stroke{stroke(nan, nan), stroke(inf, 5, 5, -inf)}}, tabletCanvas, ink.DefaultMaxDimension)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEmptyContent)

	res, err = Export(ink.Drawing{Strokes: []ink.Stroke{stroke(100, 100, nan, nan, 150, 120, 130, 90)}}, tabletCanvas, ink.DefaultMaxDimension)
	require.NoError(t, err)
	assert.Equal(t, ink.NewRect(100, 90, 50, 30), res.Bounds)
	assert.Equal(t, 114, res.Width)
	assert.Equal(t, 94, res.Height)
}

func TestExportEncodingFailure(t *testing.T) {
	e := New(DefaultConfig())
	e.encode = func(image.Image) ([]byte, error) { return nil, errors.New("out of memory") }
	stages := recorder(e)

	res, err := e.Export(ink.Drawing{Strokes: []ink.Stroke{stroke(1, 1, 2, 2)}}, tabletCanvas, ink.DefaultMaxDimension)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEncodingFailed)
	assert.Contains(t, err.Error(), "out of memory")
	assert.Equal(t, RenderFailed, (*stages)[len(*stages)-1])
}

func TestExportEmptyEncoderOutputFails(t *testing.T) {
	e := New(DefaultConfig())
	e.encode = func(image.Image) ([]byte, error) { return []byte{}, nil }
	_, err := e.Export(ink.Drawing{Strokes: []ink.Stroke{stroke(1, 1)}}, tabletCanvas, ink.DefaultMaxDimension)
	assert.ErrorIs(t, err, ErrEncodingFailed)
}

func TestExportDotInCorner(t *testing.T) {
	res, err := Export(ink.Drawing{Strokes: []ink.Stroke{stroke(0, 0)}}, tabletCanvas, ink.DefaultMaxDimension)
	require.NoError(t, err)
	assert.Equal(t, ink.NewRect(0, 0, 64, 64), res.Region)
	assert.Equal(t, 64, res.Width)
}

func TestExportRoundTrip(t *testing.T) {
	d := ink.Drawing{Strokes: []ink.Stroke{stroke(300, 300, 420, 380, 500, 310), stroke(320, 400, 480, 400)}}
	res, err := Export(d, tabletCanvas, ink.DefaultMaxDimension)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(res.Image))
	require.NoError(t, err)
	assert.Equal(t, res.Width, decoded.Bounds().Dx())
	assert.Equal(t, res.Height, decoded.Bounds().Dy())

	again, err := visualize.Encode(res.Raster)
	require.NoError(t, err)
	assert.Equal(t, len(res.Image), len(again))
}

func TestExportDoesNotMutateInput(t *testing.T) {
	d := ink.Drawing{Strokes: []ink.Stroke{stroke(10, 10, 20, 20)}}
	before := d.Clone()
	_, err := Export(d, tabletCanvas, ink.DefaultMaxDimension)
	require.NoError(t, err)
	assert.Equal(t, before, d)
}

func TestExportConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	sizes := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			off := float64(i * 100)
			d := ink.Drawing{Strokes: []ink.Stroke{stroke(off+100, 100, off+100+float64(i+1)*20, 160)}}
			res, err := Export(d, tabletCanvas, ink.DefaultMaxDimension)
			errs[i] = err
			if err == nil {
				sizes[i] = res.Width
			}
		}(i)
	}
	wg.Wait()
	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, (i+1)*20+64, sizes[i])
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "metrics-computed", MetricsComputed.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}
