package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbridge/inkbridge/ink"
)

func TestCanvasStrokeLifecycle(t *testing.T) {
	c := NewCanvas(100, 200)
	assert.Equal(t, ink.NewRect(0, 0, 100, 200), c.CanvasExtent())

	assert.ErrorIs(t, c.Append(ink.Point{X: 1}), ErrNoStroke)
	assert.ErrorIs(t, c.End(), ErrNoStroke)

	c.Begin(ink.Point{X: 1, Y: 1})
	require.NoError(t, c.Append(ink.Point{X: 2, Y: 2}))
	assert.True(t, c.CurrentDrawing().IsEmpty(), "stroke in progress is not exported")
	require.NoError(t, c.End())

	d := c.CurrentDrawing()
	require.Len(t, d.Strokes, 1)
	assert.Equal(t, []ink.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, d.Strokes[0].Points)
}

func TestCanvasBeginEndsPreviousStroke(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Begin(ink.Point{X: 1})
	c.Begin(ink.Point{X: 2})
	require.NoError(t, c.End())
	assert.Equal(t, 2, c.StrokeCount())
}

func TestCanvasSnapshotIsIndependent(t *testing.T) {
	c := NewCanvas(10, 10)
	c.AddStroke(ink.Point{X: 1, Y: 1})
	d := c.CurrentDrawing()
	d.Strokes[0].Points[0].X = 5
	c.AddStroke(ink.Point{X: 3, Y: 3})

	assert.Equal(t, 1.0, c.CurrentDrawing().Strokes[0].Points[0].X)
	assert.Len(t, d.Strokes, 1)
}

func TestCanvasRestoreAndClear(t *testing.T) {
	c := NewCanvas(10, 10)
	saved := ink.Drawing{Strokes: []ink.Stroke{{Points: []ink.Point{{X: 4, Y: 4}}}}}
	c.Restore(saved)
	saved.Strokes[0].Points[0].X = 9
	assert.Equal(t, 4.0, c.CurrentDrawing().Strokes[0].Points[0].X)

	c.Clear()
	assert.True(t, c.CurrentDrawing().IsEmpty())
	assert.Equal(t, 0, c.StrokeCount())

	c.Resize(30, 40)
	assert.Equal(t, ink.NewRect(0, 0, 30, 40), c.CanvasExtent())
}

var _ Surface = (*Canvas)(nil)
