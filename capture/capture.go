// Package capture defines what the exporter needs from a drawing surface and
// provides an in-memory surface fed point by point.
package capture

import (
	"errors"
	"sync"

	"github.com/inkbridge/inkbridge/ink"
)

var ErrNoStroke = errors.New("no stroke in progress")

// Surface is the capture side of an export. Both methods are called once per
// export.
type Surface interface {
	// CurrentDrawing returns a snapshot the caller may keep.
	CurrentDrawing() ink.Drawing
	// CanvasExtent returns the bounds of the drawing surface.
	CanvasExtent() ink.Rect
}

// Canvas is a Surface that collects strokes in memory. It is safe for
// concurrent use.
type Canvas struct {
	mu      sync.Mutex
	extent  ink.Rect
	strokes []ink.Stroke
	active  *ink.Stroke
}

// NewCanvas returns an empty canvas of the given size.
func NewCanvas(width, height float64) *Canvas {
	return &Canvas{extent: ink.NewRect(0, 0, width, height)}
}

func (c *Canvas) CanvasExtent() ink.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extent
}

// Resize changes the canvas extent, e.g. after a rotation. Strokes are kept.
func (c *Canvas) Resize(width, height float64) {
	c.mu.Lock()
	c.extent = ink.NewRect(0, 0, width, height)
	c.mu.Unlock()
}

// CurrentDrawing returns a deep copy of the finished strokes. A stroke still
// in progress is not included.
func (c *Canvas) CurrentDrawing() ink.Drawing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ink.Drawing{Strokes: c.strokes}.Clone()
}

// Begin starts a stroke at p, ending any stroke in progress first.
func (c *Canvas) Begin(p ink.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked()
	c.active = &ink.Stroke{Points: []ink.Point{p}}
}

// Append adds p to the stroke in progress.
func (c *Canvas) Append(p ink.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ErrNoStroke
	}
	c.active.Points = append(c.active.Points, p)
	return nil
}

// End finishes the stroke in progress.
func (c *Canvas) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ErrNoStroke
	}
	c.endLocked()
	return nil
}

func (c *Canvas) endLocked() {
	if c.active != nil {
		c.strokes = append(c.strokes, *c.active)
		c.active = nil
	}
}

// AddStroke appends a finished stroke. The points are copied.
func (c *Canvas) AddStroke(points ...ink.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strokes = append(c.strokes, ink.Stroke{Points: append([]ink.Point(nil), points...)})
}

// StrokeCount returns the number of finished strokes.
func (c *Canvas) StrokeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.strokes)
}

// Clear drops all strokes.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strokes = nil
	c.active = nil
}

// Restore replaces the content with a copy of d.
func (c *Canvas) Restore(d ink.Drawing) {
	d = d.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strokes = d.Strokes
	c.active = nil
}
