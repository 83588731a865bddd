// Package ink holds the stroke model handed over by the capture surface and
// the geometry used to decide which part of the canvas gets exported.
package ink

import "math"

// Point is a canvas-local coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Stroke is one continuous pen-down to pen-up gesture.
type Stroke struct {
	Points []Point `json:"points"`
}

// Drawing is the ordered stroke collection of one canvas.
// Insertion order is z-order.
type Drawing struct {
	Strokes []Stroke `json:"strokes"`
}

// Clone returns a deep copy so the caller can keep appending to its own
// drawing while the copy is exported.
func (d Drawing) Clone() Drawing {
	if d.Strokes == nil {
		return Drawing{}
	}
	strokes := make([]Stroke, len(d.Strokes))
	for i, s := range d.Strokes {
		if s.Points == nil {
			continue
		}
		strokes[i].Points = append([]Point(nil), s.Points...)
	}
	return Drawing{Strokes: strokes}
}

// PointCount returns the number of points over all strokes.
func (d Drawing) PointCount() int {
	n := 0
	for _, s := range d.Strokes {
		n += len(s.Points)
	}
	return n
}

// IsEmpty reports whether the drawing has no points at all.
func (d Drawing) IsEmpty() bool {
	for _, s := range d.Strokes {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// HasContent reports whether the drawing has at least one point with finite
// coordinates. Drawings without one export as empty.
func (d Drawing) HasContent() bool {
	for _, s := range d.Strokes {
		for _, p := range s.Points {
			if p.IsFinite() {
				return true
			}
		}
	}
	return false
}

// Size is a width and height pair.
type Size struct {
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Area returns Width*Height, or 0 if either side is not positive.
func (s Size) Area() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return 0
	}
	return s.Width * s.Height
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

func (r Rect) MinX() float64 { return r.X }
func (r Rect) MinY() float64 { return r.Y }
func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Size returns the rectangle's extent.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// IsEmpty reports whether r encloses no area.
// NaN extents count as empty.
func (r Rect) IsEmpty() bool {
	return !(r.Width > 0 && r.Height > 0)
}

// Contains reports whether p lies inside r, boundary included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX() && p.X <= r.MaxX() &&
		p.Y >= r.MinY() && p.Y <= r.MaxY()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.MinX() >= r.MinX() && o.MaxX() <= r.MaxX() &&
		o.MinY() >= r.MinY() && o.MaxY() <= r.MaxY()
}

// Normalize flips negative extents so that Width and Height are >= 0.
// The covered area is unchanged.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Inset shrinks r by dx on the left and right and dy on the top and bottom.
// Negative values grow the rectangle. The result may have negative extents;
// callers normalize before use.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width - 2*dx, Height: r.Height - 2*dy}
}

// Intersect returns the overlap of r and o and whether it is non-empty.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	r, o = r.Normalize(), o.Normalize()
	x0 := math.Max(r.MinX(), o.MinX())
	y0 := math.Max(r.MinY(), o.MinY())
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if !(x1 > x0 && y1 > y0) {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// Center returns the centre point of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
