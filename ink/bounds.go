package ink

import "math"

// BoundingBox returns the smallest rectangle containing every finite point of
// every stroke, boundaries inclusive. A drawing without finite points yields
// the zero Rect.
func BoundingBox(d Drawing) Rect {
	box, _ := Bounds(d)
	return box
}

// Bounds is BoundingBox that also reports whether any finite point was seen.
// Points with a NaN or infinite coordinate are skipped.
func Bounds(d Drawing) (Rect, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, s := range d.Strokes {
		for _, p := range s.Points {
			if !p.IsFinite() {
				continue
			}
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}

	if minX > maxX || minY > maxY {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, Width: span(minX, maxX), Height: span(minY, maxY)}, true
}

// span returns the smallest size with lo+size >= hi, so the far edge of the
// box never rounds below the extreme point.
func span(lo, hi float64) float64 {
	size := hi - lo
	for lo+size < hi {
		size = math.Nextafter(size, math.Inf(1))
	}
	return size
}
