package ink

import "math"

const (
	// DefaultMargin is the breathing room added on every side of the content.
	DefaultMargin = 32.0

	// DefaultMinDimension is the smallest render region side we hand to the
	// renderer, as long as the canvas is at least that large.
	DefaultMinDimension = 2 * DefaultMargin
)

// Pad grows box by margin on every side. A padded side never ends up
// shorter than 2*margin; when that floor applies the side is centred on the
// content.
func Pad(box Rect, margin float64) Rect {
	box = sanitize(box).Normalize()
	if margin < 0 || math.IsNaN(margin) {
		margin = 0
	}

	padded := box.Inset(-margin, -margin)
	floor := 2 * margin
	c := box.Center()

	if box.Width < floor && padded.Width < floor {
		padded.X, padded.Width = c.X-floor/2, floor
	}
	if box.Height < floor && padded.Height < floor {
		padded.Y, padded.Height = c.Y-floor/2, floor
	}
	return padded
}

// Clip restricts box to canvas. An empty overlap falls back to the whole
// canvas so the render region is never empty. An empty canvas leaves the
// box untouched because there is nothing to clip against.
func Clip(box, canvas Rect) Rect {
	canvas = sanitize(canvas).Normalize()
	if canvas.IsEmpty() {
		return box.Normalize()
	}
	if r, ok := box.Intersect(canvas); ok {
		return r
	}
	return canvas
}

// EnsureMinimum grows any side of region shorter than min around its centre,
// then shifts it back inside canvas. A side never grows past the canvas.
func EnsureMinimum(region, canvas Rect, min float64) Rect {
	region = sanitize(region).Normalize()
	canvas = sanitize(canvas).Normalize()
	if min <= 0 || math.IsNaN(min) {
		return region
	}
	if canvas.IsEmpty() {
		canvas = Rect{X: math.Inf(-1), Y: math.Inf(-1), Width: math.Inf(1), Height: math.Inf(1)}
	}

	region.X, region.Width = growAxis(region.X, region.Width, canvas.X, canvas.Width, min)
	region.Y, region.Height = growAxis(region.Y, region.Height, canvas.Y, canvas.Height, min)
	return region
}

func growAxis(origin, extent, lo, span, min float64) (float64, float64) {
	if extent >= min {
		return origin, extent
	}
	target := math.Min(min, span)
	if target <= extent {
		return origin, extent
	}
	o := origin + extent/2 - target/2
	if hi := lo + span; o+target > hi {
		o = hi - target
	}
	if o < lo {
		o = lo
	}
	return o, target
}

// PadAndClip pads box by margin, clips the result to canvas and applies the
// minimum region size. It never fails.
func PadAndClip(box, canvas Rect, margin, min float64) Rect {
	return EnsureMinimum(Clip(Pad(box, margin), canvas), canvas, min)
}

// sanitize replaces NaN and infinite components with zero.
func sanitize(r Rect) Rect {
	fix := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
	return Rect{X: fix(r.X), Y: fix(r.Y), Width: fix(r.Width), Height: fix(r.Height)}
}
