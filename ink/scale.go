package ink

import "math"

// DefaultMaxDimension is the largest side length of an exported image.
const DefaultMaxDimension = 3200.0

// ScalingResult describes how a region is mapped onto the output image.
// Size equals Original's extent multiplied by Scale.
type ScalingResult struct {
	Original Rect    `json:"original"`
	Scale    float64 `json:"scale"`
	Size     Size    `json:"size"`
}

// Fit downscales r so that neither side exceeds max, keeping the aspect
// ratio. Regions that already fit get a scale of exactly 1. A max that is
// not a positive finite number disables the limit.
//
// Non-positive sides are a caller error; they are replaced by
// DefaultMinDimension instead of producing NaN or infinite scales.
func Fit(r Rect, max float64) ScalingResult {
	r = sanitize(r)
	if !(r.Width > 0) {
		r.Width = DefaultMinDimension
	}
	if !(r.Height > 0) {
		r.Height = DefaultMinDimension
	}

	if !(max > 0) || math.IsInf(max, 1) || (r.Width <= max && r.Height <= max) {
		return ScalingResult{Original: r, Scale: 1, Size: r.Size()}
	}

	scale := math.Min(max/r.Width, max/r.Height)
	if !(scale > 0) {
		scale = math.SmallestNonzeroFloat64
	}
	return ScalingResult{
		Original: r,
		Scale:    scale,
		Size: Size{
			Width:  math.Min(r.Width*scale, max),
			Height: math.Min(r.Height*scale, max),
		},
	}
}

// NeedsScaling reports whether the result shrinks the region.
func (s ScalingResult) NeedsScaling() bool {
	return s.Scale != 1
}

// PixelSize rounds Size to whole pixels. Each side is at least one pixel
// and, when max is a positive limit, never more than max.
func (s ScalingResult) PixelSize(max float64) (int, int) {
	limit := math.MaxInt32
	if max > 0 && !math.IsInf(max, 1) {
		limit = int(math.Max(1, math.Floor(max+1e-9)))
	}
	px := func(v float64) int {
		n := int(math.Round(v))
		if n < 1 {
			n = 1
		}
		if n > limit {
			n = limit
		}
		return n
	}
	return px(s.Size.Width), px(s.Size.Height)
}
