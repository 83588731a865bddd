// Package visualize rasterizes drawings into opaque PNG images.
package visualize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/vector"

	"github.com/inkbridge/inkbridge/ink"
)

// MaxPixels bounds the raster allocation of a single render.
const MaxPixels = 64 << 20

var ErrTooLarge = errors.New("image too large")

// Options controls how strokes are painted.
type Options struct {
	// Background is flattened onto white if it is not opaque.
	Background color.Color
	Ink        color.Color
	// LineWidth is the pen width in canvas units. Rendered lines are never
	// thinner than one pixel.
	LineWidth float64
	// Grayscale renders an 8-bit gray image instead of RGB.
	Grayscale bool
}

// DefaultOptions paints 3 unit wide black ink on white.
func DefaultOptions() Options {
	return Options{
		Background: color.White,
		Ink:        color.Black,
		LineWidth:  3,
		Grayscale:  true,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Background == nil {
		o.Background = def.Background
	}
	if o.Ink == nil {
		o.Ink = def.Ink
	}
	if !(o.LineWidth > 0) {
		o.LineWidth = def.LineWidth
	}
	return o
}

// Render paints the strokes of d that touch region onto a width x height
// image. Canvas coordinates are mapped to pixels by subtracting the region
// origin and multiplying by scale. The result is always fully opaque.
func Render(d ink.Drawing, region ink.Rect, scale float64, width, height int, opts Options) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if int64(width)*int64(height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}
	opts = opts.withDefaults()

	half := opts.LineWidth * scale / 2
	if half < 0.5 {
		half = 0.5
	}
	// culling happens in canvas units
	reach := half / scale

	r := vector.NewRasterizer(width, height)
	toPx := func(p ink.Point) (float32, float32) {
		return float32((p.X - region.X) * scale), float32((p.Y - region.Y) * scale)
	}

	for _, s := range d.Strokes {
		if len(s.Points) == 0 {
			continue
		}
		bounds, ok := ink.Bounds(ink.Drawing{Strokes: []ink.Stroke{s}})
		if !ok {
			continue
		}
		if _, ok := bounds.Inset(-reach, -reach).Intersect(region); !ok {
			continue
		}

		// non-finite points are dropped, joining their neighbours
		var x0, y0 float32
		started := false
		for _, p := range s.Points {
			if !p.IsFinite() {
				continue
			}
			x1, y1 := toPx(p)
			if started {
				segment(r, x0, y0, x1, y1, float32(half))
			}
			disc(r, x1, y1, float32(half))
			x0, y0, started = x1, y1, true
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	pal := newPalette(opts.Background, opts.Ink)
	if opts.Grayscale {
		dst := image.NewGray(mask.Rect)
		for i, a := range mask.Pix {
			dst.Pix[i] = pal.gray[a]
		}
		return dst, nil
	}

	dst := image.NewRGBA(mask.Rect)
	for i, a := range mask.Pix {
		c := pal.rgb[a]
		j := 4 * i
		dst.Pix[j+0] = c.R
		dst.Pix[j+1] = c.G
		dst.Pix[j+2] = c.B
		dst.Pix[j+3] = 0xff
	}
	return dst, nil
}

// segment adds the body of a line as a quad. All shapes are wound the same
// way so overlaps saturate instead of cancelling.
func segment(r *vector.Rasterizer, x0, y0, x1, y1, half float32) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	r.MoveTo(x0+nx, y0+ny)
	r.LineTo(x1+nx, y1+ny)
	r.LineTo(x1-nx, y1-ny)
	r.LineTo(x0-nx, y0-ny)
	r.ClosePath()
}

// disc adds a round cap/join as a polygon with clockwise winding.
func disc(r *vector.Rasterizer, cx, cy, radius float32) {
	n := int(math.Ceil(2 * math.Pi * float64(radius) / 2))
	if n < 8 {
		n = 8
	} else if n > 64 {
		n = 64
	}
	r.MoveTo(cx+radius, cy)
	for i := 1; i < n; i++ {
		a := -2 * math.Pi * float64(i) / float64(n)
		r.LineTo(cx+radius*float32(math.Cos(a)), cy+radius*float32(math.Sin(a)))
	}
	r.ClosePath()
}

// palette maps a coverage value to the composited output colour.
type palette struct {
	rgb  [256]color.RGBA
	gray [256]uint8
}

func newPalette(background, fg color.Color) *palette {
	br, bg, bb, ba := background.RGBA()
	// flatten onto white
	br, bg, bb = br+0xffff-ba, bg+0xffff-ba, bb+0xffff-ba

	ir, ig, ib, ia := fg.RGBA()

	p := &palette{}
	for m := uint32(0); m < 256; m++ {
		cov := m * 0x101
		// ink is premultiplied; scale it and the remaining background by coverage
		rest := 0xffff - ia*cov/0xffff
		mix := func(i, b uint32) uint8 {
			v := (i*cov/0xffff + b*rest/0xffff)
			if v > 0xffff {
				v = 0xffff
			}
			return uint8(v >> 8)
		}
		c := color.RGBA{R: mix(ir, br), G: mix(ig, bg), B: mix(ib, bb), A: 0xff}
		p.rgb[m] = c
		p.gray[m] = color.GrayModel.Convert(c).(color.Gray).Y
	}
	return p
}

// Encode writes img as PNG. PNG is lossless, so decoding the result yields
// exactly the pixels of img.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("png encoder produced no data")
	}
	return buf.Bytes(), nil
}

// RenderPNG renders and encodes in one step.
func RenderPNG(d ink.Drawing, region ink.Rect, scale float64, width, height int, opts Options) ([]byte, error) {
	img, err := Render(d, region, scale, width, height, opts)
	if err != nil {
		return nil, err
	}
	return Encode(img)
}
