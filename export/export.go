// Package export turns a drawing into the image sent to the vision backend.
//
// An export runs synchronously and keeps no state between calls, so
// independent drawings may be exported from different goroutines.
package export

import (
	"errors"
	"fmt"
	"image"

	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/log"
	"github.com/inkbridge/inkbridge/metrics"
	"github.com/inkbridge/inkbridge/visualize"
)

var (
	// ErrEmptyContent means there is nothing to submit. It is an expected
	// outcome, not a fault.
	ErrEmptyContent = errors.New("drawing has no content")

	// ErrEncodingFailed means the image could not be produced. The export is
	// abandoned; retrying is up to the caller.
	ErrEncodingFailed = errors.New("image encoding failed")
)

// MimeType of Result.Image.
const MimeType = "image/png"

// Stage is a step of a single export.
type Stage int

const (
	Received Stage = iota
	BoundsComputed
	Padded
	Clipped
	Scaled
	Rendered
	MetricsComputed
	Done
	EmptyContent
	RenderFailed
)

var stageNames = [...]string{
	"received", "bounds-computed", "padded", "clipped", "scaled",
	"rendered", "metrics-computed", "done", "empty-content", "render-failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Config holds the tunables of an Exporter.
type Config struct {
	Margin       float64
	MinDimension float64
	Render       visualize.Options
}

// DefaultConfig returns the product defaults.
func DefaultConfig() Config {
	return Config{
		Margin:       ink.DefaultMargin,
		MinDimension: ink.DefaultMinDimension,
		Render:       visualize.DefaultOptions(),
	}
}

// Result is a finished export.
type Result struct {
	Image    []byte
	MimeType string

	Bounds  ink.Rect
	Padded  ink.Rect
	Region  ink.Rect
	Scaling ink.ScalingResult

	// Width and Height are the pixel dimensions of Image.
	Width  int
	Height int

	Metrics metrics.Export

	// Raster is the decoded form of Image, kept for previews.
	Raster image.Image
}

type renderFunc func(d ink.Drawing, region ink.Rect, scale float64, w, h int, opts visualize.Options) (image.Image, error)

// Exporter runs exports with a fixed Config.
type Exporter struct {
	cfg    Config
	render renderFunc
	encode func(image.Image) ([]byte, error)
	// observe, if set, sees every stage transition
	observe func(Stage)
}

// New creates an Exporter.
func New(cfg Config) *Exporter {
	return &Exporter{
		cfg:    cfg,
		render: visualize.Render,
		encode: visualize.Encode,
	}
}

// Export runs the default pipeline. See Exporter.Export.
func Export(d ink.Drawing, canvas ink.Rect, maxDimension float64) (*Result, error) {
	return New(DefaultConfig()).Export(d, canvas, maxDimension)
}

func (e *Exporter) enter(s Stage) {
	log.Trace.Printf("export: %s", s)
	if e.observe != nil {
		e.observe(s)
	}
}

// Export crops d to its content plus margin, limits the longer side to
// maxDimension and renders it. It returns ErrEmptyContent for drawings
// without finite points and an error wrapping ErrEncodingFailed when no
// image could be produced. d is only read.
func (e *Exporter) Export(d ink.Drawing, canvas ink.Rect, maxDimension float64) (*Result, error) {
	e.enter(Received)
	log.Trace.Printf("export: %d strokes, %d points, canvas %vx%v", len(d.Strokes), d.PointCount(), canvas.Width, canvas.Height)

	bounds, ok := ink.Bounds(d)
	if !ok {
		e.enter(EmptyContent)
		return nil, ErrEmptyContent
	}
	e.enter(BoundsComputed)

	padded := ink.Pad(bounds, e.cfg.Margin)
	e.enter(Padded)

	region := ink.EnsureMinimum(ink.Clip(padded, canvas), canvas, e.cfg.MinDimension)
	e.enter(Clipped)

	scaling := ink.Fit(region, maxDimension)
	w, h := scaling.PixelSize(maxDimension)
	e.enter(Scaled)
	log.Trace.Printf("export: region %+v scale %.4f -> %dx%d", region, scaling.Scale, w, h)

	img, err := e.render(d, scaling.Original, scaling.Scale, w, h, e.cfg.Render)
	if err != nil {
		return nil, e.fail(err)
	}
	data, err := e.encode(img)
	if err == nil && len(data) == 0 {
		err = errors.New("encoder returned no data")
	}
	if err != nil {
		return nil, e.fail(err)
	}
	e.enter(Rendered)

	res := &Result{
		Image:    data,
		MimeType: MimeType,
		Bounds:   bounds,
		Padded:   padded,
		Region:   scaling.Original,
		Scaling:  scaling,
		Width:    w,
		Height:   h,
		Raster:   img,
	}
	res.Metrics = metrics.New(
		canvas.Size(),
		scaling.Original.Size(),
		ink.Size{Width: float64(w), Height: float64(h)},
		len(data),
	)
	e.enter(MetricsComputed)
	log.Trace.Printf("export: %s", res.Metrics)

	e.enter(Done)
	return res, nil
}

func (e *Exporter) fail(err error) error {
	e.enter(RenderFailed)
	log.Error.Printf("export: render failed: %v", err)
	return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
}
