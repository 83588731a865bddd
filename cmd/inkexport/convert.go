package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/inkbridge/inkbridge/annotations"
	"github.com/inkbridge/inkbridge/archive"
	"github.com/inkbridge/inkbridge/encoding/strokes"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/log"
	"github.com/inkbridge/inkbridge/metrics"
)

// converter turns drawing files into PNG (and optionally PDF) files.
type converter struct {
	exporter     *export.Exporter
	pdf          *annotations.PdfGenerator
	bundle       bool
	canvas       ink.Rect
	maxDimension float64
	outDir       string
}

// Outcome of one file.
type Outcome struct {
	Input   string
	Output  string
	Skipped bool
	Metrics metrics.Export
	Err     error
}

func (c *converter) outputPath(input, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ext
	dir := c.outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}

// convertFile exports one drawing. Empty drawings are skipped, not failed.
func (c *converter) convertFile(input string) Outcome {
	out := Outcome{Input: input}

	doc, err := strokes.Load(input)
	if err != nil {
		out.Err = err
		return out
	}
	canvas := doc.Canvas
	if canvas.IsEmpty() {
		canvas = c.canvas
	}

	res, err := c.exporter.Export(doc.Drawing, canvas, c.maxDimension)
	if errors.Is(err, export.ErrEmptyContent) {
		out.Skipped = true
		return out
	}
	if err != nil {
		out.Err = errors.Wrapf(err, "%s", input)
		return out
	}

	out.Output = c.outputPath(input, ".png")
	out.Metrics = res.Metrics
	if err := os.WriteFile(out.Output, res.Image, 0644); err != nil {
		out.Err = errors.Wrap(err, "failed to write png")
		return out
	}

	if c.pdf != nil {
		if err := c.writePDF(doc.Drawing, canvas, c.outputPath(input, ".pdf")); err != nil {
			out.Err = err
			return out
		}
	}
	if c.bundle {
		if err := c.writeBundle(strokes.Document{Canvas: canvas, Drawing: doc.Drawing}, res, c.outputPath(input, ".zip")); err != nil {
			out.Err = err
		}
	}
	return out
}

func (c *converter) writeBundle(doc strokes.Document, res *export.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create bundle")
	}
	if err := archive.FromExport(doc, res).Write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to write bundle")
}

func (c *converter) writePDF(d ink.Drawing, canvas ink.Rect, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create pdf")
	}
	if err := c.pdf.Generate(f, annotations.Page{Drawing: d, Canvas: canvas}); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to write pdf")
}

// convertAll converts inputs with at most jobs files in flight. Results
// keep the order of inputs.
func (c *converter) convertAll(ctx context.Context, inputs []string, jobs int64) ([]Outcome, error) {
	if jobs < 1 {
		jobs = 1
	}
	sem := semaphore.NewWeighted(jobs)
	results := make([]Outcome, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return results[:i], err
		}
		wg.Add(1)
		go func(i int, input string) {
			defer sem.Release(1)
			defer wg.Done()
			results[i] = c.convertFile(input)
			log.Trace.Printf("converted %s", input)
		}(i, input)
	}
	wg.Wait()
	return results, nil
}

// expandInputs replaces directories by the drawing files directly inside
// them.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			inputs = append(inputs, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strokes.IsDrawingFile(e.Name()) {
				inputs = append(inputs, filepath.Join(a, e.Name()))
			}
		}
	}
	return inputs, nil
}
