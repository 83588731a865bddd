// Package annotations writes drawings as vector PDF pages.
package annotations

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/unidoc/unipdf/v3/contentstream"
	"github.com/unidoc/unipdf/v3/contentstream/draw"
	"github.com/unidoc/unipdf/v3/creator"

	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/log"
)

// PPI of the capture surface. A page is sized so one canvas unit prints at
// this resolution.
const PPI = 132

// A page is never smaller than this many points on either side.
const minPageSide = 72.0

// Page is one drawing and the canvas it was captured on.
type Page struct {
	Drawing ink.Drawing
	Canvas  ink.Rect
}

type PdfGeneratorOptions struct {
	AddPageNumbers bool
	// FullCanvas prints the whole canvas instead of the padded content.
	FullCanvas bool
	LineWidth  float64
	Ink        color.Color
}

type PdfGenerator struct {
	options PdfGeneratorOptions
	cfg     export.Config
}

// CreatePdfGenerator returns a generator cropping pages the same way the
// PNG export does.
func CreatePdfGenerator(cfg export.Config, options PdfGeneratorOptions) *PdfGenerator {
	if options.LineWidth <= 0 {
		options.LineWidth = cfg.Render.LineWidth
	}
	if options.Ink == nil {
		options.Ink = cfg.Render.Ink
	}
	if options.LineWidth <= 0 {
		options.LineWidth = 3
	}
	if options.Ink == nil {
		options.Ink = color.Black
	}
	return &PdfGenerator{options: options, cfg: cfg}
}

// region returns the part of the canvas printed for d.
func (p *PdfGenerator) region(pg Page) ink.Rect {
	if p.options.FullCanvas || !pg.Drawing.HasContent() {
		return pg.Canvas
	}
	return ink.PadAndClip(ink.BoundingBox(pg.Drawing), pg.Canvas, p.cfg.Margin, p.cfg.MinDimension)
}

// Generate writes one PDF page per drawing to w. Empty drawings produce
// blank pages so page numbers line up with the input.
func (p *PdfGenerator) Generate(w io.Writer, pages ...Page) error {
	if len(pages) == 0 {
		return export.ErrEmptyContent
	}

	c := creator.New()
	ratio := 72.0 / PPI

	for i, pg := range pages {
		region := p.region(pg)
		if region.IsEmpty() {
			return errors.Errorf("page %d: canvas has no area", i+1)
		}
		width := region.Width * ratio
		height := region.Height * ratio
		if width < minPageSide || height < minPageSide {
			f := math.Max(minPageSide/width, minPageSide/height)
			width, height = width*f, height*f
		}
		c.SetPageSize(creator.PageSize{width, height})
		page := c.NewPage()

		scale := width / region.Width
		cc := contentstream.NewContentCreator()
		r, g, b := rgb(p.options.Ink)
		cc.Add_q()
		cc.Add_w(p.options.LineWidth * scale)
		cc.Add_J("1")
		cc.Add_j("1")
		cc.Add_RG(r, g, b)
		for _, s := range pg.Drawing.Strokes {
			path := draw.NewPath()
			for _, pt := range s.Points {
				if !pt.IsFinite() {
					continue
				}
				x := (pt.X - region.X) * scale
				y := height - (pt.Y-region.Y)*scale
				path = path.AppendPoint(draw.NewPoint(x, y))
			}
			if len(path.Points) == 0 {
				continue
			}
			if len(path.Points) == 1 {
				path = path.AppendPoint(path.Points[0])
			}
			draw.DrawPathWithCreator(path, cc)
			cc.Add_S()
		}
		cc.Add_Q()

		if err := page.AppendContentStream(string(cc.Operations().Bytes())); err != nil {
			return errors.Wrapf(err, "page %d", i+1)
		}
		log.Trace.Printf("pdf page %d: region %v, %.1fx%.1f pt", i+1, region, width, height)
	}

	if p.options.AddPageNumbers {
		c.DrawFooter(func(block *creator.Block, args creator.FooterFunctionArgs) {
			para := c.NewParagraph(fmt.Sprintf("%d", args.PageNum))
			para.SetFontSize(8)
			para.SetPos(block.Width()-20, block.Height()-10)
			block.Draw(para)
		})
	}

	if err := c.Write(w); err != nil {
		return errors.Wrap(err, "failed to write pdf")
	}
	return nil
}

func rgb(c color.Color) (float64, float64, float64) {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 1, 1, 1
	}
	// flatten over white
	w := float64(0xffff - a)
	return (float64(r) + w) / 0xffff, (float64(g) + w) / 0xffff, (float64(b) + w) / 0xffff
}
