// Package archive bundles an export with the drawing it came from: the
// PNG, the drawing in binary form and a content.json describing both.
package archive

import (
	"archive/zip"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/inkbridge/inkbridge/encoding/strokes"
	"github.com/inkbridge/inkbridge/export"
	"github.com/inkbridge/inkbridge/ink"
	"github.com/inkbridge/inkbridge/metrics"
)

const (
	contentName = "content.json"
	drawingName = "drawing" + strokes.ExtBinary
	imageName   = "image.png"
)

// Content describes the bundle.
type Content struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	MimeType  string         `json:"mimeType"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Region    ink.Rect       `json:"region"`
	Scale     float64        `json:"scale"`
	Metrics   metrics.Export `json:"metrics"`
}

// Zip is an in-memory bundle.
type Zip struct {
	Content  Content
	Document strokes.Document
	Image    []byte
}

// NewZip returns an empty bundle with a fresh id.
func NewZip() *Zip {
	return &Zip{Content: Content{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}}
}

// FromExport bundles res with the drawing it was rendered from.
func FromExport(doc strokes.Document, res *export.Result) *Zip {
	z := NewZip()
	z.Document = doc
	z.Image = res.Image
	z.Content.MimeType = res.MimeType
	z.Content.Width = res.Width
	z.Content.Height = res.Height
	z.Content.Region = res.Region
	z.Content.Scale = res.Scaling.Scale
	z.Content.Metrics = res.Metrics
	return z
}

// Write writes the bundle as a zip file.
func (z *Zip) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	content, err := json.MarshalIndent(z.Content, "", "  ")
	if err != nil {
		return err
	}
	drawing, err := z.Document.MarshalBinary()
	if err != nil {
		return err
	}

	entries := []struct {
		name string
		data []byte
		// PNG data is already deflated
		method uint16
	}{
		{contentName, content, zip.Deflate},
		{drawingName, drawing, zip.Deflate},
		{imageName, z.Image, zip.Store},
	}
	for _, e := range entries {
		if e.name == imageName && len(e.data) == 0 {
			continue
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method, Modified: z.Content.CreatedAt})
		if err != nil {
			return errors.Wrapf(err, "can't create %s", e.name)
		}
		if _, err := f.Write(e.data); err != nil {
			return errors.Wrapf(err, "can't write %s", e.name)
		}
	}
	return zw.Close()
}

// Read replaces z with the bundle in r.
func (z *Zip) Read(r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return errors.Wrap(err, "can't open zip")
	}

	seen := map[string]bool{}
	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return err
		}
		switch f.Name {
		case contentName:
			if err := json.Unmarshal(data, &z.Content); err != nil {
				return errors.Wrap(err, "can't parse content")
			}
		case drawingName:
			if err := z.Document.UnmarshalBinary(data); err != nil {
				return errors.Wrap(err, "can't parse drawing")
			}
		case imageName:
			z.Image = data
		default:
			continue
		}
		seen[f.Name] = true
	}
	if !seen[contentName] || !seen[drawingName] {
		return errors.New("bundle is missing content or drawing")
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", f.Name)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
