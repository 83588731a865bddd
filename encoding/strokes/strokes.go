// Package strokes reads and writes drawings as handed over by a capture
// surface: a compact little-endian binary format (.ink) and JSON.
package strokes

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/inkbridge/inkbridge/ink"
)

const (
	HeaderV1  = "inkbridge drawing format v1     "
	HeaderLen = 32

	ExtBinary = ".ink"
	ExtJSON   = ".json"
)

// Document is a drawing together with the extent of the canvas it was
// captured on.
type Document struct {
	Canvas  ink.Rect    `json:"canvas"`
	Drawing ink.Drawing `json:"-"`
}

type jsonDocument struct {
	Canvas  ink.Rect     `json:"canvas"`
	Strokes []ink.Stroke `json:"strokes"`
}

// MarshalJSON flattens the drawing's strokes next to the canvas.
func (d Document) MarshalJSON() ([]byte, error) {
	strokes := d.Drawing.Strokes
	if strokes == nil {
		strokes = []ink.Stroke{}
	}
	return json.Marshal(jsonDocument{Canvas: d.Canvas, Strokes: strokes})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	d.Canvas = doc.Canvas
	d.Drawing = ink.Drawing{Strokes: doc.Strokes}
	return nil
}

// Decode detects the format from the header and decodes data.
func Decode(data []byte) (*Document, error) {
	doc := &Document{}
	if len(data) >= HeaderLen && string(data[:HeaderLen]) == HeaderV1 {
		if err := doc.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return doc, nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, doc); err != nil {
			return nil, errors.Wrap(err, "invalid drawing json")
		}
		return doc, nil
	}
	return nil, errors.New("unknown drawing format")
}

// Load reads a drawing from a .ink or .json file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load %s", path)
	}
	return doc, nil
}

// Save writes doc to path, choosing the format from the extension. Anything
// but .json is written in the binary format.
func Save(path string, doc *Document) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ExtJSON) {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = doc.MarshalBinary()
	}
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "can't write %s", path)
}

// IsDrawingFile reports whether path has one of the known extensions.
func IsDrawingFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ExtBinary || ext == ExtJSON
}
