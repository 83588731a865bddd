package strokes

import (
	"bytes"
	"encoding/binary"

	"github.com/inkbridge/inkbridge/ink"
)

// MarshalBinary implements encoding.BinaryMarshaler.
//
// Layout: header, canvas x/y/width/height as float32, number of strokes,
// then for each stroke its number of points followed by x/y float32 pairs.
// All numbers are little endian.
func (d *Document) MarshalBinary() ([]byte, error) {
	w := new(writer)
	w.writeHeader()
	w.writeRect(d.Canvas)

	w.writeNumber(len(d.Drawing.Strokes))
	for _, s := range d.Drawing.Strokes {
		w.writeNumber(len(s.Points))
		for _, p := range s.Points {
			w.writePoint(p)
		}
	}
	return w.Bytes(), nil
}

type writer struct {
	b bytes.Buffer
}

func (w *writer) Bytes() []byte {
	return w.b.Bytes()
}

func (w *writer) writeHeader() {
	w.b.WriteString(HeaderV1)
}

func (w *writer) writeNumber(n int) {
	binary.Write(&w.b, binary.LittleEndian, uint32(n))
}

func (w *writer) writeFloat32(f float64) {
	binary.Write(&w.b, binary.LittleEndian, float32(f))
}

func (w *writer) writeRect(r ink.Rect) {
	w.writeFloat32(r.X)
	w.writeFloat32(r.Y)
	w.writeFloat32(r.Width)
	w.writeFloat32(r.Height)
}

func (w *writer) writePoint(p ink.Point) {
	w.writeFloat32(p.X)
	w.writeFloat32(p.Y)
}
