package strokes

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/inkbridge/inkbridge/ink"
)

const pointLen = 8

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *Document) UnmarshalBinary(data []byte) error {
	r := reader{Reader: bytes.NewReader(data)}
	if err := r.checkHeader(); err != nil {
		return err
	}

	canvas, err := r.readRect()
	if err != nil {
		return errors.Wrap(err, "failed to read canvas")
	}

	nbStrokes, err := r.readCount(4)
	if err != nil {
		return errors.Wrap(err, "failed to read stroke count")
	}

	strokes := make([]ink.Stroke, nbStrokes)
	for i := range strokes {
		nbPoints, err := r.readCount(pointLen)
		if err != nil {
			return errors.Wrapf(err, "failed to read stroke %d", i)
		}
		if nbPoints == 0 {
			continue
		}
		strokes[i].Points = make([]ink.Point, nbPoints)
		for j := range strokes[i].Points {
			p, err := r.readPoint()
			if err != nil {
				return errors.Wrapf(err, "failed to read point %d of stroke %d", j, i)
			}
			strokes[i].Points[j] = p
		}
	}

	d.Canvas = canvas
	d.Drawing = ink.Drawing{Strokes: strokes}
	return nil
}

type reader struct {
	*bytes.Reader
}

func (r reader) checkHeader() error {
	buf := make([]byte, HeaderLen)
	n, err := r.Read(buf)
	if err != nil || n != HeaderLen {
		return errors.New("wrong header size")
	}
	if string(buf) != HeaderV1 {
		return errors.New("unknown header")
	}
	return nil
}

func (r reader) readFloat32() (float64, error) {
	var f float32
	if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
		return 0, err
	}
	return float64(f), nil
}

// readCount reads a uint32 count of items of itemLen bytes each and rejects
// counts the remaining data cannot hold.
func (r reader) readCount(itemLen int) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, errors.New("wrong number read")
	}
	if int64(n)*int64(itemLen) > int64(r.Len()) {
		return 0, errors.Errorf("count %d exceeds remaining %d bytes", n, r.Len())
	}
	return int(n), nil
}

func (r reader) readRect() (ink.Rect, error) {
	var v [4]float64
	for i := range v {
		f, err := r.readFloat32()
		if err != nil {
			return ink.Rect{}, err
		}
		v[i] = f
	}
	return ink.NewRect(v[0], v[1], v[2], v[3]), nil
}

func (r reader) readPoint() (ink.Point, error) {
	x, err := r.readFloat32()
	if err != nil {
		return ink.Point{}, err
	}
	y, err := r.readFloat32()
	if err != nil {
		return ink.Point{}, err
	}
	return ink.Point{X: x, Y: y}, nil
}
