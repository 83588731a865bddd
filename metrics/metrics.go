// Package metrics computes the size statistics reported after an export.
// Nothing here feeds back into the export itself.
package metrics

import (
	"fmt"

	"github.com/inkbridge/inkbridge/ink"
)

// DimensionReport compares the canvas with the cropped and final image.
type DimensionReport struct {
	OriginalSize     ink.Size `json:"originalSize"`
	CroppedSize      ink.Size `json:"croppedSize"`
	FinalSize        ink.Size `json:"finalSize"`
	ReductionPercent float64  `json:"reductionPercent"`
}

// Dimensions builds a DimensionReport. The reduction is the share of the
// original area that is not sent; an empty original reports 0.
func Dimensions(original, cropped, final ink.Size) DimensionReport {
	r := DimensionReport{
		OriginalSize: original,
		CroppedSize:  cropped,
		FinalSize:    final,
	}
	if oa := original.Area(); oa > 0 {
		r.ReductionPercent = (1 - final.Area()/oa) * 100
	}
	return r
}

// TransferReport compares sending the image as raw bytes with sending it as
// base64 text.
type TransferReport struct {
	BinarySize          int     `json:"binarySize"`
	TheoreticalTextSize int     `json:"theoreticalTextSize"`
	SavingsBytes        int     `json:"savingsBytes"`
	SavingsPercent      float64 `json:"savingsPercent"`
}

// Base64Size returns ceil(n*4/3), the text size TransferReport compares
// against.
func Base64Size(n int) int {
	if n <= 0 {
		return 0
	}
	return (n*4 + 2) / 3
}

// Transfer builds a TransferReport for a payload of binarySize bytes.
func Transfer(binarySize int) TransferReport {
	if binarySize < 0 {
		binarySize = 0
	}
	text := Base64Size(binarySize)
	r := TransferReport{
		BinarySize:          binarySize,
		TheoreticalTextSize: text,
		SavingsBytes:        text - binarySize,
	}
	if text > 0 {
		r.SavingsPercent = float64(r.SavingsBytes) / float64(text) * 100
	}
	return r
}

// Export is the full report logged for one export.
type Export struct {
	DimensionReport
	TransferReport
}

// New combines both reports.
func New(original, cropped, final ink.Size, binarySize int) Export {
	return Export{
		DimensionReport: Dimensions(original, cropped, final),
		TransferReport:  Transfer(binarySize),
	}
}

func (e Export) String() string {
	return fmt.Sprintf("original %.0fx%.0f, cropped %.0fx%.0f, final %.0fx%.0f (%.1f%% smaller), %d bytes binary vs %d base64 (%.1f%% saved)",
		e.OriginalSize.Width, e.OriginalSize.Height,
		e.CroppedSize.Width, e.CroppedSize.Height,
		e.FinalSize.Width, e.FinalSize.Height,
		e.ReductionPercent,
		e.BinarySize, e.TheoreticalTextSize, e.SavingsPercent)
}
