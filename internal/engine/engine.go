// Package engine provides the recognition backends of the OCR pipeline.
//
// All backends implement the Engine interface and normalize their native
// output into the common page result shape: text, word boxes in pixel-space
// rectangles and confidence on a 0-100 scale.
package engine

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/errs"
)

// Engine names accepted by New.
const (
	NameTesseract = "tesseract"
	NamePaddleOCR = "paddleocr"
	NameEasyOCR   = "easyocr"
)

// Engine recognizes text on a single page raster.
//
// Implementations must be safe to call from multiple goroutines; backends
// that are not reentrant (Tesseract) create per-call clients.
type Engine interface {
	// Recognize runs OCR on the page and returns its result. The page
	// index of the result matches the input page.
	Recognize(ctx context.Context, page document.PageImage, languages []string) (document.PageResult, error)

	// Name returns the engine identifier used in configuration and results.
	Name() string
}

// Options configures engine construction.
type Options struct {
	// Name selects the backend: tesseract, paddleocr or easyocr.
	Name string

	// TessdataPrefix optionally overrides the Tesseract training data
	// directory.
	TessdataPrefix string

	// PaddleURL and EasyOCRURL are the base URLs of the HTTP serving
	// endpoints backing the respective engines.
	PaddleURL  string
	EasyOCRURL string
}

// New constructs the configured engine. Unknown names are an engine error.
func New(opts Options) (Engine, error) {
	switch strings.ToLower(opts.Name) {
	case NameTesseract, "":
		return newTesseract(opts.TessdataPrefix), nil
	case NamePaddleOCR:
		return newPaddle(opts.PaddleURL), nil
	case NameEasyOCR:
		return newEasyOCR(opts.EasyOCRURL), nil
	default:
		return nil, errs.New(errs.CodeEngineFailed, "unknown engine: "+opts.Name, nil)
	}
}

// encodePNG serializes a page raster for backends that consume image bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// meanConfidence averages word confidences for the page-level score.
// Pages without word boxes score zero.
func meanConfidence(boxes []document.WordBox) float64 {
	if len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}

// joinLines builds the page text from per-line fragments.
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
