// Package document defines the data model flowing through the OCR pipeline:
// rasterized page images on the way in, per-page recognition results and the
// merged document result on the way out, plus the JSON shapes served by the
// HTTP API and the CLI summary writer.
package document

import "image"

// PageImage is a rasterized page. Index is the zero-based position of the
// page in its source document. Transforms produce new PageImages; the
// original raster is never mutated.
type PageImage struct {
	Index int
	Image image.Image
}

// Rect is an axis-aligned bounding rectangle in pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WordBox is a recognized text fragment with its location and confidence.
// Confidence is normalized to 0-100 across all engines.
type WordBox struct {
	Text       string  `json:"text"`
	BBox       Rect    `json:"bbox"`
	Confidence float64 `json:"confidence"`
}

// PageResult holds the recognition output for one page. A degraded page
// carries empty text, zero confidence and a populated Error.
type PageResult struct {
	Page       int       `json:"page"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Boxes      []WordBox `json:"boxes"`
	Error      string    `json:"error,omitempty"`
}

// Result is the terminal artifact of a pipeline run: ordered per-page
// results and the merged full-document text. Page order always matches the
// source document regardless of recognition completion order.
type Result struct {
	Source    string       `json:"source"`
	Engine    string       `json:"engine"`
	Languages []string     `json:"languages"`
	Pages     []PageResult `json:"pages"`
	Text      string       `json:"-"`
}

// PageTexts returns the per-page texts in page order.
func (r *Result) PageTexts() []string {
	texts := make([]string, len(r.Pages))
	for i, p := range r.Pages {
		texts[i] = p.Text
	}
	return texts
}

// Failed reports whether any page carries an error.
func (r *Result) Failed() bool {
	for _, p := range r.Pages {
		if p.Error != "" {
			return true
		}
	}
	return false
}

// NewRect builds a Rect from two corner points.
func NewRect(x1, y1, x2, y2 int) Rect {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
