package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/errs"
)

// paddle recognizes text through a PaddleOCR serving endpoint
// (hub serving module ocr_system). The page raster travels as base64 PNG;
// detected regions come back as four-point polygons with 0-1 scores.
type paddle struct {
	baseURL string
	client  *http.Client
}

func newPaddle(baseURL string) *paddle {
	return &paddle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (p *paddle) Name() string { return NamePaddleOCR }

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleLine struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	TextRegion [][2]int `json:"text_region"`
}

type paddleResponse struct {
	Status  string         `json:"status"`
	Msg     string         `json:"msg"`
	Results [][]paddleLine `json:"results"`
}

func (p *paddle) Recognize(ctx context.Context, page document.PageImage, languages []string) (document.PageResult, error) {
	raster, err := encodePNG(page.Image)
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NamePaddleOCR, err)
	}

	body, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(raster)},
	})
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NamePaddleOCR, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict/ocr_system", bytes.NewReader(body))
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NamePaddleOCR, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NamePaddleOCR, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return document.PageResult{}, errs.EngineFailed(page.Index, NamePaddleOCR,
			fmt.Errorf("serving endpoint returned %s", resp.Status))
	}

	var parsed paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NamePaddleOCR, err)
	}
	if len(parsed.Results) == 0 {
		return document.PageResult{Page: page.Index, Boxes: []document.WordBox{}}, nil
	}

	lines := parsed.Results[0]
	texts := make([]string, 0, len(lines))
	boxes := make([]document.WordBox, 0, len(lines))
	for _, line := range lines {
		texts = append(texts, line.Text)
		boxes = append(boxes, document.WordBox{
			Text:       line.Text,
			BBox:       polygonToRect(line.TextRegion),
			Confidence: line.Confidence * 100,
		})
	}

	return document.PageResult{
		Page:       page.Index,
		Text:       joinLines(texts),
		Confidence: meanConfidence(boxes),
		Boxes:      boxes,
	}, nil
}

// polygonToRect normalizes a four-point region to its axis-aligned bounding
// rectangle.
func polygonToRect(points [][2]int) document.Rect {
	if len(points) == 0 {
		return document.Rect{}
	}
	minX, minY := points[0][0], points[0][1]
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return document.NewRect(minX, minY, maxX, maxY)
}
