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

// easyocr recognizes text through an EasyOCR serving endpoint. Unlike the
// PaddleOCR module, EasyOCR takes the language list per request.
type easyocr struct {
	baseURL string
	client  *http.Client
}

func newEasyOCR(baseURL string) *easyocr {
	return &easyocr{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (e *easyocr) Name() string { return NameEasyOCR }

type easyOCRRequest struct {
	Image     string   `json:"image"`
	Languages []string `json:"languages,omitempty"`
}

type easyOCRLine struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	BBox       [][2]int `json:"bbox"`
}

type easyOCRResponse struct {
	Results []easyOCRLine `json:"results"`
	Error   string        `json:"error,omitempty"`
}

func (e *easyocr) Recognize(ctx context.Context, page document.PageImage, languages []string) (document.PageResult, error) {
	raster, err := encodePNG(page.Image)
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameEasyOCR, err)
	}

	body, err := json.Marshal(easyOCRRequest{
		Image:     base64.StdEncoding.EncodeToString(raster),
		Languages: languages,
	})
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameEasyOCR, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/ocr", bytes.NewReader(body))
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameEasyOCR, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameEasyOCR, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameEasyOCR,
			fmt.Errorf("serving endpoint returned %s", resp.Status))
	}

	var parsed easyOCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameEasyOCR, err)
	}
	if parsed.Error != "" {
		if isLanguageError(parsed.Error) {
			return document.PageResult{}, errs.UnsupportedLanguage(NameEasyOCR, parsed.Error)
		}
		return document.PageResult{}, errs.EngineFailed(page.Index, NameEasyOCR, fmt.Errorf("%s", parsed.Error))
	}

	texts := make([]string, 0, len(parsed.Results))
	boxes := make([]document.WordBox, 0, len(parsed.Results))
	for _, line := range parsed.Results {
		texts = append(texts, line.Text)
		boxes = append(boxes, document.WordBox{
			Text:       line.Text,
			BBox:       polygonToRect(line.BBox),
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

func isLanguageError(msg string) bool {
	return bytes.Contains(bytes.ToLower([]byte(msg)), []byte("language"))
}
