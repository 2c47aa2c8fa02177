package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/errs"
)

// tesseract recognizes text with the native Tesseract library via gosseract.
//
// Tesseract clients are not reentrant, so every Recognize call creates and
// closes its own client. Language availability is checked once per engine
// instance.
type tesseract struct {
	tessdataPrefix string

	langOnce     sync.Once
	installed    map[string]bool
	installedErr error
}

func newTesseract(tessdataPrefix string) *tesseract {
	return &tesseract{tessdataPrefix: tessdataPrefix}
}

func (t *tesseract) Name() string { return NameTesseract }

func (t *tesseract) Recognize(ctx context.Context, page document.PageImage, languages []string) (document.PageResult, error) {
	if err := ctx.Err(); err != nil {
		return document.PageResult{}, err
	}
	if err := t.checkLanguages(languages); err != nil {
		return document.PageResult{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return document.PageResult{}, errs.EngineFailed(page.Index, NameTesseract, err)
		}
	}
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			return document.PageResult{}, errs.EngineFailed(page.Index, NameTesseract, err)
		}
	}

	raster, err := encodePNG(page.Image)
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameTesseract, err)
	}
	if err := client.SetImageFromBytes(raster); err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameTesseract, err)
	}

	text, err := client.Text()
	if err != nil {
		return document.PageResult{}, errs.EngineFailed(page.Index, NameTesseract, err)
	}

	result := document.PageResult{
		Page:  page.Index,
		Text:  text,
		Boxes: []document.WordBox{},
	}

	// Word boxes can fail on some Tesseract builds; the text alone is still
	// a usable result.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil {
		for _, box := range boxes {
			word := strings.TrimSpace(box.Word)
			if word == "" {
				continue
			}
			result.Boxes = append(result.Boxes, document.WordBox{
				Text:       word,
				BBox:       document.NewRect(box.Box.Min.X, box.Box.Min.Y, box.Box.Max.X, box.Box.Max.Y),
				Confidence: box.Confidence,
			})
		}
	}
	result.Confidence = meanConfidence(result.Boxes)
	return result, nil
}

// checkLanguages verifies the requested language data is installed.
func (t *tesseract) checkLanguages(languages []string) error {
	t.langOnce.Do(func() {
		langs, err := gosseract.GetAvailableLanguages()
		if err != nil {
			t.installedErr = err
			return
		}
		t.installed = make(map[string]bool, len(langs))
		for _, l := range langs {
			t.installed[l] = true
		}
	})
	if t.installedErr != nil {
		// Availability could not be determined; let SetLanguage decide.
		return nil
	}
	for _, lang := range languages {
		if !t.installed[lang] {
			return errs.UnsupportedLanguage(NameTesseract, lang)
		}
	}
	return nil
}
