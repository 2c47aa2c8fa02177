// Package export serializes document results to plain text or DOCX files.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gomutex/godocx"

	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/errs"
	"github.com/Pietr00ass/OCR-SG/internal/postprocess"
)

// Supported export formats.
const (
	FormatTxt  = "txt"
	FormatDocx = "docx"
)

// Save writes the result to path in the given format.
func Save(path, format string, result *document.Result) error {
	switch strings.ToLower(format) {
	case FormatTxt:
		return SaveTxt(path, result)
	case FormatDocx:
		return SaveDocx(path, result)
	default:
		return errs.UnsupportedFormat(format)
	}
}

// WriteTxt writes the merged document text to w, pages separated by blank
// lines.
func WriteTxt(w io.Writer, result *document.Result) error {
	text := result.Text
	if text == "" {
		text = postprocess.MergePages(result.PageTexts())
	}
	_, err := io.WriteString(w, text)
	return err
}

// SaveTxt writes the merged document text to a UTF-8 file at path.
func SaveTxt(path string, result *document.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.ExportFailed(path, err)
	}
	if err := WriteTxt(f, result); err != nil {
		f.Close()
		return errs.ExportFailed(path, err)
	}
	if err := f.Close(); err != nil {
		return errs.ExportFailed(path, err)
	}
	return nil
}

// SaveDocx writes a Word document to path with one "Page N" heading per
// page followed by the page text.
func SaveDocx(path string, result *document.Result) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return errs.ExportFailed(path, err)
	}
	for i, page := range result.Pages {
		if _, err := doc.AddHeading(fmt.Sprintf("Page %d", i+1), 2); err != nil {
			return errs.ExportFailed(path, err)
		}
		doc.AddParagraph(page.Text)
	}
	if err := doc.SaveTo(path); err != nil {
		return errs.ExportFailed(path, err)
	}
	return nil
}
