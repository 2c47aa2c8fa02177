// Package loader turns source files into ordered page rasters.
//
// Image files decode to a single page. PDFs are validated with pdfcpu and
// rasterized page by page at the requested DPI through pdftoppm, which must
// be installed alongside the binary (poppler-utils on Debian/Ubuntu,
// poppler on macOS).
package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/errs"
	"github.com/Pietr00ass/OCR-SG/internal/log"
)

// imageSuffixes are the raster formats the loader decodes directly.
var imageSuffixes = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// Supported reports whether the loader handles files with this path's
// suffix.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || imageSuffixes[ext]
}

// Load produces the ordered page rasters of a source file. Image files
// yield one page; PDFs yield one page per document page rendered at dpi.
func Load(ctx context.Context, path string, dpi int) ([]document.PageImage, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return loadPDF(ctx, path, dpi)
	case imageSuffixes[ext]:
		page, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		return []document.PageImage{page}, nil
	default:
		return nil, errs.UnsupportedFormat(ext)
	}
}

// LoadBytes handles uploaded content. PDFs are staged in a temporary file
// because both pdfcpu validation and pdftoppm operate on paths.
func LoadBytes(ctx context.Context, payload []byte, filename string, dpi int) ([]document.PageImage, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		tmp, err := os.CreateTemp("", "ocr-upload-*.pdf")
		if err != nil {
			return nil, errs.LoadFailed(filename, err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(payload); err != nil {
			tmp.Close()
			return nil, errs.LoadFailed(filename, err)
		}
		tmp.Close()
		return loadPDF(ctx, tmp.Name(), dpi)
	}

	if !imageSuffixes[ext] {
		return nil, errs.UnsupportedFormat(ext)
	}
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, errs.LoadFailed(filename, err)
	}
	return []document.PageImage{{Index: 0, Image: img}}, nil
}

func loadImage(path string) (document.PageImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return document.PageImage{}, errs.LoadFailed(path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return document.PageImage{}, errs.LoadFailed(path, err)
	}
	return document.PageImage{Index: 0, Image: img}, nil
}

func loadPDF(ctx context.Context, path string, dpi int) ([]document.PageImage, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, errs.LoadFailed(path, err)
	}
	if count == 0 {
		return nil, errs.LoadFailed(path, fmt.Errorf("document has no pages"))
	}

	dir, err := os.MkdirTemp("", "ocr-raster-")
	if err != nil {
		return nil, errs.LoadFailed(path, err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", strconv.Itoa(dpi), "-png", path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errs.LoadFailed(path, fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(stderr.String())))
	}

	rendered, err := renderedPages(dir)
	if err != nil {
		return nil, errs.LoadFailed(path, err)
	}
	if len(rendered) != count {
		log.Warnf("rasterized %d of %d pages from %s", len(rendered), count, path)
	}
	if len(rendered) == 0 {
		return nil, errs.LoadFailed(path, fmt.Errorf("no pages rendered"))
	}

	pages := make([]document.PageImage, 0, len(rendered))
	for i, file := range rendered {
		f, err := os.Open(file)
		if err != nil {
			return nil, errs.LoadFailed(path, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, errs.LoadFailed(path, err)
		}
		pages = append(pages, document.PageImage{Index: i, Image: img})
	}
	return pages, nil
}

// renderedPages lists pdftoppm output files in page order. pdftoppm pads the
// page number to the digit count of the last page, so a numeric sort on the
// suffix is required rather than a lexical one.
func renderedPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type numbered struct {
		n    int
		path string
	}
	files := make([]numbered, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".png") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png"))
		if err != nil {
			continue
		}
		files = append(files, numbered{n: n, path: filepath.Join(dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}
