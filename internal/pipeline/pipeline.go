// Package pipeline wires the OCR stages into a single forward pass:
// loader, preprocessor, dispatcher with the configured recognition engine,
// and postprocessor. Load failures abort the job; page-level recognition
// failures degrade individual pages only.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Pietr00ass/OCR-SG/internal/config"
	"github.com/Pietr00ass/OCR-SG/internal/dispatch"
	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/engine"
	"github.com/Pietr00ass/OCR-SG/internal/loader"
	"github.com/Pietr00ass/OCR-SG/internal/log"
	"github.com/Pietr00ass/OCR-SG/internal/postprocess"
	"github.com/Pietr00ass/OCR-SG/internal/preprocess"
)

// Request describes one OCR job. Exactly one of Path or Bytes must be set;
// Filename names uploaded content for format detection and reporting.
type Request struct {
	Path     string
	Bytes    []byte
	Filename string

	// Engine, Languages and DPI override the runner configuration when
	// non-zero.
	Engine    string
	Languages []string
	DPI       int

	// JoinHyphens merges words split across line breaks during cleanup.
	JoinHyphens bool
}

// Runner executes OCR jobs against a shared worker pool.
type Runner struct {
	cfg        *config.Config
	dispatcher *dispatch.Dispatcher
}

// NewRunner builds a runner from configuration. Close must be called when
// the runner is no longer needed.
func NewRunner(cfg *config.Config) (*Runner, error) {
	d, err := dispatch.New(cfg.Workers, cfg.PageTimeout)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, dispatcher: d}, nil
}

// Close releases the worker pool.
func (r *Runner) Close() {
	r.dispatcher.Close()
}

// Run executes the full pipeline for one document and returns its result.
func (r *Runner) Run(ctx context.Context, req Request) (*document.Result, error) {
	engineName := req.Engine
	if engineName == "" {
		engineName = r.cfg.Engine
	}
	languages := req.Languages
	if len(languages) == 0 {
		languages = r.cfg.Languages
	}
	dpi := req.DPI
	if dpi <= 0 {
		dpi = r.cfg.DPI
	}

	eng, err := engine.New(engine.Options{
		Name:           engineName,
		TessdataPrefix: r.cfg.TessdataPrefix,
		PaddleURL:      r.cfg.PaddleURL,
		EasyOCRURL:     r.cfg.EasyOCRURL,
	})
	if err != nil {
		return nil, err
	}

	source := req.Filename
	var pages []document.PageImage
	if req.Path != "" {
		source = filepath.Base(req.Path)
		pages, err = loader.Load(ctx, req.Path, dpi)
	} else {
		pages, err = loader.LoadBytes(ctx, req.Bytes, req.Filename, dpi)
	}
	if err != nil {
		return nil, err
	}

	opts := preprocess.Options{
		Grayscale:        r.cfg.Preprocess.Grayscale,
		Denoise:          r.cfg.Preprocess.Denoise,
		Threshold:        r.cfg.Preprocess.Threshold,
		Deskew:           r.cfg.Preprocess.Deskew,
		ScaleUp:          r.cfg.Preprocess.ScaleUp,
		RemoveBackground: r.cfg.Preprocess.RemoveBackground,
	}

	// Preprocessing stays synchronous; only recognition is dispatched to
	// the pool.
	processed := make([]document.PageImage, len(pages))
	for i, page := range pages {
		processed[i] = preprocess.Apply(page, opts)
	}

	started := time.Now()
	results := r.dispatcher.Run(ctx, processed, func(ctx context.Context, page document.PageImage) (document.PageResult, error) {
		return eng.Recognize(ctx, page, languages)
	})
	log.Infof("recognized %d pages of %s with %s in %s", len(results), source, engineName, time.Since(started).Round(time.Millisecond))

	result := &document.Result{
		Source:    source,
		Engine:    engineName,
		Languages: languages,
		Pages:     results,
	}
	postprocess.Finalize(result, req.JoinHyphens)
	return result, nil
}
