package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Pietr00ass/OCR-SG/internal/config"
	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/export"
	"github.com/Pietr00ass/OCR-SG/internal/loader"
	"github.com/Pietr00ass/OCR-SG/internal/log"
	"github.com/Pietr00ass/OCR-SG/internal/pipeline"
)

// runOCR implements the batch command: collect inputs, run the pipeline on
// each and export the results.
func runOCR(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("ocr", flag.ContinueOnError)
	engineName := flags.String("engine", cfg.Engine, "OCR engine: tesseract, paddleocr or easyocr")
	languages := flags.String("languages", strings.Join(cfg.Languages, ","), "comma-separated language codes (e.g. pol,eng)")
	dpi := flags.Int("dpi", cfg.DPI, "rasterization DPI for PDF pages")
	recursive := flags.Bool("recursive", false, "walk directories recursively")
	format := flags.String("format", export.FormatTxt, "export format: txt or docx")
	outputDir := flags.String("output-dir", "output", "directory for exported documents")
	jsonOutput := flags.String("json-output", "", "write a JSON summary of all results to this path")
	workers := flags.Int("workers", cfg.Workers, "number of recognition workers")
	joinHyphens := flags.Bool("join-hyphens", false, "merge words split across line breaks")
	paths, err := parseArgs(flags, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("ocr: at least one input path is required")
	}

	cfg.Engine = *engineName
	cfg.Languages = splitList(*languages)
	cfg.DPI = *dpi
	cfg.Workers = *workers

	inputs, err := gatherPaths(paths, *recursive)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("ocr: no supported files found")
	}

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		return err
	}

	// Pages within a document already fan out across the worker pool, so
	// file-level concurrency stays modest.
	results := make([]*document.Result, len(inputs))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(2)
	for i, input := range inputs {
		g.Go(func() error {
			result, err := runner.Run(ctx, pipeline.Request{Path: input, JoinHyphens: *joinHyphens})
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			results[i] = result

			base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			outPath := filepath.Join(*outputDir, base+"."+*format)
			if err := export.Save(outPath, *format, result); err != nil {
				return err
			}
			fmt.Printf("%s -> %s (%d pages)\n", input, outPath, len(result.Pages))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if *jsonOutput != "" {
		if err := writeJSONSummary(*jsonOutput, results); err != nil {
			return err
		}
		log.Infof("wrote JSON summary to %s", *jsonOutput)
	}
	return nil
}

// parseArgs parses the flag set while allowing flags to follow positional
// arguments, as in "ocr scan.png --engine easyocr". flag.Parse stops at the
// first non-flag token, so remaining arguments are re-parsed after each
// positional until everything is consumed. Unknown flags are errors rather
// than silently treated as paths.
func parseArgs(flags *flag.FlagSet, args []string) ([]string, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	var paths []string
	rest := flags.Args()
	for len(rest) > 0 {
		paths = append(paths, rest[0])
		if err := flags.Parse(rest[1:]); err != nil {
			return nil, err
		}
		rest = flags.Args()
	}
	return paths, nil
}

// gatherPaths collects supported files from the inputs. Directories are
// walked one level deep, or fully when recursive is set.
func gatherPaths(inputs []string, recursive bool) ([]string, error) {
	var collected []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			log.Warnf("path does not exist: %s", input)
			continue
		}
		if !info.IsDir() {
			if loader.Supported(input) {
				collected = append(collected, input)
			} else {
				log.Warnf("skipping unsupported file: %s", input)
			}
			continue
		}

		if recursive {
			err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && loader.Supported(path) {
					collected = append(collected, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				if path := filepath.Join(input, e.Name()); loader.Supported(path) {
					collected = append(collected, path)
				}
			}
		}
	}
	return collected, nil
}

// writeJSONSummary stores all document results in the API response shape.
func writeJSONSummary(path string, results []*document.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
