// Package config holds the configuration surface of the OCR pipeline.
//
// Values come from OCRSG_* environment variables (a .env file is honored when
// present) with defaults matching the application defaults: the Tesseract
// engine, Polish and English language data, 300 DPI rasterization and four
// recognition workers.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds pipeline and interface configuration.
type Config struct {
	// Engine selects the recognition backend: tesseract, paddleocr or easyocr.
	Engine string

	// Languages are the OCR language codes passed to the engine.
	Languages []string

	// DPI is the rasterization resolution for paged documents.
	DPI int

	// Workers bounds the recognition worker pool.
	Workers int

	// PageTimeout is the per-page recognition time budget.
	PageTimeout time.Duration

	// Preprocess flags, applied in the fixed pipeline order.
	Preprocess PreprocessFlags

	// PaddleURL and EasyOCRURL point at the HTTP serving endpoints backing
	// the non-Tesseract engines.
	PaddleURL  string
	EasyOCRURL string

	// TessdataPrefix overrides the Tesseract training data directory.
	TessdataPrefix string

	// Addr is the HTTP API listen address.
	Addr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// PreprocessFlags enables individual image transforms. Application order is
// fixed by the preprocessor regardless of declaration order.
type PreprocessFlags struct {
	Grayscale        bool
	Denoise          bool
	Threshold        bool
	Deskew           bool
	ScaleUp          bool
	RemoveBackground bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine:      "tesseract",
		Languages:   []string{"pol", "eng"},
		DPI:         300,
		Workers:     4,
		PageTimeout: 120 * time.Second,
		Preprocess: PreprocessFlags{
			Grayscale: true,
			Denoise:   true,
			Threshold: true,
			Deskew:    true,
			ScaleUp:   true,
		},
		PaddleURL:  "http://127.0.0.1:8868",
		EasyOCRURL: "http://127.0.0.1:8869",
		Addr:       ":8080",
		LogLevel:   "info",
	}
}

// Load builds the configuration from the environment on top of defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Engine = getEnvOrDefault("OCRSG_ENGINE", cfg.Engine)
	cfg.Languages = getEnvAsListOrDefault("OCRSG_LANGUAGES", cfg.Languages)
	cfg.DPI = getEnvAsIntOrDefault("OCRSG_DPI", cfg.DPI)
	cfg.Workers = getEnvAsIntOrDefault("OCRSG_WORKERS", cfg.Workers)
	cfg.PageTimeout = getEnvAsDurationOrDefault("OCRSG_PAGE_TIMEOUT", cfg.PageTimeout)
	cfg.PaddleURL = getEnvOrDefault("OCRSG_PADDLE_URL", cfg.PaddleURL)
	cfg.EasyOCRURL = getEnvOrDefault("OCRSG_EASYOCR_URL", cfg.EasyOCRURL)
	cfg.TessdataPrefix = getEnvOrDefault("OCRSG_TESSDATA_PREFIX", cfg.TessdataPrefix)
	cfg.Addr = getEnvOrDefault("OCRSG_ADDR", cfg.Addr)
	cfg.LogLevel = getEnvOrDefault("OCRSG_LOG_LEVEL", cfg.LogLevel)

	cfg.Preprocess.Grayscale = getEnvAsBoolOrDefault("OCRSG_PRE_GRAYSCALE", cfg.Preprocess.Grayscale)
	cfg.Preprocess.Denoise = getEnvAsBoolOrDefault("OCRSG_PRE_DENOISE", cfg.Preprocess.Denoise)
	cfg.Preprocess.Threshold = getEnvAsBoolOrDefault("OCRSG_PRE_THRESHOLD", cfg.Preprocess.Threshold)
	cfg.Preprocess.Deskew = getEnvAsBoolOrDefault("OCRSG_PRE_DESKEW", cfg.Preprocess.Deskew)
	cfg.Preprocess.ScaleUp = getEnvAsBoolOrDefault("OCRSG_PRE_SCALE_UP", cfg.Preprocess.ScaleUp)
	cfg.Preprocess.RemoveBackground = getEnvAsBoolOrDefault("OCRSG_PRE_REMOVE_BACKGROUND", cfg.Preprocess.RemoveBackground)
	return cfg
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvAsBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvAsDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvAsListOrDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
