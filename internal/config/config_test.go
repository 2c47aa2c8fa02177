package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "tesseract", cfg.Engine)
	assert.Equal(t, []string{"pol", "eng"}, cfg.Languages)
	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 120*time.Second, cfg.PageTimeout)
	assert.True(t, cfg.Preprocess.Grayscale)
	assert.True(t, cfg.Preprocess.Deskew)
	assert.False(t, cfg.Preprocess.RemoveBackground)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OCRSG_ENGINE", "easyocr")
	t.Setenv("OCRSG_LANGUAGES", "deu, fra ,")
	t.Setenv("OCRSG_DPI", "150")
	t.Setenv("OCRSG_WORKERS", "8")
	t.Setenv("OCRSG_PAGE_TIMEOUT", "45s")
	t.Setenv("OCRSG_PRE_DESKEW", "false")
	t.Setenv("OCRSG_PRE_REMOVE_BACKGROUND", "true")
	t.Setenv("OCRSG_ADDR", "127.0.0.1:9090")

	cfg := Load()

	assert.Equal(t, "easyocr", cfg.Engine)
	assert.Equal(t, []string{"deu", "fra"}, cfg.Languages)
	assert.Equal(t, 150, cfg.DPI)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 45*time.Second, cfg.PageTimeout)
	assert.False(t, cfg.Preprocess.Deskew)
	assert.True(t, cfg.Preprocess.RemoveBackground)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
}

func TestLoad_MalformedValuesKeepDefaults(t *testing.T) {
	t.Setenv("OCRSG_DPI", "not-a-number")
	t.Setenv("OCRSG_PAGE_TIMEOUT", "soon")
	t.Setenv("OCRSG_PRE_THRESHOLD", "maybe")

	cfg := Load()

	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, 120*time.Second, cfg.PageTimeout)
	assert.True(t, cfg.Preprocess.Threshold)
}
