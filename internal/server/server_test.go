package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pietr00ass/OCR-SG/internal/config"
	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/pipeline"
)

// fakeEasyOCR stands in for the EasyOCR serving endpoint so requests can run
// through the whole pipeline without any OCR backend installed.
func fakeEasyOCR(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"text": text, "confidence": 0.91, "bbox": [][2]int{{0, 0}, {50, 0}, {50, 12}, {0, 12}}},
			},
		})
	}))
}

func newTestServer(t *testing.T, easyOCRURL string) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Workers = 2
	cfg.EasyOCRURL = easyOCRURL
	runner, err := pipeline.NewRunner(cfg)
	require.NoError(t, err)
	t.Cleanup(runner.Close)
	return New(runner)
}

func writeTestPNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOCRPath_MissingFile(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")
	body := bytes.NewBufferString(`{"path":"/nonexistent/scan.png"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocr/path", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOCRPath_EmptyPath(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocr/path", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOCR_NoFileOrURL(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "url is required")
}

func TestOCR_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewBufferString(`{`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOCR_MultipartUpload(t *testing.T) {
	backend := fakeEasyOCR(t, "upload works")
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	pngPath := writeTestPNG(t, t.TempDir())
	payload, err := os.ReadFile(pngPath)
	require.NoError(t, err)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "scan.png")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, form.WriteField("engine", "easyocr"))
	require.NoError(t, form.WriteField("languages", "pol+eng"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/ocr", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result document.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "scan.png", result.Source)
	assert.Equal(t, "easyocr", result.Engine)
	assert.Equal(t, []string{"pol", "eng"}, result.Languages)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "upload works", result.Pages[0].Text)
	assert.Greater(t, result.Pages[0].Confidence, 0.0)
}

func TestOCR_MultipartWithoutFileField(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("engine", "tesseract"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/ocr", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file field is required")
}

func TestOCR_UnsupportedUploadFormat(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/ocr", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOCRPath_FullRun(t *testing.T) {
	backend := fakeEasyOCR(t, "local file works")
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	pngPath := writeTestPNG(t, t.TempDir())
	payload, err := json.Marshal(map[string]any{"path": pngPath, "engine": "easyocr"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocr/path", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result document.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "scan.png", result.Source)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "local file works", result.Pages[0].Text)
}

func TestOCR_FetchesURL(t *testing.T) {
	backend := fakeEasyOCR(t, "remote works")
	defer backend.Close()

	pngPath := writeTestPNG(t, t.TempDir())
	payload, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer remote.Close()

	srv := newTestServer(t, backend.URL)
	body, err := json.Marshal(map[string]any{"url": remote.URL + "/scan.png", "engine": "easyocr"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result document.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "scan.png", result.Source)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "remote works", result.Pages[0].Text)
}

func TestSplitLanguages(t *testing.T) {
	assert.Equal(t, []string{"pol", "eng"}, splitLanguages("pol+eng"))
	assert.Equal(t, []string{"pol", "eng"}, splitLanguages("pol, eng"))
	assert.Nil(t, splitLanguages(""))
}
