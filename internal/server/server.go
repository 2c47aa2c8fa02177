// Package server exposes the OCR pipeline over HTTP.
//
// Endpoints:
//
//	GET  /health    liveness probe
//	POST /ocr       multipart upload or JSON {url, engine, languages, dpi}
//	POST /ocr/path  JSON {path, ...} for server-local files
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Pietr00ass/OCR-SG/internal/errs"
	"github.com/Pietr00ass/OCR-SG/internal/log"
	"github.com/Pietr00ass/OCR-SG/internal/pipeline"
)

// maxUploadBytes bounds multipart uploads and URL downloads.
const maxUploadBytes = 64 << 20

// Server routes OCR requests to a pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	router  *mux.Router
	fetcher *http.Client
}

// New builds the HTTP server around an existing runner.
func New(runner *pipeline.Runner) *Server {
	s := &Server{
		runner:  runner,
		router:  mux.NewRouter(),
		fetcher: &http.Client{Timeout: 2 * time.Minute},
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ocr", s.handleOCR).Methods(http.MethodPost)
	s.router.HandleFunc("/ocr/path", s.handleOCRPath).Methods(http.MethodPost)
	return s
}

// Handler returns the router wrapped in CORS middleware.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.router)
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Infof("HTTP API listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ocrJSONBody is the JSON alternative to a multipart upload.
type ocrJSONBody struct {
	URL       string   `json:"url"`
	Engine    string   `json:"engine"`
	Languages []string `json:"languages"`
	DPI       int      `json:"dpi"`
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	var req pipeline.Request
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("malformed upload: %w", err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("file field is required"))
			return
		}
		defer file.Close()
		payload, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req = pipeline.Request{
			Bytes:     payload,
			Filename:  header.Filename,
			Engine:    r.FormValue("engine"),
			Languages: splitLanguages(r.FormValue("languages")),
		}
		if dpi, err := strconv.Atoi(r.FormValue("dpi")); err == nil {
			req.DPI = dpi
		}

	default:
		var body ocrJSONBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
			return
		}
		if body.URL == "" {
			writeError(w, http.StatusBadRequest, errors.New("a file upload or url is required"))
			return
		}
		payload, filename, err := s.fetchURL(r, body.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("cannot fetch url: %w", err))
			return
		}
		req = pipeline.Request{
			Bytes:     payload,
			Filename:  filename,
			Engine:    body.Engine,
			Languages: body.Languages,
			DPI:       body.DPI,
		}
	}

	s.run(w, r, req)
}

// ocrPathBody requests OCR of a file already on the server host.
type ocrPathBody struct {
	Path      string   `json:"path"`
	Engine    string   `json:"engine"`
	Languages []string `json:"languages"`
	DPI       int      `json:"dpi"`
}

func (s *Server) handleOCRPath(w http.ResponseWriter, r *http.Request) {
	var body ocrPathBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}
	if body.Path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	if _, err := os.Stat(body.Path); err != nil {
		writeError(w, http.StatusNotFound, errors.New("file does not exist"))
		return
	}

	s.run(w, r, pipeline.Request{
		Path:      body.Path,
		Engine:    body.Engine,
		Languages: body.Languages,
		DPI:       body.DPI,
	})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch errs.CodeOf(err) {
		case errs.CodeLoadFailed, errs.CodeUnsupportedFormat:
			status = http.StatusUnprocessableEntity
		case errs.CodeUnsupportedLanguage:
			status = http.StatusBadRequest
		}
		log.Errorf("OCR request failed: %v", err)
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// fetchURL downloads remote content and derives a filename for format
// detection, falling back to the content type when the URL path carries no
// usable name.
func (s *Server) fetchURL(r *http.Request, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("remote returned %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes))
	if err != nil {
		return nil, "", err
	}

	filename := path.Base(parsed.Path)
	if !strings.Contains(filename, ".") {
		switch resp.Header.Get("Content-Type") {
		case "application/pdf":
			filename = "remote.pdf"
		case "image/jpeg":
			filename = "remote.jpg"
		default:
			filename = "remote.png"
		}
	}
	return payload, filename, nil
}

func splitLanguages(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '+' || r == ' '
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
