package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	err := LoadFailed("missing.pdf", errors.New("no such file"))
	if CodeOf(err) != CodeLoadFailed {
		t.Errorf("got %q, want %q", CodeOf(err), CodeLoadFailed)
	}

	wrapped := fmt.Errorf("job failed: %w", err)
	if CodeOf(wrapped) != CodeLoadFailed {
		t.Error("code lost through wrapping")
	}

	if CodeOf(errors.New("plain")) != "" {
		t.Error("plain error should carry no code")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := ExportFailed("/out/doc.docx", cause)
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}

func TestIsPageLevel(t *testing.T) {
	if !IsPageLevel(EngineFailed(2, "paddleocr", errors.New("boom"))) {
		t.Error("engine failure should be page-level")
	}
	if !IsPageLevel(PageTimeout(0, nil)) {
		t.Error("timeout should be page-level")
	}
	if IsPageLevel(LoadFailed("a.pdf", nil)) {
		t.Error("load failure should abort the job")
	}
	if IsPageLevel(UnsupportedFormat(".xyz")) {
		t.Error("unsupported format should abort the job")
	}
}

func TestErrorMessage(t *testing.T) {
	err := EngineFailed(3, "easyocr", errors.New("connection refused"))
	msg := err.Error()
	if msg != "ENGINE_FAILED: engine easyocr failed: connection refused" {
		t.Errorf("unexpected message: %q", msg)
	}
	if err.Page != 3 {
		t.Errorf("page: got %d, want 3", err.Page)
	}
}
