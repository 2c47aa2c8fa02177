// Package errs defines the error taxonomy shared by the OCR pipeline.
//
// Errors fall into two classes: pipeline-level errors (load, export) abort
// the whole job, while page-level errors (engine failure, timeout) degrade
// only the page they occurred on. Callers inspect classes via CodeOf.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure category.
type Code string

const (
	// CodeLoadFailed marks an unreadable or zero-page source document.
	CodeLoadFailed Code = "LOAD_FAILED"

	// CodeUnsupportedFormat marks a source or export format the pipeline
	// does not handle.
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// CodeEngineFailed marks a recognition backend failure.
	CodeEngineFailed Code = "ENGINE_FAILED"

	// CodeUnsupportedLanguage marks a language the selected engine cannot
	// recognize.
	CodeUnsupportedLanguage Code = "UNSUPPORTED_LANGUAGE"

	// CodeExportFailed marks a failure writing the final document.
	CodeExportFailed Code = "EXPORT_FAILED"

	// CodePageTimeout marks a page that exceeded its recognition budget.
	CodePageTimeout Code = "PAGE_TIMEOUT"
)

// Error is a coded pipeline error. Page is -1 for document-level errors.
type Error struct {
	Code    Code
	Message string
	Page    int
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a document-level error with the given code.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Page: -1, Cause: cause}
}

// NewPage creates a page-level error attributed to the given page index.
func NewPage(code Code, page int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Page: page, Cause: cause}
}

// LoadFailed reports an unreadable source.
func LoadFailed(path string, cause error) *Error {
	return New(CodeLoadFailed, fmt.Sprintf("cannot load %s", path), cause)
}

// UnsupportedFormat reports a format the pipeline does not handle.
func UnsupportedFormat(what string) *Error {
	return New(CodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", what), nil)
}

// EngineFailed reports a recognition backend failure on a page.
func EngineFailed(page int, engine string, cause error) *Error {
	return NewPage(CodeEngineFailed, page, fmt.Sprintf("engine %s failed", engine), cause)
}

// UnsupportedLanguage reports a language the engine cannot handle.
func UnsupportedLanguage(engine, lang string) *Error {
	return New(CodeUnsupportedLanguage, fmt.Sprintf("engine %s does not support language %q", engine, lang), nil)
}

// ExportFailed reports a failure writing the exported document.
func ExportFailed(path string, cause error) *Error {
	return New(CodeExportFailed, fmt.Sprintf("cannot export to %s", path), cause)
}

// PageTimeout reports a page exceeding its recognition time budget.
func PageTimeout(page int, cause error) *Error {
	return NewPage(CodePageTimeout, page, "recognition timed out", cause)
}

// CodeOf returns the code carried by err, or "" when err is not a pipeline
// error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsPageLevel reports whether err degrades a single page rather than the
// whole job.
func IsPageLevel(err error) bool {
	switch CodeOf(err) {
	case CodeEngineFailed, CodePageTimeout:
		return true
	}
	return false
}
