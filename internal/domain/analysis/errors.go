package analysis

import (
	"errors"
	"fmt"
)

// ErrNoFile means the multipart request carried no rent roll file.
var ErrNoFile = errors.New("no rent roll file provided")

// ErrEmptyFile means a zero-byte upload.
var ErrEmptyFile = errors.New("file is empty")

// ErrFileTooLarge means the upload exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file size exceeds 25MB limit")

// ErrMissingFileID means the provider accepted the upload but returned no id.
var ErrMissingFileID = errors.New("provider response missing file id")

// UnsupportedFileTypeError carries the offending MIME type past the allow-list.
type UnsupportedFileTypeError struct {
	MimeType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s. Please upload PDF, Excel (.xlsx, .xls), CSV, or Apple Numbers files only", e.MimeType)
}

// ContextGatherError marks a failed web-search phase. Enrichment is
// all-or-nothing: once requested it is never silently skipped, so the
// message states the abort explicitly. The wording is part of the API
// contract surfaced to the dashboard.
type ContextGatherError struct {
	Err error
}

func (e *ContextGatherError) Error() string {
	return fmt.Sprintf("Web search failed: %v. Analysis aborted as web search was required.", e.Err)
}

func (e *ContextGatherError) Unwrap() error { return e.Err }

// UploadError carries the provider status and body from a rejected file upload.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("file upload rejected by provider: status %d: %s", e.StatusCode, e.Body)
}

// ParseError means the model's output did not match the response schema.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse structured analysis response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AnalysisError is the terminal wrapper every stage failure is folded into
// before it reaches the HTTP boundary.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("failed to analyze rent roll: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
