package analysis

import (
	"strings"

	domain "github.com/propwatch/rentroll-risk/internal/domain/analysis"
)

// Allow-lists for rent-roll documents. A file passes when either its declared
// MIME type or its extension matches; the two checks are independent because
// browsers and spreadsheet exports frequently disagree on content types.
var supportedMimeTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel":                                          true, // .xls
	"text/csv":                                                          true,
	"application/vnd.apple.numbers":                                     true,
}

var supportedExtensions = map[string]bool{
	".pdf":     true,
	".xlsx":    true,
	".xls":     true,
	".csv":     true,
	".numbers": true,
}

// SupportedExtensions lists the accepted file extensions for the capability
// endpoint.
func SupportedExtensions() []string {
	return []string{".pdf", ".xlsx", ".xls", ".csv", ".numbers"}
}

// ValidateFileType checks the declared MIME type and the filename extension
// against the allow-lists. OR semantics: passing one check is enough.
func ValidateFileType(mimeType, fileName string) error {
	if supportedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))] {
		return nil
	}
	name := strings.ToLower(fileName)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		if supportedExtensions[name[idx:]] {
			return nil
		}
	}
	return &domain.UnsupportedFileTypeError{MimeType: mimeType}
}

// ValidateDocument runs the pre-flight checks on an upload before any
// external call is made.
func ValidateDocument(doc domain.DocumentFile) error {
	if doc.Size == 0 && len(doc.Data) == 0 {
		return domain.ErrEmptyFile
	}
	if doc.Size > domain.MaxFileSize || int64(len(doc.Data)) > domain.MaxFileSize {
		return domain.ErrFileTooLarge
	}
	return ValidateFileType(doc.MimeType, doc.Name)
}
