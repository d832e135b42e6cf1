package model

import "errors"

// Parse and pipeline failures. Callers match them with errors.Is; the
// wrapping error carries the descriptive detail.
var (
	ErrUnsupportedFileType  = errors.New("unsupported file type (expected PDF or DOCX)")
	ErrFileTooLarge         = errors.New("file too large")
	ErrMalformedArchive     = errors.New("malformed DOCX archive")
	ErrInvalidStructure     = errors.New("invalid DOCX document structure")
	ErrRenderingUnavailable = errors.New("PDF rendering library not initialized")
	ErrUnreadableDocument   = errors.New("unreadable PDF document")
	ErrFormatMismatch       = errors.New("cannot compare documents of different formats")
)
