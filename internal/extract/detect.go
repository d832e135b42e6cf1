package extract

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/conformia/internal/model"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Parser decodes raw document bytes into the canonical model
type Parser interface {
	FileType() model.FileType
	Parse(ctx context.Context, data []byte) (*model.DocumentStructure, error)
}

// NewParser returns the parser for a file type
func NewParser(fileType model.FileType, logger *slog.Logger, pageWorkers int) (Parser, error) {
	switch fileType {
	case model.FileTypePDF:
		return NewPDFParser(logger, pageWorkers), nil
	case model.FileTypeDOCX:
		return NewDocxParser(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedFileType, fileType)
	}
}

// Detect resolves the file type from a media type, falling back to the
// file name's extension. mediaType may be empty.
func Detect(name, mediaType string) (model.FileType, error) {
	if mediaType != "" {
		if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
			switch mt {
			case mimePDF:
				return model.FileTypePDF, nil
			case mimeDOCX:
				return model.FileTypeDOCX, nil
			}
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return model.FileTypePDF, nil
	case ".docx":
		return model.FileTypeDOCX, nil
	}

	return "", fmt.Errorf("%w: %s", model.ErrUnsupportedFileType, name)
}

// CheckSize rejects inputs above limit bytes. A non-positive limit falls back
// to model.MaxFileSize.
func CheckSize(name string, size, limit int64) error {
	if limit <= 0 {
		limit = model.MaxFileSize
	}
	if size > limit {
		return fmt.Errorf("%w: %s is %s, limit %s", model.ErrFileTooLarge,
			name, humanize.Bytes(uint64(size)), humanize.Bytes(uint64(limit)))
	}
	return nil
}
