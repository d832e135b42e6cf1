package extract

import (
	"errors"
	"testing"

	"github.com/ppiankov/conformia/internal/model"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		want      model.FileType
	}{
		{"report.pdf", "", model.FileTypePDF},
		{"REPORT.PDF", "", model.FileTypePDF},
		{"letter.docx", "", model.FileTypeDOCX},
		{"upload.bin", "application/pdf", model.FileTypePDF},
		{"upload", mimeDOCX, model.FileTypeDOCX},
		{"letter.docx", "application/pdf; charset=binary", model.FileTypePDF},
		{"letter.docx", "application/octet-stream", model.FileTypeDOCX},
	}

	for _, tt := range tests {
		got, err := Detect(tt.name, tt.mediaType)
		if err != nil {
			t.Errorf("Detect(%q, %q): %v", tt.name, tt.mediaType, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Detect(%q, %q) = %q, want %q", tt.name, tt.mediaType, got, tt.want)
		}
	}

	for _, name := range []string{"notes.txt", "legacy.doc", "noext"} {
		if _, err := Detect(name, ""); !errors.Is(err, model.ErrUnsupportedFileType) {
			t.Errorf("Detect(%q): expected ErrUnsupportedFileType, got %v", name, err)
		}
	}
}

func TestCheckSize(t *testing.T) {
	if err := CheckSize("a.pdf", model.MaxFileSize, 0); err != nil {
		t.Errorf("Expected exactly the limit to pass, got %v", err)
	}
	if err := CheckSize("a.pdf", model.MaxFileSize+1, 0); !errors.Is(err, model.ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %v", err)
	}
	if err := CheckSize("a.pdf", 2048, 1024); !errors.Is(err, model.ErrFileTooLarge) {
		t.Errorf("Expected custom limit to apply, got %v", err)
	}
}

func TestNewParser(t *testing.T) {
	for _, ft := range []model.FileType{model.FileTypePDF, model.FileTypeDOCX} {
		p, err := NewParser(ft, nil, 2)
		if err != nil {
			t.Fatalf("NewParser(%s): %v", ft, err)
		}
		if p.FileType() != ft {
			t.Errorf("Expected parser for %s, got %s", ft, p.FileType())
		}
	}
	if _, err := NewParser("odt", nil, 2); !errors.Is(err, model.ErrUnsupportedFileType) {
		t.Errorf("Expected ErrUnsupportedFileType, got %v", err)
	}
}
