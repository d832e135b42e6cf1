package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/conformia/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"entregas/relatorio final.docx", "relatorio-final"},
		{`C:\docs\contrato.pdf`, "contrato"},
		{"https://example.com/files/oficio.pdf?download=1", "oficio"},
		{"https://example.com/files/", "files"},
		{"a:b*c?.docx", "a_b_c"},
		{"modelo|v2<final>.docx", "modelo_v2_final_"},
		{"", "report"},
		{"..", "report"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	got := sanitizeFilename(strings.Repeat("á", 150) + ".docx")
	if n := len([]rune(got)); n != 100 {
		t.Errorf("Expected 100 runes, got %d", n)
	}
}

func TestUniqueSlug(t *testing.T) {
	used := make(map[string]int)
	got := []string{
		uniqueSlug("contrato", used),
		uniqueSlug("contrato", used),
		uniqueSlug("oficio", used),
		uniqueSlug("contrato", used),
	}
	want := []string{"contrato", "contrato-2", "oficio", "contrato-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slug %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParseThreshold(t *testing.T) {
	if sev, err := parseThreshold(""); err != nil || sev != "" {
		t.Errorf("Expected empty threshold to disable gating, got %q, %v", sev, err)
	}
	if sev, err := parseThreshold("Major"); err != nil || sev != model.SeverityMajor {
		t.Errorf("Expected major, got %q, %v", sev, err)
	}
	if _, err := parseThreshold("blocker"); err == nil {
		t.Error("Expected error for unknown severity")
	}
}

func TestParseFilter(t *testing.T) {
	filter, err := parseFilter([]string{"critical", "minor"}, []string{"text"}, "logo")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(filter.Severities) != 2 || filter.Severities[1] != model.SeverityMinor {
		t.Errorf("Unexpected severities: %v", filter.Severities)
	}
	if len(filter.Categories) != 1 || filter.Categories[0] != model.CategoryText {
		t.Errorf("Unexpected categories: %v", filter.Categories)
	}
	if filter.Search != "logo" {
		t.Errorf("Expected search 'logo', got %q", filter.Search)
	}

	if _, err := parseFilter(nil, []string{"layout"}, ""); err == nil {
		t.Error("Expected error for unknown category")
	}
	if _, err := parseFilter([]string{"fatal"}, nil, ""); err == nil {
		t.Error("Expected error for unknown severity")
	}
}

func TestGate(t *testing.T) {
	result := &model.CompareResult{Summary: model.Summarize([]model.Issue{
		{Severity: model.SeverityMajor, Category: model.CategoryTable},
		{Severity: model.SeverityInfo, Category: model.CategoryFormat},
	})}

	if err := gate(result, ""); err != nil {
		t.Errorf("Expected no gating without threshold, got %v", err)
	}
	if err := gate(result, model.SeverityCritical); err != nil {
		t.Errorf("Expected critical threshold to pass, got %v", err)
	}

	err := gate(result, model.SeverityMajor)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("Expected ErrCheckFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "1 issues at or above major") {
		t.Errorf("Unexpected message: %v", err)
	}

	err = gate(result, model.SeverityInfo)
	if err == nil || !strings.Contains(err.Error(), "2 issues") {
		t.Errorf("Expected 2 issues at or above info, got %v", err)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".conformia", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	content := string(data)
	for _, want := range []string{"# Conformia Configuration File", "rigor_level: standard", "OPENAI_API_KEY"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected config to contain %q", want)
		}
	}
	if strings.Contains(content, "api_key") {
		t.Error("Expected API key to be omitted from the written config")
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestIgnoreFontUsage(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("ignore-font")
	if flag == nil {
		t.Fatal("Expected ignore-font flag")
	}

	tests := []string{"bold", "italic", "underline", "size", "color", "font family"}
	for _, attr := range tests {
		if !strings.Contains(flag.Usage, attr) {
			t.Errorf("Expected ignore-font usage to mention %q, got %q", attr, flag.Usage)
		}
	}
}
