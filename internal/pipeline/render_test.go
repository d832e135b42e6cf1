package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/worker"
)

func sampleResult() *model.CompareResult {
	page := 2
	run := 0
	issues := []model.Issue{
		{ID: "a", Severity: model.SeverityMinor, Category: model.CategoryFormat, Location: model.Location{Section: model.SectionBody, BlockIndex: 0, RunIndex: &run}, Message: "Alinhamento diferente no parágrafo 1", TemplateValue: "center", CandidateValue: "left"},
		{ID: "b", Severity: model.SeverityCritical, Category: model.CategoryImage, Location: model.Location{Section: model.SectionHeader, PageNumber: &page}, Message: "Logotipo obrigatório ausente no header do documento", Hint: "O template possui logo no header, mas o documento não possui"},
	}
	return &model.CompareResult{
		Summary: model.Summarize(issues),
		Issues:  issues,
		Metadata: model.ResultMetadata{
			TemplateName:  "modelo.pdf",
			CandidateName: "entrega.pdf",
			FileType:      model.FileTypePDF,
			ParsedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Options:       model.DefaultCompareOptions(),
		},
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := NewRenderer(true).RenderJSON(sampleResult(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.CompareResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if len(decoded.Issues) != 2 || decoded.Summary.Critical != 1 {
		t.Errorf("Unexpected decoded result: %+v", decoded)
	}
	if !strings.Contains(string(data), `"parsed_at": "2026-03-01T12:00:00Z"`) {
		t.Error("Expected ISO-8601 timestamp in JSON")
	}
}

func TestMarkdown(t *testing.T) {
	md := NewRenderer(true).Markdown(sampleResult())

	required := []string{
		"# Relatório de Conformidade",
		"| **Template** | modelo.pdf |",
		"| 1 | 0 | 1 | 0 | 2 |",
		"## Crítico (1)",
		"## Menor (1)",
		"header #1 p.2",
		"body #1 run 1",
		"  - Template: `center`",
		"_Gerado por conformia.",
	}
	for _, s := range required {
		if !strings.Contains(md, s) {
			t.Errorf("Expected markdown to contain %q", s)
		}
	}

	// Critical group precedes minor group
	if strings.Index(md, "## Crítico") > strings.Index(md, "## Menor") {
		t.Error("Expected severity groups ordered most severe first")
	}
	if strings.Contains(md, "## Maior") {
		t.Error("Expected empty severity groups to be omitted")
	}
}

func TestMarkdown_NoIssuesNoFooter(t *testing.T) {
	result := &model.CompareResult{Summary: model.Summarize(nil), Issues: []model.Issue{}}
	md := NewRenderer(false).Markdown(result)

	if !strings.Contains(md, "Nenhuma divergência encontrada") {
		t.Error("Expected conformance note")
	}
	if strings.Contains(md, "Gerado por") {
		t.Error("Expected footer to be omitted")
	}
}

func TestRenderSummary_Filter(t *testing.T) {
	var buf bytes.Buffer
	filter := model.IssueFilter{Severities: []model.Severity{model.SeverityCritical}}
	NewRenderer(true).RenderSummary(&buf, sampleResult(), filter)

	out := buf.String()
	if !strings.Contains(out, "Issues: 1 critical, 0 major, 1 minor, 0 info") {
		t.Errorf("Expected full counts regardless of filter, got:\n%s", out)
	}
	if !strings.Contains(out, "Showing 1 of 2 issues") {
		t.Errorf("Expected filter note, got:\n%s", out)
	}
	if !strings.Contains(out, "Logotipo obrigatório ausente") {
		t.Error("Expected critical issue to be listed")
	}
	if strings.Contains(out, "Alinhamento diferente") {
		t.Error("Expected minor issue to be filtered out")
	}
}

func TestRenderBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(true).RenderBatchSummary(&buf, []*worker.CompareResult{
		{Candidate: "/tmp/ok.pdf", Result: sampleResult()},
		{Candidate: "/tmp/bad.pdf", Error: errors.New("parse failed")},
	})

	out := buf.String()
	if !strings.Contains(out, "ok.pdf") || !strings.Contains(out, "ERROR: parse failed") {
		t.Errorf("Unexpected batch summary:\n%s", out)
	}
	if strings.Contains(out, "/tmp/") {
		t.Error("Expected base names only")
	}
}

func TestRenderLLMMarkdown_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.llm.md")
	if err := NewRenderer(true).RenderLLMMarkdown("", path); err != nil {
		t.Fatalf("RenderLLMMarkdown failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected no file for empty narrative")
	}
}
