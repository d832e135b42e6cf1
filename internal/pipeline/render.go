package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/worker"
)

// Renderer writes comparison results as JSON, Markdown and terminal text
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the complete result
func (r *Renderer) RenderJSON(result *model.CompareResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(result *model.CompareResult, path string) error {
	return writeFile(path, []byte(r.Markdown(result)))
}

// RenderLLMMarkdown writes the separate narrative document
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	if markdown == "" {
		return nil
	}
	return writeFile(path, []byte(markdown))
}

// Markdown renders result as a Markdown document. Issues are grouped by
// severity, most severe first, keeping emission order within a group.
func (r *Renderer) Markdown(result *model.CompareResult) string {
	var sb strings.Builder
	meta := result.Metadata

	sb.WriteString("# Relatório de Conformidade\n\n")
	fmt.Fprintf(&sb, "| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| **Template** | %s |\n", mdEscape(meta.TemplateName))
	fmt.Fprintf(&sb, "| **Documento** | %s |\n", mdEscape(meta.CandidateName))
	fmt.Fprintf(&sb, "| **Formato** | %s |\n", meta.FileType)
	fmt.Fprintf(&sb, "| **Rigor** | %s |\n", meta.Options.RigorLevel)
	if !meta.ParsedAt.IsZero() {
		fmt.Fprintf(&sb, "| **Data** | %s |\n", meta.ParsedAt.Format("2006-01-02 15:04:05 UTC"))
	}

	s := result.Summary
	sb.WriteString("\n## Resumo\n\n")
	fmt.Fprintf(&sb, "| Crítico | Maior | Menor | Info | Total |\n|---|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d |\n", s.Critical, s.Major, s.Minor, s.Info, s.Total())

	if len(result.Issues) == 0 {
		sb.WriteString("\nNenhuma divergência encontrada. O documento está conforme o template.\n")
	}

	for _, sev := range model.Severities {
		issues := model.FilterIssues(result.Issues, model.IssueFilter{Severities: []model.Severity{sev}})
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s (%d)\n\n", severityLabel(sev), len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- **[%s]** %s _(%s)_\n", issue.Category, mdEscape(issue.Message), locationLabel(issue.Location))
			if issue.Hint != "" {
				fmt.Fprintf(&sb, "  - %s\n", mdEscape(issue.Hint))
			}
			if issue.TemplateValue != "" || issue.CandidateValue != "" {
				fmt.Fprintf(&sb, "  - Template: `%s`\n", issue.TemplateValue)
				fmt.Fprintf(&sb, "  - Documento: `%s`\n", issue.CandidateValue)
			}
		}
	}

	if r.includeFooter {
		sb.WriteString("\n---\n\n")
		sb.WriteString("_Gerado por conformia. A análise é estrutural: não interpreta o conteúdo do documento._\n")
	}

	return sb.String()
}

// RenderSummary prints a short result summary followed by the issues that
// pass filter
func (r *Renderer) RenderSummary(w io.Writer, result *model.CompareResult, filter model.IssueFilter) {
	s := result.Summary
	fmt.Fprintf(w, "\n%s vs %s (%s)\n", result.Metadata.TemplateName, result.Metadata.CandidateName, result.Metadata.FileType)
	fmt.Fprintf(w, "Issues: %d critical, %d major, %d minor, %d info\n", s.Critical, s.Major, s.Minor, s.Info)

	issues := model.FilterIssues(result.Issues, filter)
	if len(issues) < len(result.Issues) {
		fmt.Fprintf(w, "Showing %d of %d issues\n", len(issues), len(result.Issues))
	}
	if len(issues) > 0 {
		fmt.Fprintln(w)
	}
	for _, issue := range issues {
		fmt.Fprintf(w, "  %-8s %-9s %-24s %s\n", strings.ToUpper(string(issue.Severity)), issue.Category, locationLabel(issue.Location), issue.Message)
	}

	if n := result.Narrative; n != nil && n.Enabled && n.SummaryMD != "" {
		fmt.Fprintf(w, "\nLLM summary (%s):\n%s\n", n.Provider, n.SummaryMD)
	}
}

// RenderBatchSummary prints one line per candidate
func (r *Renderer) RenderBatchSummary(w io.Writer, results []*worker.CompareResult) {
	fmt.Fprintf(w, "\n%-40s %8s %6s %6s %6s\n", "CANDIDATE", "CRITICAL", "MAJOR", "MINOR", "INFO")
	for _, e := range results {
		name := filepath.Base(e.Candidate)
		if e.Error != nil {
			fmt.Fprintf(w, "%-40s ERROR: %v\n", name, e.Error)
			continue
		}
		s := e.Result.Summary
		fmt.Fprintf(w, "%-40s %8d %6d %6d %6d\n", name, s.Critical, s.Major, s.Minor, s.Info)
	}
}

func locationLabel(loc model.Location) string {
	label := fmt.Sprintf("%s #%d", loc.Section, loc.BlockIndex+1)
	if loc.TableIndex != nil {
		label += fmt.Sprintf(" tabela %d", *loc.TableIndex+1)
	}
	if loc.RunIndex != nil {
		label += fmt.Sprintf(" run %d", *loc.RunIndex+1)
	}
	if loc.PageNumber != nil {
		label += fmt.Sprintf(" p.%d", *loc.PageNumber)
	}
	return label
}

func severityLabel(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "Crítico"
	case model.SeverityMajor:
		return "Maior"
	case model.SeverityMinor:
		return "Menor"
	default:
		return "Informativo"
	}
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`").Replace(s)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
