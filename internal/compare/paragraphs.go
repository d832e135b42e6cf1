package compare

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/textdiff"
	"github.com/ppiankov/conformia/internal/textnorm"
)

const (
	snippetLength   = 100
	defaultFontSize = 12.0
)

// compareParagraphs aligns paragraphs by position and diffs each pair.
// Template paragraphs beyond the candidate's length fall back to a
// similarity search over candidate paragraphs not yet paired.
func compareParagraphs(section model.Section, template, candidate []model.Paragraph, opts model.CompareOptions) []model.Issue {
	var issues []model.Issue

	if len(template) != len(candidate) {
		issues = append(issues, model.Issue{
			Severity:       rigor(opts, model.SeverityMajor, model.SeverityMinor),
			Category:       model.CategoryStructure,
			Location:       at(section, 0),
			Message:        fmt.Sprintf("Quantidade de parágrafos diferente em %s", section),
			TemplateValue:  fmt.Sprintf("%d parágrafos", len(template)),
			CandidateValue: fmt.Sprintf("%d parágrafos", len(candidate)),
		})
	}

	used := make([]bool, len(candidate))
	for i, tp := range template {
		ci, ok := pairParagraph(i, tp, candidate, used, opts)
		if !ok {
			issues = append(issues, model.Issue{
				Severity: rigor(opts, model.SeverityMajor, model.SeverityMinor),
				Category: model.CategoryText,
				Location: at(section, i),
				Message:  fmt.Sprintf("Parágrafo %d ausente no documento", i+1),
			})
			continue
		}
		used[ci] = true

		loc := at(section, ci)
		if page := candidate[ci].Page; page > 0 {
			loc.PageNumber = intPtr(page)
		}
		issues = append(issues, compareParagraph(i, loc, tp, candidate[ci], opts)...)
	}

	return issues
}

// pairParagraph returns the candidate index paired with template paragraph i
func pairParagraph(i int, tp model.Paragraph, candidate []model.Paragraph, used []bool, opts model.CompareOptions) (int, bool) {
	if i < len(candidate) {
		return i, true
	}

	var pool []model.Paragraph
	var poolIndex []int
	for j, c := range candidate {
		if !used[j] {
			pool = append(pool, c)
			poolIndex = append(poolIndex, j)
		}
	}
	match, ok := textnorm.FindBestMatch(tp, pool, opts, textnorm.DefaultMatchThreshold)
	if !ok {
		return 0, false
	}
	return poolIndex[match.Index], true
}

// compareParagraph diffs one aligned pair. i is the template position.
func compareParagraph(i int, loc model.Location, tp, cp model.Paragraph, opts model.CompareOptions) []model.Issue {
	var issues []model.Issue
	n := i + 1

	if textdiff.HasSignificantDiff(tp, cp, opts) {
		issues = append(issues, model.Issue{
			Severity:       model.SeverityCritical,
			Category:       model.CategoryText,
			Location:       loc,
			Message:        fmt.Sprintf("Texto divergente no parágrafo %d", n),
			TemplateValue:  snippet(textnorm.ParagraphText(tp, opts)),
			CandidateValue: snippet(textnorm.ParagraphText(cp, opts)),
		})
	}

	if tp.Alignment != cp.Alignment {
		issues = append(issues, model.Issue{
			Severity:       rigor(opts, model.SeverityMinor, model.SeverityInfo),
			Category:       model.CategoryFormat,
			Location:       withRun(loc, 0),
			Message:        fmt.Sprintf("Alinhamento diferente no parágrafo %d", n),
			TemplateValue:  orDefault(string(tp.Alignment), string(model.AlignLeft)),
			CandidateValue: orDefault(string(cp.Alignment), string(model.AlignLeft)),
		})
	}

	if tp.StyleID != cp.StyleID {
		severity := rigor(opts, model.SeverityMinor, model.SeverityInfo)
		if isHeadingStyle(tp.StyleID) || isHeadingStyle(cp.StyleID) {
			severity = model.SeverityMajor
		}
		issues = append(issues, model.Issue{
			Severity:       severity,
			Category:       model.CategoryFormat,
			Location:       loc,
			Message:        fmt.Sprintf("Estilo diferente no parágrafo %d", n),
			TemplateValue:  orDefault(tp.StyleID, "normal"),
			CandidateValue: orDefault(cp.StyleID, "normal"),
		})
	}

	if len(tp.Runs) != len(cp.Runs) {
		issues = append(issues, model.Issue{
			Severity:       model.SeverityMinor,
			Category:       model.CategoryFormat,
			Location:       loc,
			Message:        fmt.Sprintf("Quantidade de runs diferente no parágrafo %d", n),
			TemplateValue:  fmt.Sprintf("%d runs", len(tp.Runs)),
			CandidateValue: fmt.Sprintf("%d runs", len(cp.Runs)),
		})
	}

	for j := 0; j < min(len(tp.Runs), len(cp.Runs)); j++ {
		issues = append(issues, compareRun(n, j, withRun(loc, j), tp.Runs[j], cp.Runs[j], opts)...)
	}

	return issues
}

// compareRun reports each formatting attribute that differs between two runs
// that fail run equivalence
func compareRun(para, j int, loc model.Location, tr, cr model.ParagraphRun, opts model.CompareOptions) []model.Issue {
	if textnorm.CompareRuns(tr, cr, opts) {
		return nil
	}

	var issues []model.Issue
	where := fmt.Sprintf("no parágrafo %d, run %d", para, j+1)
	formatting := func(severity model.Severity, message string) model.Issue {
		return model.Issue{
			Severity: severity,
			Category: model.CategoryFormat,
			Location: loc,
			Message:  message + " " + where,
		}
	}

	if tr.Bold != cr.Bold {
		issues = append(issues, formatting(model.SeverityMinor, "Formatação negrito diferente"))
	}
	if tr.Italic != cr.Italic {
		issues = append(issues, formatting(model.SeverityMinor, "Formatação itálico diferente"))
	}
	if tr.Underline != cr.Underline {
		issues = append(issues, formatting(model.SeverityMinor, "Formatação sublinhado diferente"))
	}
	if tr.FontSize != cr.FontSize {
		severity := model.SeverityInfo
		if math.Abs(fontSizeOrDefault(tr.FontSize)-fontSizeOrDefault(cr.FontSize)) > opts.FontSizeTolerance {
			severity = model.SeverityMinor
		}
		issue := formatting(severity, "Tamanho da fonte diferente")
		issue.TemplateValue = formatFontSize(tr.FontSize)
		issue.CandidateValue = formatFontSize(cr.FontSize)
		issues = append(issues, issue)
	}
	if tr.Color != cr.Color {
		issues = append(issues, formatting(model.SeverityInfo, "Cor da fonte diferente"))
	}

	return issues
}

// compareTables compares table counts, then the geometry of tables sharing
// an index
func compareTables(section model.Section, template, candidate []model.Table) []model.Issue {
	var issues []model.Issue

	if len(template) != len(candidate) {
		issues = append(issues, model.Issue{
			Severity:       model.SeverityMajor,
			Category:       model.CategoryTable,
			Location:       at(section, 0),
			Message:        fmt.Sprintf("Quantidade de tabelas diferente em %s", section),
			TemplateValue:  fmt.Sprintf("%d tabelas", len(template)),
			CandidateValue: fmt.Sprintf("%d tabelas", len(candidate)),
		})
	}

	for i := 0; i < min(len(template), len(candidate)); i++ {
		tt, ct := template[i], candidate[i]
		loc := at(section, i)
		loc.TableIndex = intPtr(i)

		if tt.Rows != ct.Rows {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityMajor,
				Category:       model.CategoryTable,
				Location:       loc,
				Message:        fmt.Sprintf("Número de linhas diferente na tabela %d", i+1),
				TemplateValue:  fmt.Sprintf("%d linhas", tt.Rows),
				CandidateValue: fmt.Sprintf("%d linhas", ct.Rows),
			})
		}
		if tt.Cols != ct.Cols {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityMajor,
				Category:       model.CategoryTable,
				Location:       loc,
				Message:        fmt.Sprintf("Número de colunas diferente na tabela %d", i+1),
				TemplateValue:  fmt.Sprintf("%d colunas", tt.Cols),
				CandidateValue: fmt.Sprintf("%d colunas", ct.Cols),
			})
		}
	}

	return issues
}

func withRun(loc model.Location, run int) model.Location {
	loc.RunIndex = intPtr(run)
	return loc
}

func isHeadingStyle(id string) bool {
	return strings.HasPrefix(strings.ToLower(id), "heading")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func fontSizeOrDefault(size float64) float64 {
	if size == 0 {
		return defaultFontSize
	}
	return size
}

func formatFontSize(size float64) string {
	if size == 0 {
		return "padrão"
	}
	return strconv.FormatFloat(size, 'f', -1, 64)
}

// snippet truncates to the first snippetLength characters
func snippet(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetLength {
		return s
	}
	return string(runes[:snippetLength])
}
