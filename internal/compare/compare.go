// Package compare walks two canonical document models and reports how the
// candidate deviates from the template.
package compare

import (
	"github.com/ppiankov/conformia/internal/model"
)

// Outcome is the result of one comparison
type Outcome struct {
	Summary model.CompareSummary `json:"summary"`
	Issues  []model.Issue        `json:"issues"`
}

// Compare diffs candidate against template. It is a pure function: the same
// inputs always yield the same issues, in the same order, with the same ids.
// Neither model is modified.
func Compare(template, candidate *model.DocumentStructure, opts model.CompareOptions) Outcome {
	var issues []model.Issue

	// 1. Header/footer presence
	issues = append(issues, compareStructure(template, candidate)...)

	// 2. Section contents
	for _, section := range model.Sections {
		issues = append(issues, compareSection(section, template.Section(section), candidate.Section(section), opts)...)
	}

	// 3. Images and main logo
	issues = append(issues, compareImages(template, candidate, opts)...)

	// 4. Word policies, over the candidate only
	text := documentText(candidate, opts)
	issues = append(issues, checkRequiredWords(text, opts)...)
	issues = append(issues, checkForbiddenWords(text, opts)...)

	if issues == nil {
		issues = []model.Issue{}
	}
	assignIDs(issues)

	return Outcome{
		Summary: model.Summarize(issues),
		Issues:  issues,
	}
}

// compareStructure reports a header or footer the template has and the
// candidate lacks
func compareStructure(template, candidate *model.DocumentStructure) []model.Issue {
	var issues []model.Issue

	if template.Sections.Header != nil && candidate.Sections.Header == nil {
		issues = append(issues, model.Issue{
			Severity: model.SeverityCritical,
			Category: model.CategoryHeader,
			Location: at(model.SectionHeader, 0),
			Message:  "Header ausente no documento",
			Hint:     "O template possui header, mas o documento não possui",
		})
	}

	if template.Sections.Footer != nil && candidate.Sections.Footer == nil {
		issues = append(issues, model.Issue{
			Severity: model.SeverityCritical,
			Category: model.CategoryFooter,
			Location: at(model.SectionFooter, 0),
			Message:  "Footer ausente no documento",
			Hint:     "O template possui footer, mas o documento não possui",
		})
	}

	return issues
}

// compareSection handles section presence, then paragraphs and tables
func compareSection(section model.Section, template, candidate *model.SectionContent, opts model.CompareOptions) []model.Issue {
	switch {
	case template == nil && candidate == nil:
		return nil
	case template == nil:
		return []model.Issue{{
			Severity: model.SeverityInfo,
			Category: sectionCategory(section),
			Location: at(section, 0),
			Message:  "Seção " + string(section) + " presente no documento mas não no template",
		}}
	case candidate == nil:
		return []model.Issue{{
			Severity: rigor(opts, model.SeverityMajor, model.SeverityMinor),
			Category: sectionCategory(section),
			Location: at(section, 0),
			Message:  "Seção " + string(section) + " ausente no documento",
		}}
	}

	issues := compareParagraphs(section, template.Paragraphs, candidate.Paragraphs, opts)
	return append(issues, compareTables(section, template.Tables, candidate.Tables)...)
}

func sectionCategory(section model.Section) model.Category {
	switch section {
	case model.SectionHeader:
		return model.CategoryHeader
	case model.SectionFooter:
		return model.CategoryFooter
	default:
		return model.CategoryStructure
	}
}

// rigor picks strict when the strict rigor level is selected, else relaxed
func rigor(opts model.CompareOptions, strict, relaxed model.Severity) model.Severity {
	if opts.Strict() {
		return strict
	}
	return relaxed
}

// highSensitivity picks high when image sensitivity is high, else other
func highSensitivity(opts model.CompareOptions, high, other model.Severity) model.Severity {
	if opts.ImageSensitivity == model.ImageSensitivityHigh {
		return high
	}
	return other
}

func at(section model.Section, block int) model.Location {
	return model.Location{Section: section, BlockIndex: block}
}

func intPtr(v int) *int {
	return &v
}
