package model

import "strings"

// Severity ranks how serious an issue is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// Severities lists severities from most to least serious
var Severities = []Severity{SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo}

// Rank returns 0 for critical up to 3 for info; unknown values rank last
func (s Severity) Rank() int {
	for i, v := range Severities {
		if v == s {
			return i
		}
	}
	return len(Severities)
}

// AtLeast reports whether s is as serious as or more serious than other
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() <= other.Rank()
}

// ParseSeverity validates a severity name
func ParseSeverity(name string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(name)))
	return s, s.Rank() < len(Severities)
}

// Category classifies what kind of difference an issue describes
type Category string

const (
	CategoryText      Category = "text"
	CategoryFormat    Category = "format"
	CategoryStructure Category = "structure"
	CategoryImage     Category = "image"
	CategoryHeader    Category = "header"
	CategoryFooter    Category = "footer"
	CategoryTable     Category = "table"
)

// Categories lists every category
var Categories = []Category{
	CategoryText, CategoryFormat, CategoryStructure, CategoryImage,
	CategoryHeader, CategoryFooter, CategoryTable,
}

// ParseCategory validates a category name
func ParseCategory(name string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	for _, v := range Categories {
		if v == c {
			return c, true
		}
	}
	return c, false
}

// Location addresses one comparison site
type Location struct {
	Section    Section `json:"section"`
	BlockIndex int     `json:"block_index"`
	RunIndex   *int    `json:"run_index,omitempty"`
	TableIndex *int    `json:"table_index,omitempty"`
	PageNumber *int    `json:"page_number,omitempty"`
}

// Issue is a single reported difference between template and candidate
type Issue struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	Location       Location `json:"location"`
	Message        string   `json:"message"`
	Hint           string   `json:"hint,omitempty"`
	TemplateValue  string   `json:"template_value,omitempty"`
	CandidateValue string   `json:"candidate_value,omitempty"`
}

// CompareSummary tallies issues by severity and by category
type CompareSummary struct {
	Critical   int              `json:"critical"`
	Major      int              `json:"major"`
	Minor      int              `json:"minor"`
	Info       int              `json:"info"`
	ByCategory map[Category]int `json:"by_category"`
}

// Summarize tallies issues. Every category key is present, zero or not.
func Summarize(issues []Issue) CompareSummary {
	summary := CompareSummary{ByCategory: make(map[Category]int, len(Categories))}
	for _, c := range Categories {
		summary.ByCategory[c] = 0
	}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			summary.Critical++
		case SeverityMajor:
			summary.Major++
		case SeverityMinor:
			summary.Minor++
		case SeverityInfo:
			summary.Info++
		}
		summary.ByCategory[issue.Category]++
	}
	return summary
}

// Total returns the sum of the severity counts
func (s CompareSummary) Total() int {
	return s.Critical + s.Major + s.Minor + s.Info
}

// Count returns the number of issues with the given severity
func (s CompareSummary) Count(sev Severity) int {
	switch sev {
	case SeverityCritical:
		return s.Critical
	case SeverityMajor:
		return s.Major
	case SeverityMinor:
		return s.Minor
	case SeverityInfo:
		return s.Info
	}
	return 0
}

// IssueFilter selects issues for display. Empty fields match everything.
type IssueFilter struct {
	Severities []Severity
	Categories []Category
	Search     string
}

// FilterIssues returns the issues matching f, preserving order
func FilterIssues(issues []Issue, f IssueFilter) []Issue {
	search := strings.ToLower(f.Search)
	var out []Issue
	for _, issue := range issues {
		if len(f.Severities) > 0 && !containsSeverity(f.Severities, issue.Severity) {
			continue
		}
		if len(f.Categories) > 0 && !containsCategory(f.Categories, issue.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(issue.Message), search) &&
			!strings.Contains(strings.ToLower(issue.Hint), search) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

func containsSeverity(list []Severity, s Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsCategory(list []Category, c Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
