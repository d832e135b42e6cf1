package model

import "testing"

func TestSeverityAtLeast(t *testing.T) {
	tests := []struct {
		sev, threshold Severity
		want           bool
	}{
		{SeverityCritical, SeverityMajor, true},
		{SeverityMajor, SeverityMajor, true},
		{SeverityMinor, SeverityMajor, false},
		{SeverityInfo, SeverityInfo, true},
		{Severity("bogus"), SeverityInfo, false},
	}

	for _, tt := range tests {
		if got := tt.sev.AtLeast(tt.threshold); got != tt.want {
			t.Errorf("%s.AtLeast(%s): expected %v, got %v", tt.sev, tt.threshold, tt.want, got)
		}
	}
}

func TestParseSeverityAndCategory(t *testing.T) {
	if sev, ok := ParseSeverity(" MAJOR "); !ok || sev != SeverityMajor {
		t.Errorf("Expected major, got %q (ok=%v)", sev, ok)
	}
	if _, ok := ParseSeverity("blocker"); ok {
		t.Error("Expected unknown severity to be rejected")
	}
	if cat, ok := ParseCategory("Table"); !ok || cat != CategoryTable {
		t.Errorf("Expected table, got %q (ok=%v)", cat, ok)
	}
	if _, ok := ParseCategory("layout"); ok {
		t.Error("Expected unknown category to be rejected")
	}
}

func TestSummarize(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityCritical, Category: CategoryText},
		{Severity: SeverityCritical, Category: CategoryImage},
		{Severity: SeverityMinor, Category: CategoryFormat},
		{Severity: SeverityInfo, Category: CategoryFormat},
	}

	s := Summarize(issues)
	if s.Critical != 2 || s.Major != 0 || s.Minor != 1 || s.Info != 1 {
		t.Errorf("Unexpected severity counts: %+v", s)
	}
	if s.Total() != len(issues) {
		t.Errorf("Expected total %d, got %d", len(issues), s.Total())
	}
	if s.ByCategory[CategoryFormat] != 2 {
		t.Errorf("Expected 2 format issues, got %d", s.ByCategory[CategoryFormat])
	}
	for _, c := range Categories {
		if _, ok := s.ByCategory[c]; !ok {
			t.Errorf("Expected category %s to be present in summary", c)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total() != 0 {
		t.Errorf("Expected empty summary, got %+v", s)
	}
	if len(s.ByCategory) != len(Categories) {
		t.Errorf("Expected %d category keys, got %d", len(Categories), len(s.ByCategory))
	}
}

func TestFilterIssues(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityCritical, Category: CategoryText, Message: "Texto divergente no parágrafo 1"},
		{Severity: SeverityMinor, Category: CategoryFormat, Message: "Alinhamento diferente no parágrafo 2"},
		{Severity: SeverityMajor, Category: CategoryImage, Message: "Quantidade de imagens diferente", Hint: "logo"},
	}

	tests := []struct {
		name   string
		filter IssueFilter
		want   int
	}{
		{"empty filter", IssueFilter{}, 3},
		{"by severity", IssueFilter{Severities: []Severity{SeverityCritical, SeverityMajor}}, 2},
		{"by category", IssueFilter{Categories: []Category{CategoryFormat}}, 1},
		{"search message", IssueFilter{Search: "PARÁGRAFO"}, 2},
		{"search hint", IssueFilter{Search: "logo"}, 1},
		{"combined", IssueFilter{Severities: []Severity{SeverityMinor}, Search: "texto"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterIssues(issues, tt.filter)
			if len(got) != tt.want {
				t.Errorf("Expected %d issues, got %d", tt.want, len(got))
			}
		})
	}
}

func TestCompareResultFailed(t *testing.T) {
	result := &CompareResult{Summary: Summarize([]Issue{{Severity: SeverityMinor, Category: CategoryFormat}})}

	if result.Failed(SeverityMajor) {
		t.Error("Expected minor issue not to fail a major threshold")
	}
	if !result.Failed(SeverityMinor) {
		t.Error("Expected minor issue to fail a minor threshold")
	}
	if !result.Failed(SeverityInfo) {
		t.Error("Expected minor issue to fail an info threshold")
	}
}
