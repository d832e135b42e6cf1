package model

import "time"

// CompareResult is the complete output of one template/candidate comparison
type CompareResult struct {
	Summary  CompareSummary `json:"summary"`
	Issues   []Issue        `json:"issues"`
	Metadata ResultMetadata `json:"metadata"`

	Narrative *Narrative `json:"narrative,omitempty"` // Optional LLM summary (separate, never affects issues)
}

// ResultMetadata records what was compared and how
type ResultMetadata struct {
	TemplateName  string         `json:"template_name"`
	CandidateName string         `json:"candidate_name"`
	FileType      FileType       `json:"file_type"`
	ParsedAt      time.Time      `json:"parsed_at"` // Marshals as RFC 3339 (ISO-8601)
	Options       CompareOptions `json:"options"`
}

// Narrative contains an optional LLM-generated review summary
// It is produced after comparison and never alters the issue list
type Narrative struct {
	Enabled    bool     `json:"enabled"`
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	SummaryMD  string   `json:"summary_md,omitempty"`
	TokensUsed int      `json:"tokens_used,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Failed reports whether the result contains an issue at or above threshold
func (r *CompareResult) Failed(threshold Severity) bool {
	for _, sev := range Severities {
		if sev.AtLeast(threshold) && r.Summary.Count(sev) > 0 {
			return true
		}
	}
	return false
}
