package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/conformia/internal/model"
)

// Summarizer produces the optional narrative for a comparison result.
// Failures degrade to warnings; they never fail the comparison.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer builds a summarizer. A config with no provider yields a
// disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or ""
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary narrates result. It returns nil when disabled.
func (s *Summarizer) GenerateSummary(ctx context.Context, result model.CompareResult) (*model.Narrative, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	narrative := &model.Narrative{
		Provider: s.provider.Name(),
		Model:    s.config.Model,
	}

	if !s.provider.IsAvailable(ctx) {
		narrative.Warnings = append(narrative.Warnings,
			fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		return narrative, nil
	}
	narrative.Enabled = true

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Result:    result,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		narrative.Warnings = append(narrative.Warnings, fmt.Sprintf("Summary generation failed: %v", err))
		return narrative, nil
	}

	narrative.SummaryMD = resp.Summary
	narrative.Model = resp.Model
	narrative.TokensUsed = resp.TokensUsed
	narrative.Warnings = append(narrative.Warnings,
		fmt.Sprintf("Tokens used: %d", resp.TokensUsed),
		fmt.Sprintf("Verified %d issue references", len(resp.CitedIssues)),
	)

	return narrative, nil
}

// RenderSeparateMarkdown renders the narrative as a standalone markdown
// document, kept apart from the deterministic report
func RenderSeparateMarkdown(n *model.Narrative) string {
	if n == nil || !n.Enabled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("# LLM Summary\n\n")
	sb.WriteString("> **GENERATED CONTENT**: this narrative was written by a language model from the issue list. ")
	sb.WriteString("Issues and severities were determined independently by the deterministic checker.\n\n")
	fmt.Fprintf(&sb, "- **Provider**: %s\n", n.Provider)
	if n.Model != "" {
		fmt.Fprintf(&sb, "- **Model**: %s\n", n.Model)
	}
	sb.WriteString("\n## Summary\n\n")
	if n.SummaryMD == "" {
		sb.WriteString("_No summary generated._\n")
	} else {
		sb.WriteString(n.SummaryMD)
		sb.WriteString("\n")
	}

	if len(n.Warnings) > 0 {
		sb.WriteString("\n## Notes\n\n")
		for _, w := range n.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return sb.String()
}
