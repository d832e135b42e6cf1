package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/conformia/internal/model"
)

// maxPromptIssues bounds how many issues are listed in the prompt
const maxPromptIssues = 25

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a review narrative for a comparison result
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Result is the comparison to narrate
	Result model.CompareResult

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// CitedIssues are the issue numbers (#N) the summary referenced
	CitedIssues []int

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI and Gemini; ignored by Ollama
	APIKey string

	// BaseURL for OpenAI-compatible endpoints, or the Gemini API endpoint
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 800,
	}
}

// resolve fills the model, token budget and timeout of a request from the
// provider config, then from built-in defaults
func (c Config) resolve(req SummarizeRequest, defaultModel string) (string, int, time.Duration) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 800
	}

	timeout := time.Duration(c.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return modelName, maxTokens, timeout
}

// PromptIssues returns the issues in the order the prompt numbers them:
// most severe first, emission order within a severity
func PromptIssues(result model.CompareResult) []model.Issue {
	issues := make([]model.Issue, len(result.Issues))
	copy(issues, result.Issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})
	if len(issues) > maxPromptIssues {
		issues = issues[:maxPromptIssues]
	}
	return issues
}

// BuildPrompt constructs the default narrative prompt. The model may only
// reference the numbered issues it is given.
func BuildPrompt(result model.CompareResult) string {
	s := result.Summary
	prompt := fmt.Sprintf(`You are reviewing a document conformance report. A candidate document was compared against a template; the issues below were found by a deterministic checker.

CRITICAL RULES:
1. You MUST ONLY refer to the issues listed below, citing them by number as #N.
2. DO NOT invent differences, guess at document content, or cite issue numbers that are not listed.
3. If there are no issues, say the document conforms to the template.
4. Write in the same language as the issue messages.

Report Summary:
- Template: %s
- Candidate: %s
- Format: %s
- Issues: %d critical, %d major, %d minor, %d info

Issues:
%s
`, result.Metadata.TemplateName, result.Metadata.CandidateName, result.Metadata.FileType,
		s.Critical, s.Major, s.Minor, s.Info, formatIssues(result))

	prompt += "\nProvide a 3-5 sentence summary a reviewer can act on, most severe problems first."

	return prompt
}

// Helper functions

func formatIssues(result model.CompareResult) string {
	issues := PromptIssues(result)
	if len(issues) == 0 {
		return "(No issues found)"
	}

	var sb strings.Builder
	for i, issue := range issues {
		fmt.Fprintf(&sb, "#%d [%s/%s] %s: %s", i+1, issue.Severity, issue.Category, issue.Location.Section, issue.Message)
		if issue.TemplateValue != "" || issue.CandidateValue != "" {
			fmt.Fprintf(&sb, " (template: %q, candidate: %q)", issue.TemplateValue, issue.CandidateValue)
		}
		sb.WriteByte('\n')
	}
	if rest := len(result.Issues) - len(issues); rest > 0 {
		fmt.Fprintf(&sb, "... and %d more issues\n", rest)
	}
	return strings.TrimRight(sb.String(), "\n")
}
