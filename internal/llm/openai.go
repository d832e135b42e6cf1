package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/conformia/internal/model"
)

const defaultOllamaURL = "http://localhost:11434/v1"

var issueRefPattern = regexp.MustCompile(`#(\d+)`)

const systemInstruction = "You summarize document conformance reports and never describe differences that are not in the report."

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
// Ollama is served through its /v1 compatibility API.
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
	logger *slog.Logger
}

// NewOpenAIProvider creates a provider for api.openai.com or config.BaseURL
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   "openai",
		logger: slog.Default(),
	}, nil
}

// NewOllamaProvider creates a provider for a local Ollama server. No API key
// is needed.
func NewOllamaProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = defaultOllamaURL
	}
	if config.APIKey == "" {
		config.APIKey = "ollama"
	}
	if config.Model == "" {
		config.Model = "llama3.1"
	}

	p, err := NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	p.name = "ollama"
	return p, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable lists models as a lightweight reachability check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		p.logger.Warn("LLM availability check failed", "provider", p.name, "error", err)
		return false
	}
	return true
}

// Summarize generates a narrative using the Chat Completions API
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Result)
	}

	modelName, maxTokens, timeout := p.config.resolve(req, openai.GPT4oMini)
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	cited, err := verifyCitations(summary, req.Result)
	if err != nil {
		return nil, err
	}

	return &SummarizeResponse{
		Summary:     summary,
		CitedIssues: cited,
		Model:       modelName,
		TokensUsed:  resp.Usage.TotalTokens,
	}, nil
}

// verifyCitations returns the issue numbers summary cites and fails when one
// of them was not listed in the prompt
func verifyCitations(summary string, result model.CompareResult) ([]int, error) {
	cited := extractIssueRefs(summary)
	listed := len(PromptIssues(result))
	for _, n := range cited {
		if n < 1 || n > listed {
			return nil, fmt.Errorf("summary cited unknown issue #%d (%d listed)", n, listed)
		}
	}
	return cited, nil
}

// extractIssueRefs returns the distinct #N references in order of appearance
func extractIssueRefs(text string) []int {
	seen := make(map[int]bool)
	var refs []int
	for _, m := range issueRefPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		refs = append(refs, n)
	}
	return refs
}
