package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider talks to the Google Gemini API
type GeminiProvider struct {
	config Config
	logger *slog.Logger
}

// NewGeminiProvider creates a Gemini provider. An API key is required.
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	config.APIKey = strings.TrimSpace(config.APIKey)
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	return &GeminiProvider{
		config: config,
		logger: slog.Default(),
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(p.config.APIKey)}
	if p.config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(p.config.BaseURL))
	}
	return genai.NewClient(ctx, opts...)
}

// IsAvailable fetches the configured model's metadata
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	cl, err := p.client(ctx)
	if err != nil {
		p.logger.Warn("LLM availability check failed", "provider", "gemini", "error", err)
		return false
	}
	defer func() { _ = cl.Close() }()

	if _, err := cl.GenerativeModel(p.config.Model).Info(ctx); err != nil {
		p.logger.Warn("LLM availability check failed", "provider", "gemini", "error", err)
		return false
	}
	return true
}

// Summarize generates a narrative with GenerateContent
func (p *GeminiProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Result)
	}

	modelName, maxTokens, timeout := p.config.resolve(req, defaultGeminiModel)
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cl, err := p.client(ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	defer func() { _ = cl.Close() }()

	m := cl.GenerativeModel(modelName)
	m.SetTemperature(0.2)
	m.SetMaxOutputTokens(int32(maxTokens))
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	resp, err := m.GenerateContent(ctxWithTimeout, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	summary := strings.TrimSpace(firstText(resp))
	if summary == "" {
		return nil, fmt.Errorf("no response from gemini")
	}

	cited, err := verifyCitations(summary, req.Result)
	if err != nil {
		return nil, err
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &SummarizeResponse{
		Summary:     summary,
		CitedIssues: cited,
		Model:       modelName,
		TokensUsed:  tokens,
	}, nil
}

// firstText returns the first text part of the first candidate that has one
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
