package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestNewGeminiProvider(t *testing.T) {
	if _, err := NewGeminiProvider(Config{Provider: "gemini", APIKey: "  "}); err == nil {
		t.Error("Expected error for missing API key")
	}

	p, err := NewGeminiProvider(Config{Provider: "gemini", APIKey: "key"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Name() != "gemini" {
		t.Errorf("Expected name 'gemini', got %s", p.Name())
	}
	if p.config.Model != defaultGeminiModel {
		t.Errorf("Expected default model %s, got %s", defaultGeminiModel, p.config.Model)
	}
}

func TestNewProvider_Gemini(t *testing.T) {
	provider, err := NewProvider(Config{Provider: "Gemini", APIKey: "key", Model: "gemini-1.5-pro"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	gp, ok := provider.(*GeminiProvider)
	if !ok {
		t.Fatalf("Expected *GeminiProvider, got %T", provider)
	}
	if gp.config.Model != "gemini-1.5-pro" {
		t.Errorf("Expected configured model to be kept, got %s", gp.config.Model)
	}
}

func TestFirstText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			"skips empty content",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("Resumo #1")}}},
			}},
			"Resumo #1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstText(tt.resp); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
