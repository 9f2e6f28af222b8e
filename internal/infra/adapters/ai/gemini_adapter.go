package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/ports/adapter"
)

var _ Completer = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Complete(ctx context.Context, req Request) (string, adapter.Usage, error) {
	if req.Prompt == "" && req.System == "" {
		return "", adapter.Usage{}, errors.New("gemini: empty request")
	}

	cfg := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	prompt := req.Prompt
	if req.System != "" {
		if prompt == "" {
			// Gemini needs user content; a lone instruction is sent as the prompt.
			prompt = req.System
		} else {
			cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelOrDefault(req.Model, g.defaultModel), genai.Text(prompt), cfg)
	if err != nil {
		return "", adapter.Usage{}, fmt.Errorf("%w: gemini: %v", domain.ErrOracleUnavailable, err)
	}

	// Extract text
	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil && p.Text != "" {
				text += p.Text
			}
		}
	}
	if text == "" {
		return "", adapter.Usage{}, fmt.Errorf("%w: gemini returned no text", domain.ErrOracleUnavailable)
	}

	// Usage (if present)
	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return text, u, nil
}
