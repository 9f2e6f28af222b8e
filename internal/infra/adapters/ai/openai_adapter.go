package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkoukk/tiktoken-go"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/ports/adapter"
)

var _ Completer = (*OpenAIAdapter)(nil)

// OpenAIAdapter talks to the Chat Completions API. A custom base URL points it
// at any OpenAI-compatible gateway.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(apiKey, model, baseURL string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	// Oracle failures are terminal for the caller, so the SDK must not retry.
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &OpenAIAdapter{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) Complete(ctx context.Context, req Request) (string, adapter.Usage, error) {
	model := modelOrDefault(req.Model, o.model)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	if req.Prompt != "" {
		msgs = append(msgs, openai.UserMessage(req.Prompt))
	}
	if len(msgs) == 0 {
		return "", adapter.Usage{}, errors.New("openai: empty request")
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", adapter.Usage{}, fmt.Errorf("%w: openai: %v", domain.ErrOracleUnavailable, err)
	}

	var text string
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			text = c.Message.Content
			break
		}
	}
	if text == "" {
		return "", adapter.Usage{}, fmt.Errorf("%w: openai returned no choice content", domain.ErrOracleUnavailable)
	}

	u := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	// Some compatible gateways omit usage; fall back to a local count.
	if u.TotalTokens == 0 {
		u.PromptTokens = CountTokens(model, req.System+"\n"+req.Prompt)
		u.CompletionTokens = CountTokens(model, text)
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return text, u, nil
}

// CountTokens estimates the token count of text for model using tiktoken.
// Unknown models use cl100k_base; a missing encoder yields a rough estimate.
func CountTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
