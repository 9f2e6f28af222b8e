// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"ai-tutor-backend/internal/domain/ports/adapter"
)

var _ Completer = (*MultiAIAdapter)(nil)

// MultiAIAdapter routes each request to a provider by model name, so the
// guide model and the default model may live on different backends.
type MultiAIAdapter struct {
	defaultProvider string // e.g., "openai" or "gemini"
	byProvider      map[string]Completer
	modelToProvider map[string]string // model -> provider ("openai" | "gemini")
}

// NewMultiAIAdapter does not inject any default model; it only knows a default provider.
// Each provider adapter is responsible for its own default model.
func NewMultiAIAdapter(
	defaultProvider string,
	byProvider map[string]Completer,
	modelToProvider map[string]string,
) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiAIAdapter) Name() string { return m.defaultProvider }

func (m *MultiAIAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"): // OpenAI models
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAIAdapter) pick(model string) Completer {
	prov := m.resolveProvider(model)
	if a := m.byProvider[prov]; a != nil {
		return a
	}
	if a := m.byProvider[m.defaultProvider]; a != nil {
		return a
	}
	// last resort: first available
	for _, a := range m.byProvider {
		if a != nil {
			return a
		}
	}
	return nil
}

// ProviderFor reports which backend would serve model.
func (m *MultiAIAdapter) ProviderFor(model string) string {
	if a := m.pick(model); a != nil {
		return a.Name()
	}
	return ""
}

func (m *MultiAIAdapter) Complete(ctx context.Context, req Request) (string, adapter.Usage, error) {
	a := m.pick(req.Model)
	if a == nil {
		return "", adapter.Usage{}, errors.New("no ai provider configured")
	}
	return a.Complete(ctx, req)
}
