package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/config"
	"ai-tutor-backend/internal/domain/ports/adapter"
)

// NewFromConfig builds every provider that has credentials, routes by model
// name and wraps the result with metrics and the concurrency limit.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, log *zerolog.Logger) (adapter.TutoringOracle, string, error) {
	byProvider := map[string]Completer{}

	if cfg.OpenAIKey != "" {
		model := cfg.DefaultModel
		if cfg.Provider != "openai" {
			model = ""
		}
		oa, err := NewOpenAIAdapter(cfg.OpenAIKey, model, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("init openai: %w", err)
		}
		byProvider["openai"] = oa
	}
	if cfg.GeminiKey != "" {
		model := cfg.DefaultModel
		if cfg.Provider != "gemini" {
			model = ""
		}
		ga, err := NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, model)
		if err != nil {
			return nil, "", fmt.Errorf("init gemini: %w", err)
		}
		byProvider["gemini"] = ga
	}
	if cfg.Provider == "noop" {
		byProvider["noop"] = NewNoopAIAdapter(500 * time.Millisecond)
	}
	if byProvider[cfg.Provider] == nil {
		return nil, "", fmt.Errorf("ai provider %q is not configured", cfg.Provider)
	}

	multi := NewMultiAIAdapter(cfg.Provider, byProvider, nil)
	var oracle adapter.TutoringOracle = NewOracle(multi, OracleOptions{
		DefaultModel:    cfg.DefaultModel,
		GuideModel:      cfg.GuideModel,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, log)
	oracle = NewObservedOracle(oracle, cfg.Provider)
	oracle = NewLimitedOracle(oracle, cfg.ConcurrentLimit)

	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.DefaultModel).
		Str("guide_model", multi.ProviderFor(cfg.GuideModel)+"/"+cfg.GuideModel).
		Int("concurrent_limit", cfg.ConcurrentLimit).
		Msg("tutoring oracle ready")
	return oracle, cfg.Provider, nil
}
