package adapter

import (
	"context"

	"ai-tutor-backend/internal/domain/model"
)

// Usage for a single oracle call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// TutoringOracle is the port for the LLM-backed tutor. Every method may block
// for seconds and may fail; callers must not hold locks across a call.
type TutoringOracle interface {
	// Guide returns a single step-by-step hint for an exercise.
	Guide(ctx context.Context, exercise string) (string, error)
	// Check judges a student's answer.
	Check(ctx context.Context, exercise, answer string) (*model.CheckResult, error)
	// Similar produces a new exercise practicing the same concept.
	Similar(ctx context.Context, exercise string) (string, error)
	// Plan builds a personalized roadmap for target.
	Plan(ctx context.Context, profile model.Profile, target string) (*model.Roadmap, error)
}

// Provider exposes which backend and model serve an oracle; used for metrics labels.
type Provider interface {
	ProviderName() string
	ModelName() string
}
