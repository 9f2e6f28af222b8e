package ai

import (
	"context"

	"ai-tutor-backend/internal/domain/ports/adapter"
)

// Request is a single prompt sent to a model.
type Request struct {
	Model     string
	System    string
	Prompt    string
	JSON      bool // ask the provider for a JSON object reply
	MaxTokens int
}

// Completer is one LLM backend. Oracle builds the tutoring operations on top.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, adapter.Usage, error)
	Name() string
}
