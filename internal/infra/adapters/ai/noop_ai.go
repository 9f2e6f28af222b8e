package ai

import (
	"context"
	"strings"
	"time"

	"ai-tutor-backend/internal/domain/ports/adapter"
)

var _ Completer = (*NoopAIAdapter)(nil)

// NoopAIAdapter returns canned replies for local/dev runs without an API key.
// Replies are shaped like real ones so the full request path is exercised.
type NoopAIAdapter struct {
	delay time.Duration
}

func NewNoopAIAdapter(delay time.Duration) *NoopAIAdapter {
	return &NoopAIAdapter{delay: delay}
}

func (a *NoopAIAdapter) Name() string { return "noop" }

func (a *NoopAIAdapter) Complete(ctx context.Context, req Request) (string, adapter.Usage, error) {
	// Simulate processing time and respect ctx
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return "", adapter.Usage{}, ctx.Err()
		}
	}

	text := "Start by writing down what the exercise gives you and what it asks for."
	prompt := req.System + req.Prompt
	switch {
	case strings.Contains(prompt, `"is_correct"`):
		text = `{"is_correct": true, "explanation": "Looks right to me (noop tutor)."}`
	case strings.Contains(prompt, `"new_exercise"`):
		text = `{"new_exercise": "Practice exercise generated by the noop tutor."}`
	case strings.Contains(prompt, `"study_intensity"`):
		text = `{"title": "Study plan", "study_intensity": "moderate", "steps": [` +
			`{"title": "Review the basics", "description": "Revisit the core definitions.", "topics_to_focus": ["definitions"], "common_pitfalls": ["skipping fundamentals"]},` +
			`{"title": "Practice", "description": "Work through graded problems.", "topics_to_focus": ["exercises"], "common_pitfalls": ["rushing"]},` +
			`{"title": "Self-test", "description": "Take a timed quiz.", "topics_to_focus": ["recall"], "common_pitfalls": ["not reviewing mistakes"]}]}`
	}
	n := len(prompt) / 4
	return text, adapter.Usage{PromptTokens: n, CompletionTokens: len(text) / 4, TotalTokens: n + len(text)/4}, nil
}
