package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-tutor-backend/internal/domain"
	ai "ai-tutor-backend/internal/infra/adapters/ai"
)

func TestOpenAIAdapter_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
  "id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"new_exercise\": \"x\"}"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
}`)
	}))
	defer srv.Close()

	a, err := ai.NewOpenAIAdapter("sk-test", "gpt-4o-mini", srv.URL)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	reply, usage, err := a.Complete(context.Background(), ai.Request{Prompt: "hi", JSON: true, MaxTokens: 100})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != `{"new_exercise": "x"}` {
		t.Errorf("unexpected reply %q", reply)
	}
	if usage.TotalTokens != 16 || usage.PromptTokens != 12 {
		t.Errorf("unexpected usage %+v", usage)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model not sent: %v", gotBody["model"])
	}
	if rf, ok := gotBody["response_format"].(map[string]interface{}); !ok || rf["type"] != "json_object" {
		t.Errorf("json mode not requested: %v", gotBody["response_format"])
	}
}

func TestOpenAIAdapter_ErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"message": "bad", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	a, _ := ai.NewOpenAIAdapter("sk-test", "", srv.URL)
	_, _, err := a.Complete(context.Background(), ai.Request{Prompt: "hi"})
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}
