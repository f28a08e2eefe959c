package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGenerator(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, zap.NewNop())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func TestGenerateContent(t *testing.T) {
	var got chatRequest
	var calls int

	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  [\"q1\"]  "}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	})

	out, err := g.GenerateContent(context.Background(), ai.Prompt{
		System:      "You are an expert interviewer.",
		User:        "Generate questions",
		Temperature: 0.8,
		MaxTokens:   800,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != `["q1"]` {
		t.Fatalf("unexpected output: %q", out)
	}

	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}

	if got.Model != "gpt-3.5-turbo" || got.Temperature != 0.8 || got.MaxTokens != 800 {
		t.Fatalf("unexpected request: %+v", got)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestGenerateContentDoesNotRetry(t *testing.T) {
	var calls int
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"upstream down","type":"server_error"}}`)
	})

	if _, err := g.GenerateContent(context.Background(), ai.Prompt{User: "x"}); err == nil {
		t.Fatal("expected error")
	}

	if calls != 1 {
		t.Fatalf("expected no retries, got %d calls", calls)
	}
}

func TestGenerateContentNoChoices(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	})

	if _, err := g.GenerateContent(context.Background(), ai.Prompt{User: "x"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewGeneratorDefaults(t *testing.T) {
	if _, err := NewGenerator(Config{}, nil); err == nil {
		t.Fatal("expected error without api key")
	}

	g, err := NewGenerator(Config{APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
}
