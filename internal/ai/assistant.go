// Package ai defines the provider-neutral contract between the interview coach
// and the language-model backends.
package ai

import (
	"context"

	"github.com/spigell/interview-coach/internal/types"
)

// Prompt is a single system + user turn sent to a model.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Generator returns the model's text reply for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt Prompt) (string, error)
	Model() string
}

// Coach produces interview material. Implementations never fail: when the
// model is unavailable they return deterministic fallback values.
type Coach interface {
	GenerateFeedback(ctx context.Context, transcript string, interviewType types.InterviewType) *types.Feedback
	GenerateQuestions(ctx context.Context, resume, jobDescription string, interviewType types.InterviewType) []string
}
