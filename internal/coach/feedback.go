package coach

import (
	"context"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/types"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	feedbackSystemPrompt = "You are an expert interview coach providing detailed, constructive feedback to help candidates improve their interview performance."
	feedbackTemperature  = 0.7
	feedbackMaxTokens    = 1500
)

//go:embed prompts/feedback.md
var feedbackPromptTemplate string

// GenerateFeedback scores a transcript. It never fails: when the model is
// unavailable or its reply is unusable the fallback assessment is returned.
func (c *Coach) GenerateFeedback(ctx context.Context, transcript string, interviewType types.InterviewType) *types.Feedback {
	log := []zap.Field{zap.String(logger.FieldInterviewType, string(interviewType))}

	raw, err := c.complete(ctx, operationFeedback, ai.Prompt{
		System:      feedbackSystemPrompt,
		User:        FeedbackPrompt(transcript, interviewType),
		Temperature: feedbackTemperature,
		MaxTokens:   feedbackMaxTokens,
	})
	if err != nil {
		c.fallback(operationFeedback, err, log...)
		return FallbackFeedback(interviewType)
	}

	var feedback types.Feedback
	if err := parseStrict(raw, feedbackSchema, &feedback); err != nil {
		c.fallback(operationFeedback, err, append(log, zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)))...)
		return FallbackFeedback(interviewType)
	}

	return &feedback
}

// FeedbackPrompt renders the assessment instructions for one transcript.
func FeedbackPrompt(transcript string, interviewType types.InterviewType) string {
	return strings.NewReplacer(
		"{{INTERVIEW_TYPE}}", string(interviewType),
		"{{TRANSCRIPT}}", strings.TrimSpace(transcript),
	).Replace(feedbackPromptTemplate)
}
