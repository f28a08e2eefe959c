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
	questionsSystemPrompt = "You are an expert interviewer creating relevant questions for job candidates."
	questionsTemperature  = 0.8
	questionsMaxTokens    = 800
)

//go:embed prompts/questions.md
var questionsPromptTemplate string

// GenerateQuestions drafts practice questions tailored to the candidate.
// On any failure the static list for the interview type is returned.
func (c *Coach) GenerateQuestions(ctx context.Context, resume, jobDescription string, interviewType types.InterviewType) []string {
	log := []zap.Field{zap.String(logger.FieldInterviewType, string(interviewType))}

	raw, err := c.complete(ctx, operationQuestions, ai.Prompt{
		System:      questionsSystemPrompt,
		User:        QuestionsPrompt(resume, jobDescription, interviewType),
		Temperature: questionsTemperature,
		MaxTokens:   questionsMaxTokens,
	})
	if err != nil {
		c.fallback(operationQuestions, err, log...)
		return FallbackQuestions(interviewType)
	}

	var questions []string
	if err := parseStrict(raw, questionsSchema, &questions); err != nil {
		c.fallback(operationQuestions, err, append(log, zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)))...)
		return FallbackQuestions(interviewType)
	}

	for i := range questions {
		questions[i] = strings.TrimSpace(questions[i])
	}

	return questions
}

// QuestionsPrompt renders the question drafting instructions.
func QuestionsPrompt(resume, jobDescription string, interviewType types.InterviewType) string {
	return strings.NewReplacer(
		"{{INTERVIEW_TYPE}}", string(interviewType),
		"{{RESUME}}", strings.TrimSpace(resume),
		"{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription),
	).Replace(questionsPromptTemplate)
}
