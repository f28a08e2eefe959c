// Package coach turns interview transcripts and candidate documents into
// feedback and practice questions using a language model. Every failure is
// absorbed: callers always receive a displayable value.
package coach

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	defaultMaxLogLength = 200

	serviceName = "llm"

	operationFeedback  = "feedback"
	operationQuestions = "questions"
)

// Coach implements ai.Coach on top of a Generator.
type Coach struct {
	generator ai.Generator
	logger    *zap.Logger
	observer  metrics.Observer
	maxLogLen int
}

var _ ai.Coach = (*Coach)(nil)

// New returns a Coach. A nil generator is allowed and makes every call return
// its fallback.
func New(generator ai.Generator, log *zap.Logger, observer metrics.Observer, maxLogLength int) *Coach {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &Coach{
		generator: generator,
		logger:    logger.WithFields(log, logger.StringFields(logger.StringField{Key: logger.FieldModel, Value: model})...),
		observer:  metrics.OrNop(observer),
		maxLogLen: maxLogLength,
	}
}

// complete sends prompt to the model and returns its raw reply.
func (c *Coach) complete(ctx context.Context, operation string, prompt ai.Prompt) (string, error) {
	if c.generator == nil {
		return "", errNoGenerator
	}

	c.logger.Debug("model request",
		zap.String("operation", operation),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt.User)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt.User, c.maxLogLen)),
	)

	started := time.Now()
	raw, err := c.generator.GenerateContent(ctx, prompt)
	c.observer.RecordCall(serviceName, operation, time.Since(started), err)
	if err != nil {
		return "", err
	}

	c.logger.Debug("model response",
		zap.String("operation", operation),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	return raw, nil
}

func (c *Coach) fallback(operation string, err error, fields ...zap.Field) {
	c.observer.RecordFallback(operation)
	c.logger.Warn("serving fallback", append(fields, zap.String("operation", operation), zap.Error(err))...)
}
