package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldTab identifies the browser tab session a log entry belongs to.
	FieldTab = "tab_session"
	// FieldPersona is the avatar provider persona identifier.
	FieldPersona = "persona_id"
	// FieldConversation is the avatar provider conversation identifier.
	FieldConversation = "conversation_id"
	// FieldInterviewType is the selected interview type.
	FieldInterviewType = "interview_type"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithCommonFields attaches the AI provider and model to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}

// SessionFields describes one interview session. Empty identifiers are skipped,
// so the same helper works before and after the persona exists.
func SessionFields(tab, personaID, conversationID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldTab, Value: tab},
		StringField{Key: FieldPersona, Value: personaID},
		StringField{Key: FieldConversation, Value: conversationID},
	)
}
