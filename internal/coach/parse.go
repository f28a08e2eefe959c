package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/kaptinlin/jsonrepair"
	"github.com/xeipuuv/gojsonschema"
)

var errNoGenerator = errors.New("language model is not configured")

var (
	//go:embed schemas/feedback.schema.json
	feedbackSchemaJSON string

	//go:embed schemas/questions.schema.json
	questionsSchemaJSON string

	feedbackSchema  = mustSchema("feedback", feedbackSchemaJSON)
	questionsSchema = mustSchema("questions", questionsSchemaJSON)
)

func mustSchema(name, doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return schema
}

// SchemaError lists every violation found in a model reply.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "response does not match schema: " + strings.Join(e.Violations, "; ")
}

// parseStrict cleans a model reply, validates it against schema and decodes it into target.
func parseStrict(raw string, schema *gojsonschema.Schema, target any) error {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return errors.New("empty response")
	}

	if !json.Valid([]byte(cleaned)) {
		repaired, err := jsonrepair.JSONRepair(cleaned)
		if err != nil {
			return fmt.Errorf("repair response: %w", err)
		}
		cleaned = repaired
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return fmt.Errorf("validate response: %w", err)
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return &SchemaError{Violations: violations}
	}

	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// extractJSON strips markdown code fences models like to wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
