// Package types holds the data model shared by the intake, interview and feedback flows.
package types

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// InterviewType selects the flavour of the mock interview.
type InterviewType string

const (
	HR           InterviewType = "HR"
	Technical    InterviewType = "Technical"
	SystemDesign InterviewType = "System Design"
)

// InterviewTypes lists the supported interview types in display order.
var InterviewTypes = []InterviewType{HR, Technical, SystemDesign}

// ParseInterviewType resolves user or config input into a known interview type.
func ParseInterviewType(s string) (InterviewType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "", "-", "", " ", "").Replace(normalized)

	switch normalized {
	case "hr":
		return HR, nil
	case "technical":
		return Technical, nil
	case "systemdesign":
		return SystemDesign, nil
	default:
		return "", fmt.Errorf("unknown interview type %q", s)
	}
}

// Valid reports whether t is one of the supported interview types.
func (t InterviewType) Valid() bool {
	for _, known := range InterviewTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the human readable name used on pages.
func (t InterviewType) Label() string {
	return string(t) + " Interview"
}

// IntakeData is written once by the intake flow and consumed by the interview controller.
type IntakeData struct {
	Resume         string        `json:"resume" validate:"required"`
	JobDescription string        `json:"jobDescription" validate:"required"`
	InterviewType  InterviewType `json:"interviewType" validate:"interviewtype"`
	Timestamp      time.Time     `json:"timestamp" validate:"required"`
}

// Validate checks that every field required to start an interview is present.
func (d *IntakeData) Validate() error {
	return validate().Struct(d)
}

// CompletedInterview is the intake data merged with what happened during the call.
type CompletedInterview struct {
	IntakeData
	CompletedAt    time.Time `json:"completedAt"`
	Transcript     []string  `json:"transcript"`
	ConversationID string    `json:"conversationId"`
}

// TranscriptText joins transcript lines in call order.
func (c *CompletedInterview) TranscriptText() string {
	return strings.Join(c.Transcript, "\n")
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// registration only fails on an empty tag or nil func
		_ = v.RegisterValidation("interviewtype", func(fl validator.FieldLevel) bool {
			return InterviewType(fl.Field().String()).Valid()
		})
		validatorInst = v
	})
	return validatorInst
}
