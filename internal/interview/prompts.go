package interview

import (
	"fmt"
	"strings"

	"github.com/spigell/interview-coach/internal/avatar"
	"github.com/spigell/interview-coach/internal/types"
)

const systemPromptTemplate = `You are an AI interviewer conducting a %s interview.
Ask relevant questions based on the candidate's resume and the job description provided.
Be professional, engaging, and provide a realistic interview experience.
Ask follow-up questions based on the candidate's responses and evaluate their suitability for the role.
Keep questions concise and allow the candidate time to respond fully.`

const contextTemplate = `Interview Type: %s
Resume: %s
Job Description: %s

Conduct a thorough %s interview focusing on relevant skills and experience.`

// DefaultProperties are the call settings used when none are configured.
func DefaultProperties() avatar.Properties {
	return avatar.Properties{
		EnableRecording:               avatar.Bool(true),
		EnableClosedCaptions:          avatar.Bool(true),
		MaxCallDurationSeconds:        avatar.Int(3600),
		ParticipantLeftTimeoutSeconds: avatar.Int(60),
	}
}

// PersonaRequest builds the interviewer persona for one intake.
func PersonaRequest(data types.IntakeData) avatar.PersonaRequest {
	t := string(data.InterviewType)
	return avatar.PersonaRequest{
		Name:         t + " Interviewer",
		SystemPrompt: fmt.Sprintf(systemPromptTemplate, t),
		Context:      fmt.Sprintf(contextTemplate, t, data.Resume, data.JobDescription, strings.ToLower(t)),
		PipelineMode: avatar.PipelineFull,
	}
}

// ConversationRequest builds the live call bound to personaID.
func ConversationRequest(data types.IntakeData, personaID, replicaID string, props avatar.Properties) avatar.ConversationRequest {
	t := string(data.InterviewType)
	return avatar.ConversationRequest{
		PersonaID:  personaID,
		ReplicaID:  replicaID,
		Name:       t + " Interview Session",
		Context:    fmt.Sprintf("Let's begin your mock %s interview. I'll ask you questions tailored to your resume and the job role. Answer each question clearly and confidently.", t),
		Greeting:   fmt.Sprintf("Hello! I'm excited to conduct your %s interview today. Let's get started with some questions about your background and experience.", t),
		Properties: &props,
	}
}
