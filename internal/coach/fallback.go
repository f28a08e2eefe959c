package coach

import (
	"fmt"

	"github.com/spigell/interview-coach/internal/types"
)

const fallbackFeedbackText = "Thank you for completing your %s interview. Based on the session, you demonstrated good communication skills and relevant knowledge. To improve further, focus on providing more specific examples from your experience and showing greater enthusiasm for the role. Practice common interview questions and research the company thoroughly before your next interview."

var (
	fallbackStrengths = []string{
		"Clear communication style",
		"Professional demeanor",
		"Relevant experience mentioned",
		"Good technical understanding",
	}
	fallbackImprovements = []string{
		"Provide more specific examples",
		"Show more enthusiasm and energy",
		"Ask more thoughtful questions",
		"Better structure for answers",
	}
	fallbackRecommendations = []string{
		"Practice the STAR method for behavioral questions",
		"Research the company and role more thoroughly",
		"Prepare specific examples that highlight your achievements",
		"Work on confident body language and tone",
	}

	fallbackQuestions = map[types.InterviewType][]string{
		types.HR: {
			"Tell me about yourself and your career journey.",
			"Why are you interested in this position?",
			"Describe a challenging situation you faced at work and how you handled it.",
			"What are your greatest strengths and weaknesses?",
			"Where do you see yourself in 5 years?",
		},
		types.Technical: {
			"Explain your experience with the technologies mentioned in the job description.",
			"Walk me through a complex technical project you've worked on.",
			"How do you approach debugging and troubleshooting?",
			"What's your experience with version control and collaboration?",
			"How do you stay updated with new technologies?",
		},
		types.SystemDesign: {
			"Design a scalable system for a social media platform.",
			"How would you handle high traffic and ensure system reliability?",
			"Explain your approach to database design and optimization.",
			"Describe how you would implement caching strategies.",
			"How do you ensure security in distributed systems?",
		},
	}
)

// FallbackFeedback is the fixed assessment served when the model cannot be used.
func FallbackFeedback(interviewType types.InterviewType) *types.Feedback {
	return &types.Feedback{
		OverallScore:    7.0,
		VocabularyScore: 7.5,
		AccuracyScore:   6.5,
		ConfidenceScore: 7.0,
		Feedback:        fmt.Sprintf(fallbackFeedbackText, interviewType),
		Strengths:       clone(fallbackStrengths),
		Improvements:    clone(fallbackImprovements),
		Recommendations: clone(fallbackRecommendations),
		Fallback:        true,
	}
}

// FallbackQuestions returns the static question list for an interview type.
// Unknown types get the HR list.
func FallbackQuestions(interviewType types.InterviewType) []string {
	questions, ok := fallbackQuestions[interviewType]
	if !ok {
		questions = fallbackQuestions[types.HR]
	}
	return clone(questions)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
