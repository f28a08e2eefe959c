package types

// Feedback is the scored assessment of one completed interview.
type Feedback struct {
	OverallScore    float64  `json:"overallScore"`
	VocabularyScore float64  `json:"vocabularyScore"`
	AccuracyScore   float64  `json:"accuracyScore"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`

	// Fallback is set when the value is the built-in substitute rather than a model reply.
	Fallback bool `json:"-"`
}
