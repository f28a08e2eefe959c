package session

import (
	"errors"
	"time"

	"github.com/spigell/interview-coach/internal/types"
)

// BeginIntake starts a new upload/interview cycle: the previous completed
// interview is discarded and data becomes the pending intake.
func (s *Store) BeginIntake(data types.IntakeData) error {
	s.Remove(KeyCompletedInterview, KeyInterviewFeedback)
	return s.Set(KeyInterviewData, data)
}

// IntakeData returns the pending intake, or nil when none is stored.
func (s *Store) IntakeData() (*types.IntakeData, error) {
	var data types.IntakeData
	if err := s.Get(KeyInterviewData, &data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &data, nil
}

// PersonaID returns the active persona id or an empty string.
func (s *Store) PersonaID() string {
	return s.getString(KeyCurrentPersonaID)
}

func (s *Store) SetPersonaID(id string) error {
	return s.Set(KeyCurrentPersonaID, id)
}

// ConversationID returns the active conversation id or an empty string.
func (s *Store) ConversationID() string {
	return s.getString(KeyCurrentConversationID)
}

func (s *Store) SetConversationID(id string) error {
	return s.Set(KeyCurrentConversationID, id)
}

// ClearActive forgets the persona and conversation identifiers.
func (s *Store) ClearActive() {
	s.Remove(KeyCurrentPersonaID, KeyCurrentConversationID)
}

// CompletedInterview returns the finished interview, or nil when none is stored.
func (s *Store) CompletedInterview() (*types.CompletedInterview, error) {
	var completed types.CompletedInterview
	if err := s.Get(KeyCompletedInterview, &completed); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &completed, nil
}

// SetCompletedInterview overwrites any earlier completed interview.
func (s *Store) SetCompletedInterview(completed types.CompletedInterview) error {
	return s.Set(KeyCompletedInterview, completed)
}

type storedFeedback struct {
	CompletedAt     time.Time       `json:"completedAt"`
	TranscriptLines int             `json:"transcriptLines"`
	Feedback        *types.Feedback `json:"feedback"`
}

// Feedback returns the feedback generated for completed, or nil when none was
// stored for that interview and transcript.
func (s *Store) Feedback(completed *types.CompletedInterview) *types.Feedback {
	var stored storedFeedback
	if completed == nil || s.Get(KeyInterviewFeedback, &stored) != nil {
		return nil
	}
	if !stored.CompletedAt.Equal(completed.CompletedAt) || stored.TranscriptLines != len(completed.Transcript) {
		return nil
	}
	return stored.Feedback
}

// SetFeedback remembers feedback for completed. A transcript that grows later
// invalidates it.
func (s *Store) SetFeedback(completed *types.CompletedInterview, feedback *types.Feedback) error {
	return s.Set(KeyInterviewFeedback, storedFeedback{
		CompletedAt:     completed.CompletedAt,
		TranscriptLines: len(completed.Transcript),
		Feedback:        feedback,
	})
}

func (s *Store) getString(key string) string {
	var value string
	if err := s.Get(key, &value); err != nil {
		return ""
	}
	return value
}
