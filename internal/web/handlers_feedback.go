package web

import (
	"net/http"

	"go.uber.org/zap"
)

// handleFeedback renders the report for the completed interview. Model
// feedback is generated once per interview transcript and reused on reload;
// fallback feedback is not kept so a later visit can retry the model.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	c, _, ok := s.tabs.Lookup(r)
	if !ok {
		redirect(w, r, "/upload")
		return
	}

	store := c.Store()
	completed, err := store.CompletedInterview()
	if err != nil || completed == nil {
		if err != nil {
			s.logger.Warn("stored completed interview is unreadable", zap.Error(err))
		}
		redirect(w, r, "/upload")
		return
	}

	feedback := store.Feedback(completed)
	if feedback == nil {
		feedback = s.coach.GenerateFeedback(r.Context(), completed.TranscriptText(), completed.InterviewType)
		if !feedback.Fallback {
			if err := store.SetFeedback(completed, feedback); err != nil {
				s.logger.Warn("store feedback", zap.Error(err))
			}
		}
	}

	s.render(w, http.StatusOK, "feedback.html", feedbackPage{
		Title:     "Feedback",
		Interview: completed,
		Feedback:  feedback,
	})
}
