package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/intake"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/upload")
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	page := uploadPage{Title: "Upload", InterviewTypes: interviewTypeOptions("")}

	if c, _, ok := s.tabs.Lookup(r); ok {
		if snap := c.Snapshot(); snap.State == interview.StateError {
			page.Notice = snap.Notice
		}
	}

	s.render(w, http.StatusOK, "upload.html", page)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	c, tab := s.tabs.Ensure(w, r)
	log := s.logger.With(zap.String(logger.FieldTab, tab))

	form, err := intake.FromRequest(r, s.cfg.MaxUploadBytes)
	if err != nil {
		page := uploadPage{
			Title:          "Upload",
			JobDescription: form.JobDescription,
			InterviewTypes: interviewTypeOptions(form.InterviewType),
		}

		var rejected *intake.RejectedFileError
		if errors.As(err, &rejected) {
			log.Info("upload rejected", zap.String("field", rejected.Field), zap.String("content_type", rejected.ContentType))
			page.Error = rejected.Message
			s.render(w, http.StatusUnprocessableEntity, "upload.html", page)
			return
		}

		log.Warn("read upload form", zap.Error(err))
		page.Error = "Failed to prepare interview. Please try again."
		s.render(w, http.StatusBadRequest, "upload.html", page)
		return
	}

	data, err := form.Submit(s.now())
	if err != nil {
		s.render(w, http.StatusUnprocessableEntity, "upload.html", uploadPage{
			Title:          "Upload",
			Error:          intake.ErrIncomplete.Error(),
			JobDescription: form.JobDescription,
			InterviewTypes: interviewTypeOptions(form.InterviewType),
		})
		return
	}

	// a new cycle replaces whatever call the tab still holds
	c.Teardown()
	if err := c.Store().BeginIntake(data); err != nil {
		log.Error("store interview data", zap.Error(err))
		page := uploadPage{Title: "Upload", Error: "Failed to prepare interview. Please try again.", InterviewTypes: interviewTypeOptions(form.InterviewType)}
		s.render(w, http.StatusInternalServerError, "upload.html", page)
		return
	}

	log.Info("intake accepted", zap.String(logger.FieldInterviewType, string(data.InterviewType)))
	redirect(w, r, "/interview")
}
