package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
)

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	c, _, ok := s.tabs.Lookup(r)
	if !ok {
		redirect(w, r, "/upload")
		return
	}

	outcome, err := c.Start(r.Context())
	switch outcome {
	case interview.OutcomeActive:
		snap := c.Snapshot()
		s.render(w, http.StatusOK, "interview.html", interviewPage{
			Title:           snap.InterviewType.Label(),
			InterviewType:   snap.InterviewType,
			ConversationURL: snap.ConversationURL,
			Microphone:      snap.Microphone,
			Camera:          snap.Camera,
		})
	case interview.OutcomePending:
		s.render(w, http.StatusOK, "preparing.html", struct{ Title string }{Title: "Preparing"})
	default:
		if err != nil && !errors.Is(err, interview.ErrNoIntake) {
			s.logger.Warn("interview did not start", zap.Stringer("outcome", outcome), zap.Error(err))
		}
		redirect(w, r, "/upload")
	}
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	c, ok := s.activeTab(w, r)
	if !ok {
		return
	}

	device := r.FormValue("device")
	var (
		enabled bool
		err     error
	)
	switch device {
	case "microphone":
		enabled, err = c.ToggleMicrophone()
	case "camera":
		enabled, err = c.ToggleCamera()
	default:
		s.errorResponse(w, http.StatusBadRequest, "device must be microphone or camera")
		return
	}
	if err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"device": device, "enabled": enabled})
}

type transcriptRequest struct {
	Lines []string `json:"lines"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	c, ok := s.activeTab(w, r)
	if !ok {
		return
	}

	var req transcriptRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid transcript payload")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid transcript form")
			return
		}
		req.Lines = r.PostForm["line"]
	}

	if err := c.AppendTranscript(req.Lines...); err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	if c, _, ok := s.tabs.Lookup(r); ok {
		if err := c.End(r.Context()); err != nil {
			s.logger.Warn("end interview", zap.Error(err))
		}
	}
	redirect(w, r, "/feedback")
}

// handleTeardown receives the page-unload beacon. The response is not awaited
// by the browser.
func (s *Server) handleTeardown(w http.ResponseWriter, r *http.Request) {
	if c, _, ok := s.tabs.Lookup(r); ok {
		c.Teardown()
	}
	w.WriteHeader(http.StatusAccepted)
}

type statusResponse struct {
	interview.Snapshot
	Provider   map[string]any `json:"provider,omitempty"`
	ProbeError string         `json:"probeError,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c, _, ok := s.tabs.Lookup(r)
	if !ok {
		s.jsonResponse(w, http.StatusOK, statusResponse{Snapshot: interview.Snapshot{State: interview.StateIdle, Transcript: []string{}}})
		return
	}

	resp := statusResponse{Snapshot: c.Snapshot()}
	if r.URL.Query().Get("probe") != "" && resp.ConversationID != "" {
		status, err := c.Probe(r.Context())
		if err != nil {
			resp.ProbeError = err.Error()
		} else {
			resp.Provider = status.Raw
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	c, _, ok := s.tabs.Lookup(r)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, interview.ErrNoIntake.Error())
		return
	}

	data, err := c.Store().IntakeData()
	if err != nil || data == nil {
		s.errorResponse(w, http.StatusNotFound, interview.ErrNoIntake.Error())
		return
	}

	questions := s.coach.GenerateQuestions(r.Context(), data.Resume, data.JobDescription, data.InterviewType)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"interviewType": data.InterviewType,
		"questions":     questions,
	})
}

// activeTab resolves the request's tab or writes a 409.
func (s *Server) activeTab(w http.ResponseWriter, r *http.Request) (*interview.Controller, bool) {
	c, _, ok := s.tabs.Lookup(r)
	if !ok {
		s.errorResponse(w, http.StatusConflict, interview.ErrNotActive.Error())
		return nil, false
	}
	return c, true
}
