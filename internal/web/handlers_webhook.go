package web

import (
	"crypto/subtle"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/avatar"
	"github.com/spigell/interview-coach/internal/logger"
)

const maxWebhookBody = 4 << 20

// handleAvatarWebhook ingests provider callbacks. Transcript events are routed
// to the tab owning the conversation; everything else is acknowledged.
func (s *Server) handleAvatarWebhook(w http.ResponseWriter, r *http.Request) {
	if token := s.cfg.WebhookToken; token != "" {
		got := r.URL.Query().Get("token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			s.errorResponse(w, http.StatusUnauthorized, "invalid webhook token")
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "callback body too large")
		return
	}

	event, err := avatar.ParseCallback(body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	log := s.logger.With(
		zap.String(logger.FieldConversation, event.ConversationID),
		zap.String("event_type", event.EventType),
	)

	lines := event.TranscriptLines()
	if len(lines) == 0 {
		log.Debug("avatar callback ignored")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	c, ok := s.tabs.ByConversation(event.ConversationID)
	if !ok {
		log.Info("avatar callback for unknown conversation")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err := c.AttachTranscript(event.ConversationID, lines...); err != nil {
		log.Warn("attach transcript", zap.Error(err))
		w.WriteHeader(http.StatusAccepted)
		return
	}

	log.Debug("transcript attached", zap.Int("lines", len(lines)))
	w.WriteHeader(http.StatusAccepted)
}
