package avatar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Callback event types sent to the conversation callback URL.
const (
	EventTranscriptionReady = "application.transcription_ready"
	EventUtterance          = "conversation.utterance"
	EventShutdown           = "system.shutdown"
)

// TranscriptEntry is one turn of a conversation transcript.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CallbackProperties struct {
	Transcript []TranscriptEntry `json:"transcript"`
	Role       string            `json:"role"`
	Speech     string            `json:"speech"`
	Reason     string            `json:"shutdown_reason"`
}

// CallbackEvent is a provider notification about a conversation.
type CallbackEvent struct {
	ConversationID string             `json:"conversation_id"`
	EventType      string             `json:"event_type"`
	MessageType    string             `json:"message_type"`
	Timestamp      time.Time          `json:"timestamp"`
	Properties     CallbackProperties `json:"properties"`
}

// ParseCallback decodes a callback body. Unknown fields are ignored.
func ParseCallback(data []byte) (*CallbackEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode callback: %w", err)
	}

	var event CallbackEvent
	if err := decode(raw, &event); err != nil {
		return nil, fmt.Errorf("decode callback: %w", err)
	}

	if strings.TrimSpace(event.ConversationID) == "" {
		return nil, fmt.Errorf("decode callback: conversation id is missing")
	}

	return &event, nil
}

// TranscriptLines renders the spoken turns of the event as "Speaker: text"
// lines. System turns are dropped.
func (e *CallbackEvent) TranscriptLines() []string {
	var lines []string

	add := func(role, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		speaker := speakerLabel(role)
		if speaker == "" {
			return
		}
		lines = append(lines, speaker+": "+text)
	}

	switch e.EventType {
	case EventTranscriptionReady:
		for _, entry := range e.Properties.Transcript {
			add(entry.Role, entry.Content)
		}
	case EventUtterance:
		add(e.Properties.Role, e.Properties.Speech)
	}

	return lines
}

func speakerLabel(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user":
		return "Candidate"
	case "assistant", "replica":
		return "Interviewer"
	default:
		return ""
	}
}
