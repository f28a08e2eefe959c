package avatar

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/utils"
)

const apiConversationsPath = "/conversations"

// Properties tunes a conversation. Nil fields are omitted so the provider default applies.
type Properties struct {
	EnableRecording                 *bool `json:"enable_recording,omitempty" mapstructure:"enable-recording"`
	EnableClosedCaptions            *bool `json:"enable_closed_captions,omitempty" mapstructure:"enable-closed-captions"`
	MaxCallDurationSeconds          *int  `json:"max_call_duration,omitempty" mapstructure:"max-call-duration"`
	ParticipantLeftTimeoutSeconds   *int  `json:"participant_left_timeout,omitempty" mapstructure:"participant-left-timeout"`
	ParticipantAbsentTimeoutSeconds *int  `json:"participant_absent_timeout,omitempty" mapstructure:"participant-absent-timeout"`
}

type ConversationRequest struct {
	PersonaID   string      `json:"persona_id"`
	ReplicaID   string      `json:"replica_id,omitempty"`
	Name        string      `json:"conversation_name"`
	Context     string      `json:"conversational_context"`
	Greeting    string      `json:"custom_greeting"`
	CallbackURL string      `json:"callback_url,omitempty"`
	Properties  *Properties `json:"properties,omitempty"`
}

type Conversation struct {
	ID        string    `json:"conversation_id"`
	Name      string    `json:"conversation_name"`
	Status    string    `json:"status"`
	URL       string    `json:"conversation_url"`
	ReplicaID string    `json:"replica_id"`
	PersonaID string    `json:"persona_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationStatus is the read-only view returned by GetConversation.
type ConversationStatus struct {
	Conversation `json:",squash"`
	UpdatedAt    time.Time `json:"updated_at"`

	Raw map[string]any `json:"-"`
}

// CreateConversation starts a live conversation bound to an existing persona.
func (c *Client) CreateConversation(ctx context.Context, r ConversationRequest) (*Conversation, error) {
	const op = "create conversation"

	if strings.TrimSpace(r.PersonaID) == "" {
		return nil, errors.New(op + ": persona id is required")
	}

	r.ReplicaID = utils.FirstNonEmpty(r.ReplicaID, c.defaultReplicaID)
	r.CallbackURL = utils.FirstNonEmpty(r.CallbackURL, c.callbackURL)

	data, err := c.do(ctx, op, http.MethodPost, apiConversationsPath, r)
	if err != nil {
		return nil, err
	}

	var conversation Conversation
	if _, err := decodeObject(op, data, &conversation); err != nil {
		return nil, err
	}

	if strings.TrimSpace(conversation.ID) == "" {
		return nil, errors.New(op + ": provider returned empty conversation id")
	}

	if conversation.PersonaID == "" {
		conversation.PersonaID = r.PersonaID
	}

	c.logger.Debug("conversation created",
		zap.String("conversation_id", conversation.ID),
		zap.String("persona_id", conversation.PersonaID),
		zap.String("status", conversation.Status),
	)

	return &conversation, nil
}

// GetConversation probes the provider for the current state of a conversation.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*ConversationStatus, error) {
	const op = "get conversation"

	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, errors.New(op + ": conversation id is required")
	}

	data, err := c.do(ctx, op, http.MethodGet, apiConversationsPath+"/"+url.PathEscape(conversationID), nil)
	if err != nil {
		return nil, err
	}

	var status ConversationStatus
	raw, err := decodeObject(op, data, &status)
	if err != nil {
		return nil, err
	}
	status.Raw = raw

	return &status, nil
}

// EndConversation asks the provider to close a live call. Like DeletePersona it
// only logs failures.
func (c *Client) EndConversation(ctx context.Context, conversationID string) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return
	}

	path := apiConversationsPath + "/" + url.PathEscape(conversationID) + "/end"
	if _, err := c.do(ctx, "end conversation", http.MethodPost, path, nil); err != nil {
		c.logger.Warn("failed to end conversation", zap.String("conversation_id", conversationID), zap.Error(err))
		return
	}

	c.logger.Debug("conversation ended", zap.String("conversation_id", conversationID))
}

// Bool and Int build optional Properties values.
func Bool(v bool) *bool { return &v }

func Int(v int) *int { return &v }
