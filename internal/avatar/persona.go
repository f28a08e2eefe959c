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

const apiPersonasPath = "/personas"

// PipelineMode selects how the provider processes persona turns.
type PipelineMode string

const (
	PipelineFull PipelineMode = "full"
	PipelineEcho PipelineMode = "echo"
)

type PersonaRequest struct {
	Name             string       `json:"persona_name"`
	SystemPrompt     string       `json:"system_prompt"`
	Context          string       `json:"context"`
	PipelineMode     PipelineMode `json:"pipeline_mode"`
	DefaultReplicaID string       `json:"default_replica_id,omitempty"`
}

type Persona struct {
	ID        string    `json:"persona_id"`
	Name      string    `json:"persona_name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePersona registers a new interviewer persona. The caller must not create
// a conversation when this fails.
func (c *Client) CreatePersona(ctx context.Context, r PersonaRequest) (*Persona, error) {
	const op = "create persona"

	if r.PipelineMode == "" {
		r.PipelineMode = PipelineFull
	}
	r.DefaultReplicaID = utils.FirstNonEmpty(r.DefaultReplicaID, c.defaultReplicaID)

	data, err := c.do(ctx, op, http.MethodPost, apiPersonasPath, r)
	if err != nil {
		return nil, err
	}

	var persona Persona
	if _, err := decodeObject(op, data, &persona); err != nil {
		return nil, err
	}

	if strings.TrimSpace(persona.ID) == "" {
		return nil, errors.New(op + ": provider returned empty persona id")
	}

	c.logger.Debug("persona created", zap.String("persona_id", persona.ID), zap.String("persona_name", persona.Name))

	return &persona, nil
}

// DeletePersona removes a persona. It is a cleanup operation: failures are
// logged and never returned.
func (c *Client) DeletePersona(ctx context.Context, personaID string) {
	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return
	}

	if _, err := c.do(ctx, "delete persona", http.MethodDelete, apiPersonasPath+"/"+url.PathEscape(personaID), nil); err != nil {
		c.logger.Warn("failed to delete persona", zap.String("persona_id", personaID), zap.Error(err))
		return
	}

	c.logger.Debug("persona deleted", zap.String("persona_id", personaID))
}
