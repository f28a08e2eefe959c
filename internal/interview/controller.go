// Package interview drives one mock interview per browser tab: it creates the
// interviewer persona and live conversation, tracks the call while it runs and
// cleans the provider resources up when the call ends or the tab goes away.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/avatar"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/session"
	"github.com/spigell/interview-coach/internal/types"
)

const defaultTeardownTimeout = 5 * time.Second

// Interview outcomes reported to metrics.
const (
	outcomeStarted   = "started"
	outcomeFailed    = "failed"
	outcomeCompleted = "completed"
	outcomeAbandoned = "abandoned"
)

var (
	// ErrNoIntake means the tab has no intake data to interview on.
	ErrNoIntake = errors.New("no interview data, complete the upload step first")
	// ErrNotActive is returned by call operations outside an active call.
	ErrNotActive = errors.New("interview is not active")
	// ErrAbandoned is returned by Start when the tab was torn down mid-setup.
	ErrAbandoned = errors.New("interview was abandoned during setup")
)

// AvatarService is the subset of the avatar provider client the controller drives.
type AvatarService interface {
	CreatePersona(ctx context.Context, r avatar.PersonaRequest) (*avatar.Persona, error)
	CreateConversation(ctx context.Context, r avatar.ConversationRequest) (*avatar.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*avatar.ConversationStatus, error)
	DeletePersona(ctx context.Context, personaID string)
	EndConversation(ctx context.Context, conversationID string)
}

// Config tunes controller behaviour.
type Config struct {
	ReplicaID string
	// Properties override DefaultProperties when set.
	Properties *avatar.Properties
	// EndConversation also ends the provider conversation on exit.
	EndConversation bool
	TeardownTimeout time.Duration
}

// Controller is the interview state machine for one tab. It is safe for
// concurrent use; the lock is never held across provider calls.
type Controller struct {
	avatar   AvatarService
	store    *session.Store
	cfg      Config
	logger   *zap.Logger
	observer metrics.Observer
	now      func() time.Time

	mu              sync.Mutex
	state           State
	abandoned       bool
	intake          types.IntakeData
	personaID       string
	conversationID  string
	conversationURL string
	microphone      bool
	camera          bool
	transcript      []string
	notice          string
}

// NewController returns an Idle controller bound to the tab's store.
func NewController(svc AvatarService, store *session.Store, cfg Config, log *zap.Logger, observer metrics.Observer) *Controller {
	if cfg.TeardownTimeout <= 0 {
		cfg.TeardownTimeout = defaultTeardownTimeout
	}
	if store == nil {
		store = session.NewStore()
	}

	return &Controller{
		avatar:   svc,
		store:    store,
		cfg:      cfg,
		logger:   logger.WithFields(log),
		observer: metrics.OrNop(observer),
		now:      time.Now,
		state:    StateIdle,
	}
}

// Store exposes the tab's session store.
func (c *Controller) Store() *session.Store {
	return c.store
}

// Start moves an Idle, Terminated or failed controller into an active call.
// Entering while a call is active or being set up reports that state instead.
// Provider calls are detached from ctx cancellation: a response that arrives
// after the caller gave up is still recorded.
func (c *Controller) Start(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	switch c.state {
	case StateActive:
		c.mu.Unlock()
		return OutcomeActive, nil
	case StateInitializing, StateEnding:
		c.mu.Unlock()
		return OutcomePending, nil
	}

	intake, err := c.store.IntakeData()
	if err != nil || intake == nil {
		c.mu.Unlock()
		if err != nil {
			c.logger.Warn("stored interview data is unreadable", zap.Error(err))
		}
		return OutcomeRedirectToIntake, ErrNoIntake
	}

	if stale := c.store.PersonaID(); stale != "" {
		c.logger.Info("deleting persona left from previous interview", zap.String(logger.FieldPersona, stale))
		c.release(stale, c.store.ConversationID())
		c.store.ClearActive()
	}

	c.state = StateInitializing
	c.abandoned = false
	c.intake = *intake
	c.personaID, c.conversationID, c.conversationURL = "", "", ""
	c.microphone, c.camera = true, true
	c.transcript = nil
	c.notice = ""
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	log := c.logger.With(zap.String(logger.FieldInterviewType, string(intake.InterviewType)))
	log.Info("starting interview")

	persona, err := c.avatar.CreatePersona(ctx, PersonaRequest(*intake))
	if err != nil {
		c.fail("Failed to start interview. Please try again.")
		log.Error("create persona failed", zap.Error(err))
		return OutcomeFailed, fmt.Errorf("create persona: %w", err)
	}
	if err := c.store.SetPersonaID(persona.ID); err != nil {
		c.release(persona.ID, "")
		c.fail("Failed to start interview. Please try again.")
		return OutcomeFailed, err
	}
	log = log.With(zap.String(logger.FieldPersona, persona.ID))

	props := DefaultProperties()
	if c.cfg.Properties != nil {
		props = *c.cfg.Properties
	}

	conversation, err := c.avatar.CreateConversation(ctx, ConversationRequest(*intake, persona.ID, c.cfg.ReplicaID, props))
	if err != nil {
		c.release(persona.ID, "")
		c.store.ClearActive()
		c.fail("Failed to start interview. Please try again.")
		log.Error("create conversation failed", zap.Error(err))
		return OutcomeFailed, fmt.Errorf("create conversation: %w", err)
	}
	if err := c.store.SetConversationID(conversation.ID); err != nil {
		c.release(persona.ID, conversation.ID)
		c.store.ClearActive()
		c.fail("Failed to start interview. Please try again.")
		return OutcomeFailed, err
	}

	c.mu.Lock()
	if c.abandoned {
		c.state = StateIdle
		c.mu.Unlock()
		c.release(persona.ID, conversation.ID)
		c.store.ClearActive()
		c.observer.RecordInterview(outcomeAbandoned)
		log.Info("tab closed during setup, released provider resources")
		return OutcomeFailed, ErrAbandoned
	}
	c.state = StateActive
	c.personaID = persona.ID
	c.conversationID = conversation.ID
	c.conversationURL = conversation.URL
	c.mu.Unlock()

	c.observer.RecordInterview(outcomeStarted)
	log.Info("interview is live", zap.String(logger.FieldConversation, conversation.ID))

	return OutcomeActive, nil
}

func (c *Controller) fail(notice string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateError
	c.notice = notice
	c.observer.RecordInterview(outcomeFailed)
}

// End finishes an active call: provider resources are released best-effort,
// the completed interview is stored and the identifiers are cleared. The
// controller reaches Terminated even when cleanup fails. Ending an already
// ending or terminated interview is a no-op.
func (c *Controller) End(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateEnding, StateTerminated:
		c.mu.Unlock()
		return nil
	case StateActive:
	default:
		c.mu.Unlock()
		return ErrNotActive
	}

	c.state = StateEnding
	personaID := c.store.PersonaID()
	conversationID := c.conversationID
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	log := c.logger.With(logger.SessionFields("", personaID, conversationID)...)

	if personaID != "" {
		c.avatar.DeletePersona(ctx, personaID)
	}
	if c.cfg.EndConversation && conversationID != "" {
		c.avatar.EndConversation(ctx, conversationID)
	}

	// lines attached during cleanup are part of the interview
	c.mu.Lock()
	completed := types.CompletedInterview{
		IntakeData:     c.intake,
		CompletedAt:    c.now(),
		Transcript:     append([]string(nil), c.transcript...),
		ConversationID: conversationID,
	}
	err := c.store.SetCompletedInterview(completed)
	c.store.ClearActive()
	c.state = StateTerminated
	c.personaID, c.conversationID, c.conversationURL = "", "", ""
	c.mu.Unlock()

	c.observer.RecordInterview(outcomeCompleted)
	log.Info("interview ended", zap.Int("transcript_lines", len(completed.Transcript)))

	if err != nil {
		return fmt.Errorf("store completed interview: %w", err)
	}
	return nil
}

// Teardown releases whatever persona the tab still holds without waiting for
// the provider. The returned channel closes once the background cleanup is
// done; production callers ignore it.
func (c *Controller) Teardown() <-chan struct{} {
	c.mu.Lock()
	personaID := c.store.PersonaID()
	conversationID := c.store.ConversationID()
	switch c.state {
	case StateInitializing:
		c.abandoned = true
	case StateActive:
		c.state = StateIdle
		c.personaID, c.conversationID, c.conversationURL = "", "", ""
		c.observer.RecordInterview(outcomeAbandoned)
	}
	c.store.ClearActive()
	c.mu.Unlock()

	return c.release(personaID, conversationID)
}

// release deletes personaID (and ends conversationID when configured) in the
// background, bounded by the teardown timeout.
func (c *Controller) release(personaID, conversationID string) <-chan struct{} {
	done := make(chan struct{})
	if personaID == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.TeardownTimeout)
		defer cancel()

		c.avatar.DeletePersona(ctx, personaID)
		if c.cfg.EndConversation && conversationID != "" {
			c.avatar.EndConversation(ctx, conversationID)
		}
		c.logger.Debug("released provider resources", logger.SessionFields("", personaID, conversationID)...)
	}()

	return done
}

// ToggleMicrophone flips the local microphone flag and returns the new value.
func (c *Controller) ToggleMicrophone() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return false, ErrNotActive
	}
	c.microphone = !c.microphone
	return c.microphone, nil
}

// ToggleCamera flips the local camera flag and returns the new value.
func (c *Controller) ToggleCamera() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return false, ErrNotActive
	}
	c.camera = !c.camera
	return c.camera, nil
}

// AppendTranscript adds non-blank lines to the running transcript.
func (c *Controller) AppendTranscript(lines ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return ErrNotActive
	}
	c.transcript = appendLines(c.transcript, lines)
	return nil
}

func appendLines(transcript, lines []string) []string {
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			transcript = append(transcript, line)
		}
	}
	return transcript
}

// Owns reports whether conversationID belongs to this tab's active call or to
// its completed interview.
func (c *Controller) Owns(conversationID string) bool {
	if conversationID == "" {
		return false
	}

	c.mu.Lock()
	active := c.conversationID
	c.mu.Unlock()
	if active == conversationID {
		return true
	}

	completed, err := c.store.CompletedInterview()
	return err == nil && completed != nil && completed.ConversationID == conversationID
}

// AttachTranscript records provider transcript lines for conversationID. While
// the call is active or ending they extend the running transcript. Once the
// call has ended they are added to the completed interview, which the
// provider's post-call transcript relies on.
func (c *Controller) AttachTranscript(conversationID string, lines ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if (c.state == StateActive || c.state == StateEnding) && c.conversationID == conversationID {
		c.transcript = appendLines(c.transcript, lines)
		return nil
	}

	completed, err := c.store.CompletedInterview()
	if err != nil {
		return err
	}
	if completed == nil || completed.ConversationID != conversationID {
		return ErrNotActive
	}

	completed.Transcript = appendLines(completed.Transcript, lines)
	return c.store.SetCompletedInterview(*completed)
}

// Probe fetches the provider's view of the active conversation.
func (c *Controller) Probe(ctx context.Context) (*avatar.ConversationStatus, error) {
	c.mu.Lock()
	id := c.conversationID
	c.mu.Unlock()

	if id == "" {
		return nil, ErrNotActive
	}
	return c.avatar.GetConversation(ctx, id)
}

// Snapshot is a point-in-time copy of the controller for rendering.
type Snapshot struct {
	State           State               `json:"state"`
	InterviewType   types.InterviewType `json:"interviewType,omitempty"`
	PersonaID       string              `json:"personaId,omitempty"`
	ConversationID  string              `json:"conversationId,omitempty"`
	ConversationURL string              `json:"conversationUrl,omitempty"`
	Microphone      bool                `json:"microphone"`
	Camera          bool                `json:"camera"`
	Transcript      []string            `json:"transcript"`
	Notice          string              `json:"notice,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:           c.state,
		InterviewType:   c.intake.InterviewType,
		PersonaID:       c.personaID,
		ConversationID:  c.conversationID,
		ConversationURL: c.conversationURL,
		Microphone:      c.microphone,
		Camera:          c.camera,
		Transcript:      append([]string{}, c.transcript...),
		Notice:          c.notice,
	}
}
