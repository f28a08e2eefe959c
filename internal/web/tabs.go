package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/session"
)

const (
	tabCookie = "tab_session"

	defaultSessionTTL  = 2 * time.Hour
	defaultMaxSessions = 512
)

// Tabs maps browser tab sessions to their interview controllers. Sessions
// idle past the TTL or pushed out by capacity are torn down.
type Tabs struct {
	cache         *expirable.LRU[string, *interview.Controller]
	newController func(id string) *interview.Controller
	secure        bool
	logger        *zap.Logger
}

func NewTabs(size int, ttl time.Duration, secure bool, newController func(id string) *interview.Controller, log *zap.Logger) *Tabs {
	if size <= 0 {
		size = defaultMaxSessions
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	t := &Tabs{
		newController: newController,
		secure:        secure,
		logger:        logger.WithFields(log),
	}

	// runs under the cache lock, so it must not touch the cache
	onEvict := func(id string, c *interview.Controller) {
		t.logger.Debug("tab session evicted", zap.String(logger.FieldTab, id))
		c.Teardown()
	}
	t.cache = expirable.NewLRU[string, *interview.Controller](size, onEvict, ttl)

	return t
}

// Lookup returns the controller of the request's tab without creating one.
// A hit refreshes the session TTL.
func (t *Tabs) Lookup(r *http.Request) (*interview.Controller, string, bool) {
	cookie, err := r.Cookie(tabCookie)
	if err != nil || cookie.Value == "" {
		return nil, "", false
	}

	c, ok := t.cache.Get(cookie.Value)
	if !ok {
		return nil, cookie.Value, false
	}
	t.cache.Add(cookie.Value, c)

	return c, cookie.Value, true
}

// Ensure returns the request's tab controller, starting a new tab session
// (and setting its cookie) when there is none.
func (t *Tabs) Ensure(w http.ResponseWriter, r *http.Request) (*interview.Controller, string) {
	if c, id, ok := t.Lookup(r); ok {
		return c, id
	}

	id := uuid.NewString()
	c := t.newController(id)
	t.cache.Add(id, c)

	http.SetCookie(w, &http.Cookie{
		Name:     tabCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	t.logger.Debug("tab session started", zap.String(logger.FieldTab, id))

	return c, id
}

// ByConversation finds the tab owning a provider conversation.
func (t *Tabs) ByConversation(conversationID string) (*interview.Controller, bool) {
	for _, c := range t.cache.Values() {
		if c.Owns(conversationID) {
			return c, true
		}
	}
	return nil, false
}

func (t *Tabs) Len() int {
	return t.cache.Len()
}

// Close tears every tab down and waits for the cleanup to finish or ctx to expire.
func (t *Tabs) Close(ctx context.Context) {
	controllers := t.cache.Values()
	pending := make([]<-chan struct{}, 0, len(controllers))
	for _, c := range controllers {
		pending = append(pending, c.Teardown())
	}

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			t.logger.Warn("shutdown interrupted tab cleanup", zap.Int("tabs", len(controllers)))
			return
		}
	}

	t.cache.Purge()
}

func newTabController(svc interview.AvatarService, cfg interview.Config, log *zap.Logger, observer metrics.Observer) func(id string) *interview.Controller {
	return func(id string) *interview.Controller {
		return interview.NewController(svc, session.NewStore(), cfg, log.With(zap.String(logger.FieldTab, id)), observer)
	}
}
