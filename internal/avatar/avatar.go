// Package avatar is a client for the conversational-avatar provider REST API
// (personas and live video conversations).
package avatar

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/metrics"
)

const (
	apiURL    = "https://tavusapi.com/v2"
	userAgent = "spigell/interview-coach"

	serviceName = "avatar"
)

type Client struct {
	apiKey           string
	logger           *zap.Logger
	observer         metrics.Observer
	defaultReplicaID string
	callbackURL      string

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// Option customizes a Client.
type Option func(*Client)

// WithAPIURL points the client at a different provider endpoint.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.APIURL = u
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithDefaultReplicaID sets the replica used when a request does not name one.
func WithDefaultReplicaID(id string) Option {
	return func(c *Client) { c.defaultReplicaID = strings.TrimSpace(id) }
}

// WithCallbackURL sets the webhook the provider reports conversation events to.
func WithCallbackURL(u string) Option {
	return func(c *Client) { c.callbackURL = strings.TrimSpace(u) }
}

func WithObserver(o metrics.Observer) Option {
	return func(c *Client) { c.observer = metrics.OrNop(o) }
}

func New(logger *zap.Logger, apiKey string, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		apiKey:   apiKey,
		logger:   logger,
		observer: metrics.Nop(),
		APIURL:   apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
