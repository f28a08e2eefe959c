package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	contentType  = "application/json"
	apiKeyHeader = "x-api-key"

	// maxErrorBody bounds how much of a failed response ends up in ServiceError.
	maxErrorBody = 4 << 10
)

// ServiceError is returned when the provider answers with a non-2xx status.
type ServiceError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: bad status: %s", e.Op, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += " - " + body
	}
	return msg
}

// do sends payload (when non-nil) as JSON and returns the raw response body of a 2xx reply.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	started := time.Now()
	data, err := c.roundTrip(ctx, op, method, path, payload)
	c.observer.RecordCall(serviceName, op, time.Since(started), err)

	return data, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.APIURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req = c.setHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(errBody),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)

	return req
}

// decodeObject parses a JSON object reply into target through the lenient map decoder.
func decodeObject(op string, data []byte, target any) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	if err := decode(raw, target); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	return raw, nil
}
