// Package backend talks JSON over HTTP to the bank REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBody = 64 << 10

// Observer receives one callback per completed API call.
type Observer interface {
	ObserveBackendCall(operation string, status int, elapsed time.Duration)
}

// Client issues requests against the bank API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a logger for failed calls.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver records per-call metrics.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient constructs a Client for baseURL. A zero timeout keeps the transport default.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get decodes the JSON response of GET path?query into dest.
func (c *Client) Get(ctx context.Context, operation, path string, query url.Values, dest any) error {
	return c.Send(ctx, operation, http.MethodGet, path, query, nil, dest)
}

// Delete issues DELETE path?query and discards the body.
func (c *Client) Delete(ctx context.Context, operation, path string, query url.Values) error {
	return c.Send(ctx, operation, http.MethodDelete, path, query, nil, nil)
}

// Send issues a request with an optional JSON body and decodes the response into dest when non-nil.
func (c *Client) Send(ctx context.Context, operation, method, path string, query url.Values, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: %s: encode body: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("backend: %s: build request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, 0, start)
		c.logger.Warn("backend call failed", slog.String("operation", operation), slog.Any("error", err))
		return fmt.Errorf("backend: %s: %w: %v", operation, ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.observe(operation, resp.StatusCode, start)

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: parseErrorMessage(raw)}
		c.logger.Warn("backend call rejected",
			slog.String("operation", operation),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message))
		return apiErr
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("backend: %s: decode response: %w: %v", operation, ErrUnavailable, err)
	}
	return nil
}

func (c *Client) observe(operation string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(operation, status, time.Since(start))
}

// Query starts a url.Values carrying the database selector every call needs.
func Query(db Database) url.Values {
	values := url.Values{}
	values.Set("database", string(db))
	return values
}
