// Package apiclient talks to the hospital REST backend on behalf of one portal session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hospital-portal/internal/metrics"
)

const (
	// MsgNoResponse is reported when the backend could not be reached at all.
	MsgNoResponse = "no response received from server"
	// MsgRequestSetup is reported when the request could not be built.
	MsgRequestSetup = "error setting up request"
	// MsgGeneric is used when the backend rejects a request without a message.
	MsgGeneric = "an error occurred"
)

// APIError is a failed backend call. StatusCode is 0 when no response arrived.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client is an HTTP client for the REST backend. The zero token means
// unauthenticated requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     zerolog.Logger
	metrics    *metrics.PortalMetrics
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used for request traces.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records upstream calls on m.
func WithMetrics(m *metrics.PortalMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client for baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token bound to c.
func (c *Client) Token() string {
	return c.token
}

// Get fetches endpoint and decodes the payload into out.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, out)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, body, out)
}

// Delete removes the resource at endpoint.
func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: MsgRequestSetup}
		}
		reader = bytes.NewReader(buf)
	}
	return c.do(ctx, method, endpoint, reader, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("build backend request")
		return &APIError{Message: MsgRequestSetup}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveUpstream(method, 0, elapsed.Seconds())
		c.logger.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("backend unreachable")
		return &APIError{Message: MsgNoResponse}
	}
	defer resp.Body.Close()

	c.metrics.ObserveUpstream(method, resp.StatusCode, elapsed.Seconds())
	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("backend request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: MsgNoResponse}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(raw), out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

// unwrap returns the "data" member of an enveloped payload, or raw itself.
func unwrap(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok && string(data) != "null" {
		return data
	}
	return raw
}

// errorMessage extracts the backend's message verbatim.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return MsgGeneric
}
