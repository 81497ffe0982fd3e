// Package submit delivers finalized form payloads to the remote forms
// endpoint. One Submit is one POST: no retries, no response parsing.
package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-formdraft/pkg/payload"
)

// DefaultEndpoint is the forms collection the builder submits to.
const DefaultEndpoint = "https://assess.cliniscripts.com:8081/forms"

var ErrEndpointRequired = errors.New("submit: endpoint is required")

// Submitter sends one payload.
type Submitter interface {
	Submit(ctx context.Context, form payload.Form) error
}

// SubmitterFunc allows plain functions to satisfy Submitter.
type SubmitterFunc func(ctx context.Context, form payload.Form) error

// Submit dispatches to the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, form payload.Form) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("submit: %s responded %s", e.Endpoint, e.Status)
}

// Client POSTs payloads as JSON.
type Client struct {
	endpoint string
	http     *http.Client
	headers  http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Timeouts belong there.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithHeader adds a request header sent with every submission.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// New builds a Client for endpoint, falling back to DefaultEndpoint.
func New(endpoint string, opts ...Option) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		headers:  http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Endpoint returns the URL payloads are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit encodes form and POSTs it. Any 2xx status is success.
func (c *Client) Submit(ctx context.Context, form payload.Form) error {
	if c == nil || c.endpoint == "" {
		return ErrEndpointRequired
	}
	body, err := payload.Marshal(form)
	if err != nil {
		return fmt.Errorf("submit: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit: build request: %w", err)
	}
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit: post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}
