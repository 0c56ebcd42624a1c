// Package api is the client of the platform REST API.
//
// Every request goes through one intercepting transport: it attaches the session's
// bearer token and, when the API answers 401, expires the session and publishes the
// session-expired event to the subscribers registered with OnSessionExpired.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/novelplatform/novelshell/internal/config"
	"go.uber.org/zap"
)

// SessionKeeper is the part of the session the client reads and expires.
type SessionKeeper interface {
	// Method Token returns the current bearer token.
	//
	// An empty string means no token is held; requests are then sent without Authorization header.
	Token() string
	// Method ExpireToken clears the session if token is non-empty and still the current token.
	//
	// It returns true only for the call that performed the clear, so concurrent 401 responses
	// for the same token expire the session once.
	ExpireToken(token string) bool
}

// Client is the configured platform API client
type Client struct {
	baseURL   string
	http      *http.Client
	transport *sessionTransport
	logger    *zap.Logger

	mu        sync.RWMutex
	onExpired []func()
}

// NewClient creates a new API client for cfg.BaseURL bound to session
func NewClient(cfg config.APIConfig, session SessionKeeper, logger *zap.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
	c.transport = &sessionTransport{
		base:    http.DefaultTransport.(*http.Transport).Clone(),
		session: session,
		expired: c.publishSessionExpired,
		logger:  logger,
	}
	c.http = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: c.transport,
	}
	return c
}

// BaseURL returns the API base URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transport returns the intercepting round tripper used by the client.
// Requests sent through it get the same token injection and 401 handling.
func (c *Client) Transport() http.RoundTripper {
	return c.transport
}

// OnSessionExpired registers fn to run when a 401 response expires the session.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = append(c.onExpired, fn)
}

func (c *Client) publishSessionExpired() {
	c.mu.RLock()
	handlers := make([]func(), len(c.onExpired))
	copy(handlers, c.onExpired)
	c.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}

// Response is a completed API response with its body read
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do sends a request with an optional JSON body
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, query, reader, contentType)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}
	return out, nil
}
