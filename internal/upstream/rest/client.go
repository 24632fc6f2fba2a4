// Package rest is the shared HTTP plumbing for the Ory admin APIs.
package rest

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

	"github.com/mmcdole/warden/internal/domain"
)

const (
	defaultTimeout = 60 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Request describes one admin API call
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Response is a successful (2xx) reply
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client performs authenticated requests with retry on 5xx
type Client struct {
	name       string // used in log lines: "kratos", "hydra"
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger

	// retryDelay is the first backoff step; tests shorten it
	retryDelay time.Duration
}

// NewClient creates a client for one upstream service
func NewClient(name, baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:     logger,
		retryDelay: baseRetryDelay,
	}
}

// BaseURL returns the normalized admin URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetRetryDelay overrides the first backoff step
func (c *Client) SetRetryDelay(d time.Duration) {
	c.retryDelay = d
}

// Do performs the request with retry logic and exponential backoff for 5xx server errors.
// Non-2xx statuses map to domain errors: 401/403 ErrAuthFailed, 404 ErrNotFound, 429 ErrRateLimited.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	reqURL := c.baseURL + r.Path
	if len(r.Query) > 0 {
		reqURL = reqURL + "?" + r.Query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "service", c.name, "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var body io.Reader
		if r.Body != nil {
			body = bytes.NewReader(r.Body)
		}
		req, err := http.NewRequestWithContext(ctx, r.Method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if r.ContentType != "" {
			req.Header.Set("Content-Type", r.ContentType)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		c.logger.Debug("admin request", "service", c.name, "method", r.Method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("admin request failed", "service", c.name, "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil

		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return nil, domain.ErrAuthFailed

		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, errorMessage(resp.StatusCode, data))

		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, domain.ErrRateLimited

		case resp.StatusCode >= 500:
			lastErr = &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
			c.logger.Warn("server error, will retry",
				"service", c.name,
				"status", resp.StatusCode,
				"body", string(data),
				"attempt", attempt,
				"maxRetries", maxRetries,
				"path", r.Path,
			)
			continue

		default:
			c.logger.Error("admin request error", "service", c.name, "status", resp.StatusCode, "body", string(data))
			return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
		}
	}

	c.logger.Error("admin request failed after retries",
		"service", c.name,
		"error", lastErr,
		"url", reqURL,
	)
	return nil, lastErr
}

// StatusError is an unexpected non-2xx reply
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// genericError covers both Ory error envelopes:
// {"error":{"code":..,"message":..,"reason":..}} and {"error":"..","error_description":".."}
type genericError struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

type errorBody struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

func errorMessage(status int, data []byte) string {
	var env genericError
	if err := json.Unmarshal(data, &env); err == nil && len(env.Error) > 0 {
		var body errorBody
		if json.Unmarshal(env.Error, &body) == nil && body.Message != "" {
			if body.Reason != "" {
				return body.Message + ": " + body.Reason
			}
			return body.Message
		}
		var code string
		if json.Unmarshal(env.Error, &code) == nil && code != "" {
			if env.ErrorDescription != "" {
				return code + ": " + env.ErrorDescription
			}
			return code
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}

// DecodeJSON unmarshals a response body into dest
func DecodeJSON(resp *Response, dest any) error {
	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
