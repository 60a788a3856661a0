// Package overfast fetches reference collections from the OverFast API.
//
// Every fetch yields a foundation.Result: a failed request is logged and
// downgraded to an Err result so a single unavailable endpoint never aborts a
// generation run.
package overfast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/foundation"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/logfields"
	"git.home.luguber.info/inful/overfastsite/internal/metrics"
	"git.home.luguber.info/inful/overfastsite/internal/version"
)

// maxResponseBytes caps a single collection payload.
const maxResponseBytes = 10 * 1024 * 1024

// Client performs GET requests against one API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	recorder   metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request deadline of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger fetch failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL of endpoint.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Fetch performs one GET to {baseURL}/{endpoint} and returns the raw JSON body.
// Transport errors, non-2xx statuses and oversized bodies are logged and returned
// as an Err result.
func (c *Client) Fetch(ctx context.Context, endpoint string) foundation.Result[json.RawMessage, error] {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		attrs := []any{logfields.Endpoint(endpoint), logfields.URL(c.URL(endpoint)), logfields.Error(err)}
		if ce, ok := ferrors.AsClassified(err); ok {
			if code, ok := ce.Context()["status"].(int); ok {
				attrs = append(attrs, logfields.Status(code))
			}
		}
		c.logger.Error("Error fetching endpoint", attrs...)
		return foundation.Err[json.RawMessage, error](err)
	}
	return foundation.Ok[json.RawMessage, error](json.RawMessage(body))
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	target := c.URL(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "build request").
			WithContext("endpoint", endpoint).
			Build()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ferrors.NetworkError(fmt.Sprintf("fetch %s", endpoint)).
			WithCause(err).
			WithContext("endpoint", endpoint).
			WithContext("url", target).
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ferrors.NetworkError(fmt.Sprintf("fetch %s: HTTP %d", endpoint, resp.StatusCode)).
			WithContext("endpoint", endpoint).
			WithContext("url", target).
			WithContext("status", resp.StatusCode).
			Build()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, ferrors.NetworkError(fmt.Sprintf("read %s response", endpoint)).
			WithCause(err).
			WithContext("endpoint", endpoint).
			Build()
	}
	if len(data) > maxResponseBytes {
		return nil, ferrors.UpstreamError(fmt.Sprintf("%s response too large", endpoint)).
			WithContext("endpoint", endpoint).
			WithContext("limit", maxResponseBytes).
			Build()
	}
	return data, nil
}
