// Package api is a client for the prediction and analytics services the
// report pipeline collaborates with.
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
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Endpoint paths relative to the base URL.
const (
	PathRecommend = "/api/predictions/recommend"
	PathModelInfo = "/api/predictions/model_info"
	PathTrain     = "/api/predictions/train_model"
	PathTrack     = "/api/analytics/track"
	PathSummary   = "/api/analytics/summary"
)

// Defaults for the underlying HTTP client.
const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 2

	// maxBodySize bounds how much of a response is read.
	maxBodySize = 4 << 20
)

// Client talks to the collaborator services.
type Client struct {
	base *url.URL
	http *retryablehttp.Client
}

// Option configures a Client.
type Option func(*retryablehttp.Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *retryablehttp.Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *retryablehttp.Client) {
		if n >= 0 {
			c.RetryMax = n
		}
	}
}

// WithRetryWait bounds the backoff between attempts.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = min
		c.RetryWaitMax = max
	}
}

// WithLogger routes retry diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(c *retryablehttp.Client) {
		c.Logger = leveledLogger{l: l}
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *retryablehttp.Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// New creates a Client for the services rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q (must be http or https)", ErrInvalidBaseURL, baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = DefaultRetries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = DefaultTimeout
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{base: u, http: rc}, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.base.String() }

// Recommend asks the prediction service for recommendations.
func (c *Client) Recommend(ctx context.Context, f Features) (*RecommendationResult, error) {
	var out struct {
		envelope
		RecommendationResult
	}
	if err := c.do(ctx, http.MethodPost, PathRecommend, f, &out, &out.envelope); err != nil {
		return nil, err
	}
	res := out.RecommendationResult
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}

// ModelInfo fetches the description of the prediction model.
func (c *Client) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	var out struct {
		envelope
		ModelInfo *ModelInfo `json:"model_info"`
	}
	if err := c.do(ctx, http.MethodGet, PathModelInfo, nil, &out, &out.envelope); err != nil {
		return nil, err
	}
	if out.ModelInfo == nil {
		return nil, fmt.Errorf("%w: missing model_info", ErrMalformedResult)
	}
	return out.ModelInfo, nil
}

// TrainModel asks the prediction service to retrain.
func (c *Client) TrainModel(ctx context.Context) (*TrainResult, error) {
	var out struct {
		envelope
		TrainResult
	}
	if err := c.do(ctx, http.MethodPost, PathTrain, nil, &out, &out.envelope); err != nil {
		return nil, err
	}
	res := out.TrainResult
	return &res, nil
}

// Track records a usage event.
func (c *Client) Track(ctx context.Context, e Event) error {
	var out envelope
	return c.do(ctx, http.MethodPost, PathTrack, e, &out, &out)
}

// Summary fetches the analytics aggregate.
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var out struct {
		envelope
		Summary *Summary `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, PathSummary, nil, &out, &out.envelope); err != nil {
		return nil, err
	}
	if out.Summary == nil {
		return nil, fmt.Errorf("%w: missing summary", ErrMalformedResult)
	}
	return out.Summary, nil
}

// Ping checks that the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ModelInfo(ctx)
	return err
}

// do sends one request and decodes the JSON answer into out. env must
// point at the envelope embedded in out.
func (c *Client) do(ctx context.Context, method, path string, in, out any, env *envelope) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrNetwork, path, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return fmt.Errorf("%w: %s: %v", ErrMalformedResult, path, err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return &Error{Status: resp.StatusCode, Message: env.Error}
	}
	return nil
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	l zerolog.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (z leveledLogger) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
func (z leveledLogger) Info(msg string, kv ...interface{})  { z.l.Info().Fields(kv).Msg(msg) }
func (z leveledLogger) Debug(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }
func (z leveledLogger) Warn(msg string, kv ...interface{})  { z.l.Warn().Fields(kv).Msg(msg) }
