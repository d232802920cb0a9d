// Package scoring is the HTTP client for the remote fraud-scoring service.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fraudboard/internal/domain/cycle"
	"github.com/okian/fraudboard/internal/domain/feature"
	"github.com/okian/fraudboard/pkg/logger"
	"github.com/okian/fraudboard/pkg/metrics"
)

// Default client configuration constants.
const (
	DefaultURL             = "http://127.0.0.1:8000/predict"
	defaultIdleConnTimeout = 90 * time.Second
	defaultMaxIdleConns    = 16
	defaultDialerKeepAlive = 30 * time.Second
	maxErrorBodyBytes      = 512
	requestIDHeader        = "X-Request-ID"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout caps the whole exchange. Zero leaves it unbounded so the call
// only ends when ctx does.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client implements cycle.Scorer over HTTP.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	logger   logger.Logger
}

// predictResponse mirrors the service response. Pointers detect missing
// fields; anything else in the body is ignored.
type predictResponse struct {
	FraudProbability *float64 `json:"fraud_probability"`
	Prediction       *int     `json:"prediction"`
}

// NewClient creates a client for endpoint. An empty endpoint uses DefaultURL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse scoring url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scoring url must be http or https, got %q", endpoint)
	}

	c := &Client{endpoint: u.String()}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newHTTPClient(c.timeout)
	}
	return c, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: defaultDialerKeepAlive,
		}).DialContext,
		MaxIdleConns:      defaultMaxIdleConns,
		IdleConnTimeout:   defaultIdleConnTimeout,
		ForceAttemptHTTP2: true,
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

// Endpoint returns the prediction URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Score posts v and decodes the prediction. Errors wrap cycle.ErrTransport,
// cycle.ErrStatus or cycle.ErrDecode.
func (c *Client) Score(ctx context.Context, v feature.Vector) (cycle.Prediction, error) {
	start := time.Now()
	pred, err := c.score(ctx, v)
	latencyMs := float64(time.Since(start).Milliseconds())
	metrics.RecordScoringLatency(latencyMs)
	if err != nil {
		metrics.RecordScoringError(string(cycle.KindOf(err)))
		c.log().Warn(ctx, "scoring exchange failed",
			logger.String("endpoint", c.endpoint),
			logger.Float64("latencyMs", latencyMs),
			logger.Error(err),
		)
	}
	return pred, err
}

func (c *Client) score(ctx context.Context, v feature.Vector) (cycle.Prediction, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return cycle.Prediction{}, fmt.Errorf("%w: marshal request: %w", cycle.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return cycle.Prediction{}, fmt.Errorf("%w: build request: %w", cycle.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return cycle.Prediction{}, fmt.Errorf("%w: %w", cycle.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return cycle.Prediction{}, fmt.Errorf("%w: status %d: %s", cycle.ErrStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return cycle.Prediction{}, fmt.Errorf("%w: %w", cycle.ErrDecode, err)
	}
	if out.FraudProbability == nil {
		return cycle.Prediction{}, fmt.Errorf("%w: missing fraud_probability", cycle.ErrDecode)
	}
	if out.Prediction == nil {
		return cycle.Prediction{}, fmt.Errorf("%w: missing prediction", cycle.ErrDecode)
	}
	return cycle.Prediction{
		FraudProbability: *out.FraudProbability,
		Prediction:       *out.Prediction,
	}, nil
}

// HealthURL returns the health endpoint next to the prediction endpoint,
// e.g. http://127.0.0.1:8000/health for http://127.0.0.1:8000/predict.
func (c *Client) HealthURL() string {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return c.endpoint
	}
	dir := u.Path
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i]
	}
	u.Path = dir + "/health"
	u.RawQuery = ""
	return u.String()
}

// Health checks the service health endpoint and returns nil on any 2xx.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.HealthURL(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", cycle.ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", cycle.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", cycle.ErrStatus, resp.StatusCode)
	}
	return nil
}

func (c *Client) log() logger.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logger.Get()
}
