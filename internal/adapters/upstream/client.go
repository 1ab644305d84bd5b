// Package upstream provides the shared HTTP plumbing for the platform
// service connectors: base URL handling, JSON decoding, and a bounded retry
// policy for transport failures and server errors.
package upstream

import (
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

	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

// defaultUserAgent identifies the scheduler to upstream services.
const defaultUserAgent = "patrol-scheduler"

// ClientOptions configures a connector's HTTP client.
type ClientOptions struct {
	// Name identifies the upstream in errors and logs (katalogus, octopoes,
	// bytes).
	Name string

	// BaseURL is the root of the upstream API, without a trailing slash.
	BaseURL string

	Timeout      time.Duration
	RetryLimit   int
	RetryBackoff time.Duration

	UserAgent string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client wraps one upstream service's HTTP API. Requests that fail on the
// transport or return a 5xx are retried with linear backoff; 4xx responses
// are returned to the caller immediately.
type Client struct {
	name         string
	baseURL      string
	retryLimit   int
	retryBackoff time.Duration
	userAgent    string
	client       *http.Client
	logger       *slog.Logger
}

// NewClient constructs an upstream client from options. The base URL is
// required.
func NewClient(opts ClientOptions) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, apperrors.Validationf("upstream %s: base URL is required", opts.Name)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "upstream %s: invalid base URL", opts.Name)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	retries := max(opts.RetryLimit, 0)

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		name:         opts.Name,
		baseURL:      base,
		retryLimit:   retries,
		retryBackoff: backoff,
		userAgent:    ua,
		client:       hc,
		logger:       logger.With("upstream", opts.Name),
	}, nil
}

// Name returns the upstream identifier.
func (c *Client) Name() string { return c.name }

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// RequestSpec describes one upstream request. Body, when set, is invoked per
// attempt so retries never reuse a consumed reader.
type RequestSpec struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   func() (io.Reader, error)
}

// Do executes the request with the client's retry policy and returns the
// first non-5xx response. The caller owns the response body.
func (c *Client) Do(ctx context.Context, spec RequestSpec) (*http.Response, error) {
	attempts := c.retryLimit + 1
	var lastErr error

	for attempt := range attempts {
		resp, err := c.attempt(ctx, spec)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
			drainAndClose(resp.Body)
		}

		if attempt < attempts-1 {
			c.logger.Debug("retrying upstream request",
				"method", spec.Method, "path", spec.Path, "attempt", attempt+1, "error", lastErr)
			if err := c.sleep(ctx, time.Duration(attempt+1)*c.retryBackoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, apperrors.Wrapf(lastErr, apperrors.ErrCodeUnavailable, "upstream %s unavailable", c.name)
}

func (c *Client) attempt(ctx context.Context, spec RequestSpec) (*http.Response, error) {
	u := c.baseURL + spec.Path
	if len(spec.Query) > 0 {
		u += "?" + spec.Query.Encode()
	}

	var body io.Reader
	if spec.Body != nil {
		b, err := spec.Body()
		if err != nil {
			return nil, fmt.Errorf("build request body: %w", err)
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", c.name, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, vals := range spec.Header {
		for _, v := range vals {
			req.Header.Set(k, v)
		}
	}

	return c.client.Do(req)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetJSON issues a GET and decodes the 200 response into out. A 404 becomes
// a NotFound error; any other non-2xx becomes Unavailable. Pass a nil out to
// discard the body.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Do(ctx, RequestSpec{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// PostForm issues a form-encoded POST and decodes the response into out.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	encoded := form.Encode()

	resp, err := c.Do(ctx, RequestSpec{
		Method: http.MethodPost,
		Path:   path,
		Header: header,
		Body: func() (io.Reader, error) {
			return strings.NewReader(encoded), nil
		},
	})
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

func (c *Client) decode(resp *http.Response, out any) error {
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NotFoundf("%s: %s not found", c.name, resp.Request.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Unavailablef("%s returned status %d for %s", c.name, resp.StatusCode, resp.Request.URL.Path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "decode %s response", c.name)
	}
	return nil
}

// Health probes the upstream's health endpoint and returns an error when
// the service reports itself unhealthy.
func (c *Client) Health(ctx context.Context) error {
	var health model.ServiceHealth
	if err := c.GetJSON(ctx, "/health", nil, &health); err != nil {
		return err
	}
	if !health.Healthy {
		return apperrors.Unavailablef("%s reports unhealthy", c.name)
	}
	return nil
}

// WaitReady polls the upstream's health endpoint until it responds healthy,
// the attempt budget runs out, or the context is cancelled. Used at startup
// so schedulers never run against half-started dependencies.
func (c *Client) WaitReady(ctx context.Context, attempts int, interval time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := range attempts {
		lastErr = c.Health(ctx)
		if lastErr == nil {
			c.logger.Info("upstream ready")
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		c.logger.Warn("upstream not ready, retrying",
			"attempt", attempt+1, "attempts", attempts, "error", lastErr)

		if attempt < attempts-1 {
			if err := c.sleep(ctx, interval); err != nil {
				return err
			}
		}
	}

	return apperrors.Wrapf(lastErr, apperrors.ErrCodeUnavailable, "upstream %s never became ready", c.name)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
