package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

const (
	// DefaultBaseURL is the upstream REST API root.
	DefaultBaseURL = "https://api.ynab.com/v1"

	// DefaultTimeout bounds each HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2

	// DefaultRetryBase is the delay before the first retry; it doubles each time.
	DefaultRetryBase = 500 * time.Millisecond

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 32 << 20
)

// Config configures the upstream client.
type Config struct {
	// BaseURL is the REST API root. Defaults to DefaultBaseURL.
	BaseURL string
	// Timeout bounds each attempt. Defaults to DefaultTimeout.
	Timeout time.Duration
	// MaxRetries is the number of retries for transient failures.
	// Zero selects DefaultMaxRetries; negative disables retries.
	MaxRetries int
	// RetryBase is the initial backoff. Defaults to DefaultRetryBase.
	RetryBase time.Duration
	// Transport is the base round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// UserAgent is sent with every request when set.
	UserAgent string
}

// Client calls the upstream REST API on behalf of the session credential.
type Client struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	retryBase  time.Duration
	transport  http.RoundTripper
	userAgent  string

	limiter *RateLimiter
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new upstream client sharing limiter.
func NewClient(cfg Config, limiter *RateLimiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultRetryBase
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	if limiter == nil {
		limiter = NewRateLimiter(domain.DefaultRateLimit, domain.DefaultRateWindow)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
		transport:  cfg.Transport,
		userAgent:  cfg.UserAgent,
		limiter:    limiter,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// RateLimiter returns the client's request budget.
func (c *Client) RateLimiter() *RateLimiter {
	return c.limiter
}

// Call performs one logical request and returns the "data" member of the
// response envelope. Transient failures are retried; every attempt spends
// one unit of the request budget.
func (c *Client) Call(
	ctx context.Context,
	method, endpoint string,
	cred *domain.Credential,
	query url.Values,
	body any,
) (json.RawMessage, error) {
	// An expired credential never spends budget or touches the network.
	if !cred.IsValidAt(c.now()) {
		return nil, domain.NewError(domain.KindCredentialExpired,
			"access token expired: call the authorize tool to sign in again")
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, domain.WrapError(domain.KindValidation, err, "encode request body")
		}
		payload = b
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: cred.AccessToken,
				TokenType:   cred.TokenType,
			}),
			Base: c.transport,
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBase << (attempt - 1)
			logger.Debug("Retrying %s %s in %s (attempt %d): %v", method, endpoint, delay, attempt+1, lastErr)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		data, err := c.do(ctx, httpClient, method, endpoint, query, payload)
		if err == nil {
			return data, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !domain.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	logger.Warn("%s %s failed after %d attempts: %v", method, endpoint, c.maxRetries+1, lastErr)
	return nil, lastErr
}

// do performs a single attempt.
func (c *Client) do(
	ctx context.Context,
	httpClient *http.Client,
	method, endpoint string,
	query url.Values,
	payload []byte,
) (json.RawMessage, error) {
	if !c.limiter.TryAcquire() {
		return nil, domain.NewRateLimitedError(domain.RateLimitLocal, c.limiter.TimeUntilReset())
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, u, bodyReader)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logger.Debug("%s %s", method, endpoint)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, attemptCtx, method, endpoint, err)
	}
	defer resp.Body.Close()

	if used, limit, ok := parseRateLimitHeader(resp.Header.Get(HeaderRateLimit)); ok {
		c.limiter.ObserveUsage(used, limit)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.transportError(ctx, attemptCtx, method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, raw, c.now())
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "malformed upstream response")
	}
	return envelope.Data, nil
}

func (c *Client) transportError(ctx, attemptCtx context.Context, method, endpoint string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return domain.WrapError(domain.KindUpstreamTimeout, err,
			fmt.Sprintf("%s %s timed out after %s", method, endpoint, c.timeout))
	}
	return domain.WrapError(domain.KindUpstreamUnavailable, err, "upstream request failed")
}

// get calls a GET endpoint and decodes the data member into out.
func (c *Client) get(ctx context.Context, cred *domain.Credential, endpoint string, query url.Values, out any) error {
	data, err := c.Call(ctx, http.MethodGet, endpoint, cred, query, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data json.RawMessage, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return domain.WrapError(domain.KindInternal, err, "malformed upstream response")
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
