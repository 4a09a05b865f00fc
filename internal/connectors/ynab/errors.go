package ynab

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// APIError represents a YNAB API error response.
type APIError struct {
	StatusCode int
	ID         string
	Name       string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ynab: API error %d %s: %s", e.StatusCode, e.Name, e.Detail)
}

// errorEnvelope is the upstream error body: {"error": {"id", "name", "detail"}}.
type errorEnvelope struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// statusError classifies a non-2xx response.
func statusError(resp *http.Response, body []byte, now time.Time) error {
	apiErr := parseAPIError(resp.StatusCode, body)

	var derr *domain.Error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		derr = domain.NewError(domain.KindCredentialExpired,
			"upstream rejected the access token: call the authorize tool to sign in again")
	case resp.StatusCode == http.StatusTooManyRequests:
		derr = domain.NewRateLimitedError(domain.RateLimitUpstream,
			parseRetryAfter(resp.Header.Get(HeaderRetryAfter), now))
	case resp.StatusCode >= 500:
		derr = domain.Errorf(domain.KindUpstreamUnavailable, "upstream returned %d", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		derr = domain.NewError(domain.KindNotFound, apiErr.describe("resource not found"))
	default:
		derr = domain.NewError(domain.KindUpstreamRejected,
			apiErr.describe(fmt.Sprintf("upstream rejected the request (%d)", resp.StatusCode)))
	}
	derr.StatusCode = resp.StatusCode
	derr.Err = apiErr
	return derr
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Detail: http.StatusText(status)}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.ID != "" {
		apiErr.ID = env.Error.ID
		apiErr.Name = env.Error.Name
		if env.Error.Detail != "" {
			apiErr.Detail = env.Error.Detail
		}
	}
	return apiErr
}

// describe returns the upstream detail, or fallback if there was none.
func (e *APIError) describe(fallback string) string {
	if e.Name == "" {
		return fallback
	}
	return e.Detail
}

// parseRetryAfter reads Retry-After as seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
