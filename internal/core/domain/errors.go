package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is a stable tag describing the class of a failure.
// Tool callers can branch on it without parsing messages.
type ErrorKind string

// Error kinds.
const (
	// KindInvalidState indicates an unknown, reused or expired OAuth state token.
	KindInvalidState ErrorKind = "invalid_state"

	// KindTokenExchange indicates the token endpoint rejected an authorization code.
	KindTokenExchange ErrorKind = "token_exchange"

	// KindRefresh indicates the token endpoint rejected a refresh token.
	KindRefresh ErrorKind = "refresh"

	// KindCredentialExpired indicates the session credential is missing, expired
	// or was rejected upstream. The caller must re-run authorization.
	KindCredentialExpired ErrorKind = "credential_expired"

	// KindRateLimited indicates the request budget is exhausted, locally or upstream.
	KindRateLimited ErrorKind = "rate_limited"

	// KindUpstreamUnavailable indicates a transient upstream failure (5xx, network).
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"

	// KindUpstreamTimeout indicates an upstream call exceeded its deadline.
	KindUpstreamTimeout ErrorKind = "upstream_timeout"

	// KindValidation indicates malformed input, such as an unknown transaction type.
	KindValidation ErrorKind = "validation"

	// KindUpstreamRejected indicates a non-retryable 4xx other than 401 and 429.
	KindUpstreamRejected ErrorKind = "upstream_rejected"

	// KindNotFound is an upstream rejection with status 404.
	KindNotFound ErrorKind = "not_found"

	// KindInternal covers failures that could not be classified.
	KindInternal ErrorKind = "internal"
)

// RateLimitSource identifies which side enforced a rate limit.
type RateLimitSource string

// Rate limit sources.
const (
	RateLimitLocal    RateLimitSource = "local"
	RateLimitUpstream RateLimitSource = "upstream"
)

// Error is a classified failure. It carries a Kind, a human-readable
// message safe to show to users, and optional context.
type Error struct {
	Kind    ErrorKind
	Message string

	// RetryAfter is set for rate limited errors when the reset time is known.
	RetryAfter time.Duration
	// Source is set for rate limited errors.
	Source RateLimitSource
	// StatusCode is the upstream HTTP status, when there was one.
	StatusCode int

	// Err is the underlying cause. It is never shown to users.
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter.Round(time.Second))
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
// A not_found error also matches upstream_rejected.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindUpstreamRejected && e.Kind == KindNotFound
}

// Retryable returns true for transient failures that may succeed on retry.
func (e *Error) Retryable() bool {
	return e.Kind == KindUpstreamUnavailable || e.Kind == KindUpstreamTimeout
}

// Sentinels for use with errors.Is. Matching is by kind.
var (
	ErrInvalidState        = &Error{Kind: KindInvalidState}
	ErrTokenExchange       = &Error{Kind: KindTokenExchange}
	ErrRefresh             = &Error{Kind: KindRefresh}
	ErrCredentialExpired   = &Error{Kind: KindCredentialExpired}
	ErrRateLimited         = &Error{Kind: KindRateLimited}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrUpstreamTimeout     = &Error{Kind: KindUpstreamTimeout}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrUpstreamRejected    = &Error{Kind: KindUpstreamRejected}
	ErrNotFound            = &Error{Kind: KindNotFound}
)

// NewError creates a classified error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a classified error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a classified error with an underlying cause.
func WrapError(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewRateLimitedError creates a rate limited error.
func NewRateLimitedError(source RateLimitSource, retryAfter time.Duration) *Error {
	msg := "local request budget exhausted"
	if source == RateLimitUpstream {
		msg = "upstream rate limit exceeded"
	}
	return &Error{
		Kind:       KindRateLimited,
		Message:    msg,
		RetryAfter: retryAfter,
		Source:     source,
	}
}

// KindOf returns the kind of err, or KindInternal if err is not classified.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err is a transient, retryable failure.
func IsRetryable(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Retryable()
	}
	return false
}
