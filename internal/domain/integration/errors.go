package integration

import "errors"

var (
	// ErrTransient indicates a retryable failure: rate limits, 5xx
	// responses, timeouts, connection resets
	ErrTransient = errors.New("integration: transient platform error")

	// ErrAuthExpired indicates the bearer token was rejected; the fetcher
	// refreshes the token once and retries before surfacing this
	ErrAuthExpired = errors.New("integration: platform authentication expired")

	// ErrPermanent indicates a failure retrying cannot fix: 4xx other
	// than auth/rate-limit, or a malformed response envelope
	ErrPermanent = errors.New("integration: permanent platform error")
)

// FailureKind classifies a window fetch failure
type FailureKind string

const (
	// FailureTransient marks a window whose retries were exhausted
	FailureTransient FailureKind = "TRANSIENT"
	// FailurePermanent marks a window that failed with a non-retryable error
	FailurePermanent FailureKind = "PERMANENT"
	// FailureAuth marks a window that failed even after a token refresh
	FailureAuth FailureKind = "AUTH"
)

// ClassifyFailure maps a fetch error to its failure kind.
// Unrecognized errors are treated as permanent so they are never retried
// blindly.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrTransient):
		return FailureTransient
	case errors.Is(err, ErrAuthExpired):
		return FailureAuth
	default:
		return FailurePermanent
	}
}
