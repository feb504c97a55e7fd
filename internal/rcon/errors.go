package rcon

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Normalized remote failure causes. Handlers and the audit log classify
// remote errors by these sentinels via errors.Is.
var (
	ErrTimeout    = errors.New("TIMEOUT")
	ErrAuthFailed = errors.New("AUTH_FAILED")
	ErrClosed     = errors.New("CONNECTION_CLOSED")
	ErrProtocol   = errors.New("PROTOCOL_ERROR")
	ErrInternal   = errors.New("INTERNAL")
)

// causeTokens maps substrings of raw error text onto normalized causes.
// Matching is deterministic and case-insensitive; unknown text maps to
// INTERNAL. Extend by adding tokens, never by heuristics.
var causeTokens = []struct {
	cause  error
	tokens []string
}{
	{ErrTimeout, []string{
		"TIMEOUT",
		"DEADLINE EXCEEDED",
		"I/O TIMEOUT",
	}},
	{ErrAuthFailed, []string{
		"AUTH_FAILED",
		"AUTHENTICATION FAILED",
		"BAD PASSWORD",
		"LOGIN FAILED",
	}},
	{ErrClosed, []string{
		"CONNECTION_CLOSED",
		"CONNECTION RESET",
		"BROKEN PIPE",
		"USE OF CLOSED",
		"EOF",
	}},
	{ErrProtocol, []string{
		"PROTOCOL_ERROR",
		"MALFORMED PACKET",
		"UNEXPECTED PACKET",
		"MISMATCHED REQUEST ID",
	}},
}

// RemoteError wraps a raw remote failure with its normalized cause.
type RemoteError struct {
	Cause    error // Normalized cause sentinel
	Original error // Raw error from the transport
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%v (remote: %v)", e.Cause, e.Original)
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// NormalizeError maps a raw remote error to a RemoteError carrying a
// normalized cause. A nil input returns nil.
func NormalizeError(raw error) error {
	if raw == nil {
		return nil
	}

	// Already normalized; pass through unchanged.
	var remote *RemoteError
	if errors.As(raw, &remote) {
		return raw
	}

	// Context errors carry their own meaning; map them directly.
	if errors.Is(raw, context.DeadlineExceeded) {
		return &RemoteError{Cause: ErrTimeout, Original: raw}
	}
	if errors.Is(raw, context.Canceled) {
		return &RemoteError{Cause: ErrClosed, Original: raw}
	}

	upper := strings.ToUpper(raw.Error())
	for _, entry := range causeTokens {
		for _, token := range entry.tokens {
			if strings.Contains(upper, token) {
				return &RemoteError{Cause: entry.cause, Original: raw}
			}
		}
	}

	return &RemoteError{Cause: ErrInternal, Original: raw}
}

// CauseCode returns the normalized cause token for an error, for audit
// records and metrics labels.
func CauseCode(err error) string {
	switch {
	case err == nil:
		return "SUCCESS"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrAuthFailed):
		return "AUTH_FAILED"
	case errors.Is(err, ErrClosed):
		return "CONNECTION_CLOSED"
	case errors.Is(err, ErrProtocol):
		return "PROTOCOL_ERROR"
	default:
		return "INTERNAL"
	}
}
