package command

import (
	"fmt"
	"time"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	ErrRateLimited        ErrorKind = "RATE_LIMITED"
	ErrRemoteUnavailable  ErrorKind = "REMOTE_UNAVAILABLE"
	ErrRemoteDisconnected ErrorKind = "REMOTE_DISCONNECTED"
	ErrValidation         ErrorKind = "VALIDATION_ERROR"
	ErrRemoteExecution    ErrorKind = "REMOTE_EXECUTION_ERROR"
)

// Payload is the structured content of a response.
type Payload struct {
	// Message is the human-readable response text.
	Message string `json:"message"`

	// Data carries optional parsed fields (player counts, seeds, ...).
	Data map[string]string `json:"data,omitempty"`
}

// Result is the single terminal response for one request.
type Result struct {
	Success   bool      `json:"success"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Payload   Payload   `json:"payload"`

	// Ephemeral responses are shown only to the requesting caller.
	// Always true for denials and errors.
	Ephemeral bool `json:"ephemeral"`
}

// outcomeKind enumerates the terminal states of the pipeline.
type outcomeKind int

const (
	outcomeDenied outcomeKind = iota
	outcomeUnavailable
	outcomeDisconnected
	outcomeInvalid
	outcomeExecFailed
	outcomeSucceeded
)

// outcome is what a pipeline run hands to the classifier.
type outcome struct {
	kind       outcomeKind
	retryAfter time.Duration // denied
	detail     string        // invalid
	cause      error         // exec failed
	payload    Payload       // succeeded
	private    bool          // succeeded: command is inherently private
}

// classify maps a terminal outcome onto its Result. Pure; handlers do
// not re-implement this table.
func classify(o outcome) Result {
	switch o.kind {
	case outcomeDenied:
		return Result{
			ErrorKind: ErrRateLimited,
			Payload: Payload{
				Message: fmt.Sprintf("You're doing that too often. Try again in %s.", o.retryAfter),
				Data:    map[string]string{"retryAfter": o.retryAfter.String()},
			},
			Ephemeral: true,
		}
	case outcomeUnavailable:
		return Result{
			ErrorKind: ErrRemoteUnavailable,
			Payload:   Payload{Message: "No game server is configured for you."},
			Ephemeral: true,
		}
	case outcomeDisconnected:
		return Result{
			ErrorKind: ErrRemoteDisconnected,
			Payload:   Payload{Message: "The game server connection is down. Try again later."},
			Ephemeral: true,
		}
	case outcomeInvalid:
		return Result{
			ErrorKind: ErrValidation,
			Payload:   Payload{Message: fmt.Sprintf("Invalid arguments: %s", o.detail)},
			Ephemeral: true,
		}
	case outcomeExecFailed:
		return Result{
			ErrorKind: ErrRemoteExecution,
			Payload:   Payload{Message: fmt.Sprintf("Command failed: %v", o.cause)},
			Ephemeral: true,
		}
	case outcomeSucceeded:
		return Result{
			Success:   true,
			Payload:   o.payload,
			Ephemeral: o.private,
		}
	default:
		// Unreachable given the pipeline only emits the kinds above.
		return Result{
			ErrorKind: ErrRemoteExecution,
			Payload:   Payload{Message: "Command failed: internal error"},
			Ephemeral: true,
		}
	}
}
