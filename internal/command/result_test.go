package command

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name          string
		outcome       outcome
		wantSuccess   bool
		wantKind      ErrorKind
		wantEphemeral bool
	}{
		{"denied", outcome{kind: outcomeDenied, retryAfter: 30 * time.Second}, false, ErrRateLimited, true},
		{"unavailable", outcome{kind: outcomeUnavailable}, false, ErrRemoteUnavailable, true},
		{"disconnected", outcome{kind: outcomeDisconnected}, false, ErrRemoteDisconnected, true},
		{"invalid", outcome{kind: outcomeInvalid, detail: "player is required"}, false, ErrValidation, true},
		{"exec failed", outcome{kind: outcomeExecFailed, cause: errors.New("TIMEOUT")}, false, ErrRemoteExecution, true},
		{"succeeded", outcome{kind: outcomeSucceeded, payload: Payload{Message: "ok"}}, true, "", false},
		{"succeeded private", outcome{kind: outcomeSucceeded, payload: Payload{Message: "ok"}, private: true}, true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classify(tt.outcome)
			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if result.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %q, want %q", result.ErrorKind, tt.wantKind)
			}
			if result.Ephemeral != tt.wantEphemeral {
				t.Errorf("Ephemeral = %v, want %v", result.Ephemeral, tt.wantEphemeral)
			}
			if result.Payload.Message == "" {
				t.Error("every result carries a human-readable message")
			}
		})
	}
}

func TestClassifyDeniedCarriesRetryAfter(t *testing.T) {
	result := classify(outcome{kind: outcomeDenied, retryAfter: 30 * time.Second})

	if !strings.Contains(result.Payload.Message, "30s") {
		t.Errorf("message %q should mention the retry window", result.Payload.Message)
	}
	if result.Payload.Data["retryAfter"] != "30s" {
		t.Errorf("Data = %v, want retryAfter=30s", result.Payload.Data)
	}
}

func TestClassifyInvalidCarriesDetail(t *testing.T) {
	result := classify(outcome{kind: outcomeInvalid, detail: "player is required"})
	if !strings.Contains(result.Payload.Message, "player is required") {
		t.Errorf("message %q should carry the detail", result.Payload.Message)
	}
}

func TestClassifyExecFailedCarriesCause(t *testing.T) {
	result := classify(outcome{kind: outcomeExecFailed, cause: errors.New("TIMEOUT (remote: i/o timeout)")})
	if !strings.Contains(result.Payload.Message, "TIMEOUT") {
		t.Errorf("message %q should reference the cause", result.Payload.Message)
	}
}
