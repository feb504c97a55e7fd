// Package audit writes an append-only JSONL record of every command
// decision. Expected denials (rate limit, unavailable remote) are
// audited the same as successes; they are not process errors.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp     time.Time `json:"ts"`
	CorrelationID string    `json:"correlationId"`
	Identity      string    `json:"identity"`
	Server        string    `json:"server,omitempty"`
	Command       string    `json:"command"`
	Code          string    `json:"code"`
	LatencyMs     int64     `json:"latencyMs"`
}

// Logger appends entries to an audit log file.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
}

// NewLogger opens (creating if needed) logDir/audit.jsonl for append.
func NewLogger(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	filePath := filepath.Join(logDir, "audit.jsonl")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &Logger{filePath: filePath, file: file}, nil
}

// LogCommand records the terminal outcome of one request.
func (l *Logger) LogCommand(ctx context.Context, identity, serverName, commandName, code string, latency time.Duration) {
	entry := Entry{
		Timestamp:     time.Now().UTC(),
		CorrelationID: CorrelationID(ctx),
		Identity:      identity,
		Server:        serverName,
		Command:       commandName,
		Code:          code,
		LatencyMs:     latency.Milliseconds(),
	}
	l.writeEntry(entry)
}

func (l *Logger) writeEntry(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal audit entry: %v\n", err)
		return
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write audit entry: %v\n", err)
	}
}

// FilePath returns the audit log location.
func (l *Logger) FilePath() string {
	return l.filePath
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

type correlationKey struct{}

// WithCorrelationID stamps a request context with a correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id from ctx, generating one if absent so
// every audit entry is traceable.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
