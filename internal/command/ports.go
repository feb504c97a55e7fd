package command

import (
	"context"
	"time"

	"github.com/rcon-bridge/rcb/internal/admission"
	"github.com/rcon-bridge/rcb/internal/resolver"
)

// Handler is the single operation the dispatcher registers and invokes.
type Handler interface {
	Name() string
	Execute(ctx context.Context, req Request) Result
}

// Admitter gates requests before any remote I/O.
type Admitter interface {
	Check(ctx context.Context, identity, category string) (admission.Decision, error)
}

// ContextResolver maps an identity to its execution context.
type ContextResolver interface {
	Resolve(identity string) resolver.ServerContext
}

// AuditLogger records the terminal outcome of every request.
type AuditLogger interface {
	LogCommand(ctx context.Context, identity, serverName, commandName, code string, latency time.Duration)
}

// EventPublisher broadcasts command lifecycle events. Implementations
// must not block the pipeline.
type EventPublisher interface {
	PublishCommand(serverName, eventType string, data map[string]interface{})
}

// Observer records pipeline metrics.
type Observer interface {
	ObserveCommand(commandName, code string, latency time.Duration)
	ObserveDenial(category string)
}

// Admission categories. Quotas and windows per category come from
// configuration, never from this package.
const (
	CategoryAdmin = "admin"
	CategoryQuery = "query"
	CategoryChat  = "chat"
	CategoryGame  = "game"
)

// Timeouts bounds the remote call per handler kind.
type Timeouts struct {
	Admin time.Duration
	Query time.Duration
	Chat  time.Duration
	Game  time.Duration
}

// ForCategory returns the timeout for an admission category.
func (t Timeouts) ForCategory(category string) time.Duration {
	switch category {
	case CategoryAdmin:
		return t.Admin
	case CategoryQuery:
		return t.Query
	case CategoryChat:
		return t.Chat
	case CategoryGame:
		return t.Game
	default:
		return 5 * time.Second
	}
}
