package rcon

import (
	"context"
	"time"
)

// Client is the stable southbound contract toward a remote console.
type Client interface {
	// Execute sends a console command and returns the raw response text.
	// The call is bounded by the deadline on ctx.
	Execute(ctx context.Context, command string) (string, error)

	// Connected reports live connectivity at call time. A false value
	// means the session exists but is currently down.
	Connected() bool

	// Close tears down the underlying session. Safe to call twice.
	Close() error
}

// DialConfig holds the parameters needed to establish an RCON session.
type DialConfig struct {
	// Addr is the host:port of the remote console listener.
	Addr string

	// Password is sent in the auth handshake.
	Password string

	// DialTimeout bounds the TCP connect and auth handshake.
	DialTimeout time.Duration
}
