// Package resolver maps caller identities to their execution context:
// the bound server and, when one exists, its live RCON session.
package resolver

import (
	"github.com/rcon-bridge/rcb/internal/rcon"
)

// ServerContext is the per-request execution context. Client is nil
// when the identity has no configured server or the session was never
// established; a present Client may still report Connected() == false.
type ServerContext struct {
	ServerName string
	Client     rcon.Client
}

// Directory is the read side of the server manager.
type Directory interface {
	BindingFor(identity string) (string, bool)
	Client(name string) (rcon.Client, bool)
}

// Resolver performs read-only context lookups. It never dials.
type Resolver struct {
	dir Directory
}

// New creates a resolver over a directory.
func New(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the execution context for an identity. It always
// succeeds; absence of a usable session is expressed in the returned
// context, not as an error.
func (r *Resolver) Resolve(identity string) ServerContext {
	name, ok := r.dir.BindingFor(identity)
	if !ok {
		return ServerContext{}
	}

	ctx := ServerContext{ServerName: name}
	if client, ok := r.dir.Client(name); ok {
		ctx.Client = client
	}
	return ctx
}
