// Package dispatch holds the command registry the platform layer uses
// to route inbound invocations to handlers.
package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rcon-bridge/rcb/internal/command"
)

// Registry maps command names to handlers. Registration happens at
// startup; lookups are concurrent.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]command.Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]command.Handler)}
}

// Register adds a handler under its own name.
func (r *Registry) Register(h command.Handler) error {
	if h == nil || h.Name() == "" {
		return fmt.Errorf("dispatch: handler with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[h.Name()]; exists {
		return fmt.Errorf("dispatch: %q already registered", h.Name())
	}
	r.handlers[h.Name()] = h
	return nil
}

// RegisterAll registers a handler set, stopping at the first conflict.
func (r *Registry) RegisterAll(handlers []command.Handler) error {
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the handler for a command name.
func (r *Registry) Lookup(name string) (command.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
