// Package server manages the game server inventory: configured RCON
// endpoints, their client sessions, and identity bindings. Connection
// lifecycle is owned here; command handlers only read resolved handles.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/rcon-bridge/rcb/internal/rcon"
)

// GameServer describes one configured game server.
type GameServer struct {
	Name     string `yaml:"name" json:"name"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
}

// Status is the ops-facing view of a server entry.
type Status struct {
	Name      string `json:"name"`
	Addr      string `json:"addr"`
	Connected bool   `json:"connected"`
}

// DialFunc establishes an RCON session. Swappable for tests.
type DialFunc func(cfg rcon.DialConfig) (rcon.Client, error)

// Manager holds the server inventory and owns client sessions.
type Manager struct {
	mu       sync.RWMutex
	servers  map[string]GameServer
	clients  map[string]rcon.Client
	bindings map[string]string

	dial        DialFunc
	dialTimeout time.Duration
}

// NewManager creates an empty manager using the real RCON dialer.
func NewManager(dialTimeout time.Duration) *Manager {
	return &Manager{
		servers:  make(map[string]GameServer),
		clients:  make(map[string]rcon.Client),
		bindings: make(map[string]string),
		dial: func(cfg rcon.DialConfig) (rcon.Client, error) {
			return rcon.Dial(cfg)
		},
		dialTimeout: dialTimeout,
	}
}

// SetDialFunc replaces the dialer. Intended for tests and fakes.
func (m *Manager) SetDialFunc(dial DialFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dial = dial
}

// Register adds a server to the inventory without connecting.
func (m *Manager) Register(srv GameServer) error {
	if srv.Name == "" || srv.Addr == "" {
		return fmt.Errorf("server: name and addr are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.servers[srv.Name]; exists {
		return fmt.Errorf("server: %q already registered", srv.Name)
	}
	m.servers[srv.Name] = srv
	return nil
}

// Connect dials the named server and stores the session. An existing
// session is closed first, so Connect doubles as reconnect.
func (m *Manager) Connect(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	srv, ok := m.servers[name]
	if !ok {
		return fmt.Errorf("server: %q not registered", name)
	}

	if old, ok := m.clients[name]; ok {
		_ = old.Close()
		delete(m.clients, name)
	}

	client, err := m.dial(rcon.DialConfig{
		Addr:        srv.Addr,
		Password:    srv.Password,
		DialTimeout: m.dialTimeout,
	})
	if err != nil {
		return fmt.Errorf("server: connect %q: %w", name, err)
	}

	m.clients[name] = client
	return nil
}

// ConnectAll dials every registered server, collecting failures rather
// than stopping at the first. Servers that fail to connect stay
// registered; their identities resolve to an absent client.
func (m *Manager) ConnectAll() []error {
	m.mu.RLock()
	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	m.mu.RUnlock()

	var errs []error
	for _, name := range names {
		if err := m.Connect(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Client returns the live session for a server, if any.
func (m *Manager) Client(name string) (rcon.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[name]
	return client, ok
}

// Bind associates an identity with a server by name.
func (m *Manager) Bind(identity, serverName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.servers[serverName]; !ok {
		return fmt.Errorf("server: cannot bind %q to unknown server %q", identity, serverName)
	}
	m.bindings[identity] = serverName
	return nil
}

// BindingFor returns the server name bound to an identity.
func (m *Manager) BindingFor(identity string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.bindings[identity]
	return name, ok
}

// Statuses returns the ops view of the inventory.
func (m *Manager) Statuses() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Status, 0, len(m.servers))
	for name, srv := range m.servers {
		connected := false
		if client, ok := m.clients[name]; ok {
			connected = client.Connected()
		}
		out = append(out, Status{Name: name, Addr: srv.Addr, Connected: connected})
	}
	return out
}

// CloseAll tears down every session.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, client := range m.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.clients, name)
	}
	return firstErr
}
