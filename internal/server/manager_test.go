package server

import (
	"errors"
	"testing"
	"time"

	"github.com/rcon-bridge/rcb/internal/rcon"
	"github.com/rcon-bridge/rcb/internal/rcon/fake"
)

func newTestManager(t *testing.T) (*Manager, map[string]*fake.Client) {
	t.Helper()

	m := NewManager(time.Second)
	dialed := make(map[string]*fake.Client)
	m.SetDialFunc(func(cfg rcon.DialConfig) (rcon.Client, error) {
		client := fake.NewClient()
		dialed[cfg.Addr] = client
		return client, nil
	})
	return m, dialed
}

func TestRegisterAndConnect(t *testing.T) {
	m, dialed := newTestManager(t)

	if err := m.Register(GameServer{Name: "survival", Addr: "10.0.0.5:25575", Password: "x"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Connect("survival"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	client, ok := m.Client("survival")
	if !ok {
		t.Fatal("Client should return the dialed session")
	}
	if client != dialed["10.0.0.5:25575"] {
		t.Error("Client returned a different session than was dialed")
	}
}

func TestRegisterValidation(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.Register(GameServer{Name: "", Addr: "a:1"}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := m.Register(GameServer{Name: "s", Addr: ""}); err == nil {
		t.Error("expected error for empty addr")
	}

	if err := m.Register(GameServer{Name: "s", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Register(GameServer{Name: "s", Addr: "b:2"}); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestConnectUnknownServer(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Connect("nope"); err == nil {
		t.Error("expected error for unregistered server")
	}
}

func TestConnectReplacesExistingSession(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.Register(GameServer{Name: "s", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Connect("s"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	first, _ := m.Client("s")

	if err := m.Connect("s"); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	second, _ := m.Client("s")

	if first == second {
		t.Error("reconnect should produce a new session")
	}
	if first.Connected() {
		t.Error("old session should be closed on reconnect")
	}
}

func TestConnectAllCollectsFailures(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDialFunc(func(cfg rcon.DialConfig) (rcon.Client, error) {
		if cfg.Addr == "bad:1" {
			return nil, errors.New("connection refused")
		}
		return fake.NewClient(), nil
	})

	for _, srv := range []GameServer{
		{Name: "good", Addr: "good:1"},
		{Name: "bad", Addr: "bad:1"},
	} {
		if err := m.Register(srv); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	errs := m.ConnectAll()
	if len(errs) != 1 {
		t.Fatalf("ConnectAll errors = %d, want 1", len(errs))
	}

	if _, ok := m.Client("good"); !ok {
		t.Error("good server should have a session")
	}
	if _, ok := m.Client("bad"); ok {
		t.Error("bad server should have no session")
	}
}

func TestBindings(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.Register(GameServer{Name: "s", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := m.Bind("42", "nope"); err == nil {
		t.Error("expected error binding to unknown server")
	}
	if err := m.Bind("42", "s"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	name, ok := m.BindingFor("42")
	if !ok || name != "s" {
		t.Errorf("BindingFor(42) = %q, %v; want s, true", name, ok)
	}
	if _, ok := m.BindingFor("7"); ok {
		t.Error("unbound identity should have no binding")
	}
}

func TestStatuses(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.Register(GameServer{Name: "up", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Register(GameServer{Name: "down", Addr: "b:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Connect("up"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	byName := make(map[string]Status)
	for _, st := range m.Statuses() {
		byName[st.Name] = st
	}

	if !byName["up"].Connected {
		t.Error("connected server should report Connected")
	}
	if byName["down"].Connected {
		t.Error("never-connected server should not report Connected")
	}
}

func TestCloseAll(t *testing.T) {
	m, dialed := newTestManager(t)

	if err := m.Register(GameServer{Name: "s", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Connect("s"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.CloseAll(); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}

	if dialed["a:1"].Connected() {
		t.Error("session should be closed")
	}
	if _, ok := m.Client("s"); ok {
		t.Error("client map should be empty after CloseAll")
	}
}
