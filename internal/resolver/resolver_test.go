package resolver

import (
	"testing"
	"time"

	"github.com/rcon-bridge/rcb/internal/rcon"
	"github.com/rcon-bridge/rcb/internal/rcon/fake"
	"github.com/rcon-bridge/rcb/internal/server"
)

func TestResolveUnboundIdentity(t *testing.T) {
	m := server.NewManager(time.Second)
	r := New(m)

	ctx := r.Resolve("7")
	if ctx.ServerName != "" || ctx.Client != nil {
		t.Errorf("unbound identity should resolve to empty context, got %+v", ctx)
	}
}

func TestResolveBoundWithoutSession(t *testing.T) {
	m := server.NewManager(time.Second)
	if err := m.Register(server.GameServer{Name: "survival", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Bind("42", "survival"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	ctx := New(m).Resolve("42")
	if ctx.ServerName != "survival" {
		t.Errorf("ServerName = %q, want survival", ctx.ServerName)
	}
	if ctx.Client != nil {
		t.Error("no session was established, Client should be nil")
	}
}

func TestResolveBoundWithSession(t *testing.T) {
	m := server.NewManager(time.Second)
	m.SetDialFunc(func(rcon.DialConfig) (rcon.Client, error) {
		return fake.NewClient(), nil
	})

	if err := m.Register(server.GameServer{Name: "survival", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Connect("survival"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Bind("42", "survival"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	ctx := New(m).Resolve("42")
	if ctx.Client == nil {
		t.Fatal("Client should be present")
	}
	if !ctx.Client.Connected() {
		t.Error("fake session should report connected")
	}
}

func TestResolveReflectsLiveConnectivity(t *testing.T) {
	m := server.NewManager(time.Second)
	down := fake.NewClient()
	down.Down = true
	m.SetDialFunc(func(rcon.DialConfig) (rcon.Client, error) {
		return down, nil
	})

	if err := m.Register(server.GameServer{Name: "survival", Addr: "a:1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Connect("survival"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Bind("42", "survival"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	ctx := New(m).Resolve("42")
	if ctx.Client == nil {
		t.Fatal("Client should be present even when down")
	}
	if ctx.Client.Connected() {
		t.Error("Connected should reflect the live state at resolution time")
	}
}
