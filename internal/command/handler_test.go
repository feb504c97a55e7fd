package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rcon-bridge/rcb/internal/admission"
	"github.com/rcon-bridge/rcb/internal/rcon/fake"
	"github.com/rcon-bridge/rcb/internal/resolver"
)

// mockAdmitter is a scriptable Admitter recording its calls.
type mockAdmitter struct {
	mu       sync.Mutex
	decision admission.Decision
	err      error
	calls    []string
}

func (m *mockAdmitter) Check(_ context.Context, identity, category string) (admission.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, identity+":"+category)
	return m.decision, m.err
}

// mockResolver returns a fixed context and counts lookups.
type mockResolver struct {
	sctx  resolver.ServerContext
	calls int
}

func (m *mockResolver) Resolve(identity string) resolver.ServerContext {
	m.calls++
	return m.sctx
}

type auditRecord struct {
	Identity string
	Server   string
	Command  string
	Code     string
}

// mockAudit records audit calls.
type mockAudit struct {
	records []auditRecord
}

func (m *mockAudit) LogCommand(_ context.Context, identity, serverName, commandName, code string, _ time.Duration) {
	m.records = append(m.records, auditRecord{identity, serverName, commandName, code})
}

// testDeps builds deps over the given admitter/resolver with audit
// recording and one-second timeouts.
func testDeps(adm Admitter, res ContextResolver, audit *mockAudit) Deps {
	return Deps{
		Admission: adm,
		Resolver:  res,
		Timeouts:  Timeouts{Admin: time.Second, Query: time.Second, Chat: time.Second, Game: time.Second},
		Audit:     audit,
	}
}

func kickDefinition() Definition {
	for _, def := range Definitions() {
		if def.Name == "kick" {
			return def
		}
	}
	panic("kick definition missing")
}

func TestHappyPath(t *testing.T) {
	client := fake.NewClient()
	client.Script("kick Spammer", "Player Spammer was kicked")

	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}
	audit := &mockAudit{}

	h := NewHandler(kickDefinition(), testDeps(adm, res, audit))
	result := h.Execute(context.Background(), Request{
		Command:  "kick",
		Identity: "42",
		Args:     Args{"player": "Spammer"},
	})

	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.ErrorKind != "" {
		t.Errorf("ErrorKind = %q, want empty", result.ErrorKind)
	}
	if result.Ephemeral {
		t.Error("admin success should not be ephemeral")
	}
	if !strings.Contains(result.Payload.Message, "Spammer") {
		t.Errorf("payload %q should reference the player", result.Payload.Message)
	}
	if got := client.Executed; len(got) != 1 || got[0] != "kick Spammer" {
		t.Errorf("executed = %v, want [kick Spammer]", got)
	}
	if len(audit.records) != 1 || audit.records[0].Code != "SUCCESS" {
		t.Errorf("audit = %+v, want one SUCCESS record", audit.records)
	}
}

func TestRateLimitedSkipsRemoteCall(t *testing.T) {
	client := fake.NewClient()
	adm := &mockAdmitter{decision: admission.Decision{Limited: true, RetryAfter: 42 * time.Second}}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}
	audit := &mockAudit{}

	h := NewHandler(kickDefinition(), testDeps(adm, res, audit))
	result := h.Execute(context.Background(), Request{Identity: "42", Args: Args{"player": "Spammer"}})

	if result.Success {
		t.Fatal("limited request must not succeed")
	}
	if result.ErrorKind != ErrRateLimited {
		t.Errorf("ErrorKind = %q, want %q", result.ErrorKind, ErrRateLimited)
	}
	if !result.Ephemeral {
		t.Error("denial must be ephemeral")
	}
	if client.ExecuteCount() != 0 {
		t.Error("remote execute must not be invoked for a limited request")
	}
	if res.calls != 0 {
		t.Error("context resolution must not happen after a denial")
	}
	if !strings.Contains(result.Payload.Message, "42s") {
		t.Errorf("payload %q should carry the retry-after hint", result.Payload.Message)
	}
	if len(audit.records) != 1 || audit.records[0].Code != "RATE_LIMITED" {
		t.Errorf("audit = %+v, want one RATE_LIMITED record", audit.records)
	}
}

func TestRemoteUnavailable(t *testing.T) {
	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{}}
	audit := &mockAudit{}

	h := NewHandler(kickDefinition(), testDeps(adm, res, audit))
	result := h.Execute(context.Background(), Request{Identity: "7", Args: Args{"player": "Spammer"}})

	if result.Success || result.ErrorKind != ErrRemoteUnavailable {
		t.Errorf("result = %+v, want REMOTE_UNAVAILABLE", result)
	}
	if !result.Ephemeral {
		t.Error("error must be ephemeral")
	}
}

func TestRemoteDisconnected(t *testing.T) {
	client := fake.NewClient()
	client.Down = true

	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}
	audit := &mockAudit{}

	h := NewHandler(kickDefinition(), testDeps(adm, res, audit))
	result := h.Execute(context.Background(), Request{Identity: "7", Args: Args{"player": "Spammer"}})

	if result.Success || result.ErrorKind != ErrRemoteDisconnected {
		t.Errorf("result = %+v, want REMOTE_DISCONNECTED", result)
	}
	if client.ExecuteCount() != 0 {
		t.Error("remote execute must not be invoked on a down session")
	}
}

func TestValidationErrorBeforeRemoteCall(t *testing.T) {
	client := fake.NewClient()
	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}
	audit := &mockAudit{}

	h := NewHandler(kickDefinition(), testDeps(adm, res, audit))
	result := h.Execute(context.Background(), Request{Identity: "42", Args: Args{}})

	if result.Success || result.ErrorKind != ErrValidation {
		t.Errorf("result = %+v, want VALIDATION_ERROR", result)
	}
	if !strings.Contains(result.Payload.Message, "player") {
		t.Errorf("payload %q should carry the rejection detail", result.Payload.Message)
	}
	if client.ExecuteCount() != 0 {
		t.Error("malformed input must never reach the remote protocol")
	}
}

func TestRemoteExecutionError(t *testing.T) {
	client := fake.NewClient()
	client.ExecuteErr = errors.New("Connection timeout")

	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}
	audit := &mockAudit{}

	h := NewHandler(kickDefinition(), testDeps(adm, res, audit))
	result := h.Execute(context.Background(), Request{Identity: "7", Args: Args{"player": "Spammer"}})

	if result.Success || result.ErrorKind != ErrRemoteExecution {
		t.Fatalf("result = %+v, want REMOTE_EXECUTION_ERROR", result)
	}
	if !strings.Contains(strings.ToLower(result.Payload.Message), "timeout") {
		t.Errorf("payload %q should reference the cause", result.Payload.Message)
	}
	if len(audit.records) != 1 || audit.records[0].Code != "TIMEOUT" {
		t.Errorf("audit = %+v, want one TIMEOUT record", audit.records)
	}
}

func TestExecuteTimeoutClassifiedAsExecutionError(t *testing.T) {
	client := &slowClient{delay: 200 * time.Millisecond}

	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}
	deps := testDeps(adm, res, &mockAudit{})
	deps.Timeouts = Timeouts{Admin: 50 * time.Millisecond, Query: 50 * time.Millisecond, Chat: 50 * time.Millisecond, Game: 50 * time.Millisecond}

	h := NewHandler(kickDefinition(), deps)
	result := h.Execute(context.Background(), Request{Identity: "7", Args: Args{"player": "Spammer"}})

	if result.ErrorKind != ErrRemoteExecution {
		t.Errorf("ErrorKind = %q, want REMOTE_EXECUTION_ERROR", result.ErrorKind)
	}
}

// slowClient blocks until its delay or the context deadline.
type slowClient struct {
	delay time.Duration
}

func (c *slowClient) Execute(ctx context.Context, _ string) (string, error) {
	select {
	case <-time.After(c.delay):
		return "late", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *slowClient) Connected() bool { return true }
func (c *slowClient) Close() error    { return nil }

// panicClient panics on Execute.
type panicClient struct{}

func (panicClient) Execute(context.Context, string) (string, error) { panic("boom") }
func (panicClient) Connected() bool                                 { return true }
func (panicClient) Close() error                                    { return nil }

func TestPanickingClientContained(t *testing.T) {
	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: panicClient{}}}

	h := NewHandler(kickDefinition(), testDeps(adm, res, &mockAudit{}))
	result := h.Execute(context.Background(), Request{Identity: "7", Args: Args{"player": "Spammer"}})

	if result.Success || result.ErrorKind != ErrRemoteExecution {
		t.Errorf("result = %+v, want REMOTE_EXECUTION_ERROR", result)
	}
	if !strings.Contains(result.Payload.Message, "boom") {
		t.Errorf("payload %q should reference the panic value", result.Payload.Message)
	}
}

func TestMisconfiguredCategory(t *testing.T) {
	adm := &mockAdmitter{err: errors.New(`admission: unknown category "admin"`)}
	res := &mockResolver{}
	audit := &mockAudit{}

	h := NewHandler(kickDefinition(), testDeps(adm, res, audit))
	result := h.Execute(context.Background(), Request{Identity: "42", Args: Args{"player": "Spammer"}})

	if result.Success || result.ErrorKind != ErrRemoteExecution {
		t.Errorf("result = %+v, want REMOTE_EXECUTION_ERROR", result)
	}
	if res.calls != 0 {
		t.Error("no resolution should happen on a wiring failure")
	}
	if len(audit.records) != 1 || audit.records[0].Code != "MISCONFIGURED" {
		t.Errorf("audit = %+v, want one MISCONFIGURED record", audit.records)
	}
}

func TestPrivateSuccessIsEphemeral(t *testing.T) {
	var tellDef Definition
	for _, def := range Definitions() {
		if def.Name == "tell" {
			tellDef = def
		}
	}

	client := fake.NewClient()
	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}

	h := NewHandler(tellDef, testDeps(adm, res, &mockAudit{}))
	result := h.Execute(context.Background(), Request{
		Identity: "42",
		Args:     Args{"player": "alice", "message": "psst"},
	})

	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if !result.Ephemeral {
		t.Error("whisper success must be ephemeral")
	}
}

func TestSameRequestTwiceSameClassification(t *testing.T) {
	client := fake.NewClient()
	client.Script("kick Spammer", "Player Spammer was kicked")

	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}

	h := NewHandler(kickDefinition(), testDeps(adm, res, &mockAudit{}))
	req := Request{Identity: "42", Args: Args{"player": "Spammer"}}

	first := h.Execute(context.Background(), req)
	second := h.Execute(context.Background(), req)

	if first.Success != second.Success || first.ErrorKind != second.ErrorKind {
		t.Errorf("classification differs: %+v vs %+v", first, second)
	}
	if client.ExecuteCount() != 2 {
		t.Errorf("executed %d times, want 2", client.ExecuteCount())
	}
}

func TestAdmissionCheckedBeforeAnyIO(t *testing.T) {
	client := fake.NewClient()
	adm := &mockAdmitter{decision: admission.Decision{Limited: true, RetryAfter: time.Second}}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}

	h := NewHandler(kickDefinition(), testDeps(adm, res, &mockAudit{}))
	_ = h.Execute(context.Background(), Request{Identity: "42", Args: Args{"player": "Spammer"}})

	if len(adm.calls) != 1 || adm.calls[0] != "42:admin" {
		t.Errorf("admission calls = %v, want [42:admin]", adm.calls)
	}
	if res.calls != 0 || client.ExecuteCount() != 0 {
		t.Error("no resolution or remote I/O may precede or follow a denial")
	}
}

func TestParseDegradesToRawText(t *testing.T) {
	var listDef Definition
	for _, def := range Definitions() {
		if def.Name == "list" {
			listDef = def
		}
	}

	client := fake.NewClient()
	client.Script("list", "some unexpected shape")

	adm := &mockAdmitter{}
	res := &mockResolver{sctx: resolver.ServerContext{ServerName: "survival", Client: client}}

	h := NewHandler(listDef, testDeps(adm, res, &mockAudit{}))
	result := h.Execute(context.Background(), Request{Identity: "42", Args: Args{}})

	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.Payload.Message != "some unexpected shape" {
		t.Errorf("payload message = %q, want the raw text", result.Payload.Message)
	}
	if len(result.Payload.Data) != 0 {
		t.Errorf("unrecognized shape should carry no parsed data, got %v", result.Payload.Data)
	}
}
