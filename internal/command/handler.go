package command

import (
	"context"
	"fmt"
	"time"

	"github.com/rcon-bridge/rcb/internal/rcon"
)

// Definition describes one command kind: its admission category plus
// the three points where kinds differ — argument validation, remote
// command construction, and response parsing.
type Definition struct {
	// Name is the command name the dispatcher registers.
	Name string

	// Category selects the admission quota and the remote timeout.
	Category string

	// Validate checks arguments before the remote call. A non-empty
	// return is the human-readable rejection detail. Nil means the
	// command takes no validated arguments.
	Validate func(args Args) string

	// Build constructs the remote console command string from
	// validated arguments.
	Build func(args Args) string

	// Parse builds the success payload from raw remote text. Nil
	// means the raw text is the payload.
	Parse func(args Args, raw string) Payload

	// PrivateSuccess marks success responses as ephemeral (whisper
	// style commands).
	PrivateSuccess bool
}

// Deps are the collaborators injected into every handler.
type Deps struct {
	Admission Admitter
	Resolver  ContextResolver
	Timeouts  Timeouts
	Audit     AuditLogger
	Events    EventPublisher
	Metrics   Observer
}

// handler runs the fixed pipeline around one Definition.
type handler struct {
	def  Definition
	deps Deps
}

var _ Handler = (*handler)(nil)

// NewHandler wraps a definition in the pipeline.
func NewHandler(def Definition, deps Deps) Handler {
	return &handler{def: def, deps: deps}
}

// Name returns the command name.
func (h *handler) Name() string {
	return h.def.Name
}

// Execute runs the pipeline. Ordering is strict: the admission check
// precedes any I/O, validation precedes the remote call, and no remote
// call happens after a denial or unavailable/disconnected
// classification. Exactly one Result is returned per request.
func (h *handler) Execute(ctx context.Context, req Request) Result {
	start := time.Now()

	// Admission check. The check consumes; denied attempts count too.
	decision, err := h.deps.Admission.Check(ctx, req.Identity, h.def.Category)
	if err != nil {
		// Unknown category is a wiring defect, not a caller error.
		return h.finish(ctx, req, "", "MISCONFIGURED", start, outcome{
			kind:  outcomeExecFailed,
			cause: err,
		})
	}
	if decision.Limited {
		if h.deps.Metrics != nil {
			h.deps.Metrics.ObserveDenial(h.def.Category)
		}
		if h.deps.Events != nil {
			h.deps.Events.PublishCommand("", "commandDenied", map[string]interface{}{
				"command":  h.def.Name,
				"category": h.def.Category,
			})
		}
		return h.finish(ctx, req, "", "RATE_LIMITED", start, outcome{
			kind:       outcomeDenied,
			retryAfter: decision.RetryAfter,
		})
	}

	// Context resolution. Read-only; no connection is established here.
	sctx := h.deps.Resolver.Resolve(req.Identity)
	if sctx.Client == nil {
		return h.finish(ctx, req, sctx.ServerName, "REMOTE_UNAVAILABLE", start, outcome{
			kind: outcomeUnavailable,
		})
	}
	if !sctx.Client.Connected() {
		return h.finish(ctx, req, sctx.ServerName, "REMOTE_DISCONNECTED", start, outcome{
			kind: outcomeDisconnected,
		})
	}

	// Validation. Malformed input never reaches the remote protocol.
	if h.def.Validate != nil {
		if detail := h.def.Validate(req.Args); detail != "" {
			return h.finish(ctx, req, sctx.ServerName, "VALIDATION_ERROR", start, outcome{
				kind:   outcomeInvalid,
				detail: detail,
			})
		}
	}

	// Remote execution, bounded by the per-kind timeout. Failures are
	// contained here; nothing past this call sees a raw remote error.
	execCtx, cancel := context.WithTimeout(ctx, h.deps.Timeouts.ForCategory(h.def.Category))
	defer cancel()

	raw, execErr := h.execute(execCtx, sctx.Client, h.def.Build(req.Args))
	if execErr != nil {
		normalized := rcon.NormalizeError(execErr)
		if h.deps.Events != nil {
			h.deps.Events.PublishCommand(sctx.ServerName, "commandFault", map[string]interface{}{
				"command": h.def.Name,
				"code":    rcon.CauseCode(normalized),
			})
		}
		return h.finish(ctx, req, sctx.ServerName, rcon.CauseCode(normalized), start, outcome{
			kind:  outcomeExecFailed,
			cause: normalized,
		})
	}

	// Parse. Unrecognized response shapes degrade to the raw text.
	payload := Payload{Message: raw}
	if h.def.Parse != nil {
		payload = h.def.Parse(req.Args, raw)
	}

	if h.deps.Events != nil {
		h.deps.Events.PublishCommand(sctx.ServerName, "commandExecuted", map[string]interface{}{
			"command":  h.def.Name,
			"identity": req.Identity,
		})
	}
	return h.finish(ctx, req, sctx.ServerName, "SUCCESS", start, outcome{
		kind:    outcomeSucceeded,
		payload: payload,
		private: h.def.PrivateSuccess,
	})
}

// execute invokes the remote client. A panicking client implementation
// surfaces as an execution error instead of escaping the handler.
func (h *handler) execute(ctx context.Context, client rcon.Client, commandString string) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("remote client panic: %v", r)
		}
	}()
	return client.Execute(ctx, commandString)
}

// finish audits, records metrics, and classifies the terminal outcome.
func (h *handler) finish(ctx context.Context, req Request, serverName, code string, start time.Time, o outcome) Result {
	latency := time.Since(start)
	if h.deps.Audit != nil {
		h.deps.Audit.LogCommand(ctx, req.Identity, serverName, h.def.Name, code, latency)
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.ObserveCommand(h.def.Name, code, latency)
	}
	return classify(o)
}
