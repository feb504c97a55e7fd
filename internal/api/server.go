// Package api serves the operational HTTP surface: health, metrics,
// server inventory, command dispatch, and the SSE event stream. The
// chat platform transport is not part of this surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rcon-bridge/rcb/internal/audit"
	"github.com/rcon-bridge/rcb/internal/auth"
	"github.com/rcon-bridge/rcb/internal/command"
	"github.com/rcon-bridge/rcb/internal/server"
)

// Inventory is the server manager surface the API needs.
type Inventory interface {
	Statuses() []server.Status
	Connect(name string) error
}

// Dispatcher routes command invocations.
type Dispatcher interface {
	Lookup(name string) (command.Handler, bool)
	Names() []string
}

// Deps wires the API server's collaborators.
type Deps struct {
	Inventory  Inventory
	Dispatcher Dispatcher
	Events     http.Handler
	Metrics    http.Handler
	Auth       *auth.Middleware
}

// Server is the ops HTTP server.
type Server struct {
	deps Deps
	http *http.Server
}

// NewServer builds the router and HTTP server on addr.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(correlationMiddleware)

	r.Get("/health", s.handleHealth)
	r.Method("GET", "/metrics", deps.Metrics)

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.RequireAuth)
		}
		r.Get("/v1/servers", s.handleServers)
		r.Post("/v1/servers/{name}/connect", s.handleConnect)
		r.Get("/v1/commands", s.handleCommands)
		r.Post("/v1/commands/{name}", s.handleDispatch)
		r.Method("GET", "/v1/events", deps.Events)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	statuses := s.deps.Inventory.Statuses()
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.deps.Inventory.Connect(name); err != nil {
		writeError(w, http.StatusBadGateway, "CONNECT_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "connected", "server": name})
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"commands": s.deps.Dispatcher.Names()})
}

// dispatchRequest is the body of POST /v1/commands/{name}. Identity is
// taken from the verified token when auth is enabled; the body field is
// a fallback for unauthenticated deployments.
type dispatchRequest struct {
	Identity string                 `json:"identity"`
	Args     map[string]interface{} `json:"args"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	handler, ok := s.deps.Dispatcher.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "UNKNOWN_COMMAND", "no such command: "+name)
		return
	}

	var body dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	identity := body.Identity
	if claims := auth.ClaimsFromRequest(r); claims != nil {
		identity = claims.Subject
	}
	if identity == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "identity is required")
		return
	}

	result := handler.Execute(r.Context(), command.Request{
		Command:  name,
		Identity: identity,
		Args:     command.Args(body.Args),
	})
	writeJSON(w, http.StatusOK, result)
}

// correlationMiddleware stamps every request with a correlation id so
// audit entries line up with HTTP traffic.
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Correlation-ID", id)
		next.ServeHTTP(w, r.WithContext(audit.WithCorrelationID(r.Context(), id)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"result":  "error",
		"code":    code,
		"message": message,
	})
}
