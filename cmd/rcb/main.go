// Package main is the RCON Command Bridge entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcon-bridge/rcb/internal/admission"
	"github.com/rcon-bridge/rcb/internal/api"
	"github.com/rcon-bridge/rcb/internal/audit"
	"github.com/rcon-bridge/rcb/internal/auth"
	"github.com/rcon-bridge/rcb/internal/command"
	"github.com/rcon-bridge/rcb/internal/config"
	"github.com/rcon-bridge/rcb/internal/dispatch"
	"github.com/rcon-bridge/rcb/internal/metrics"
	"github.com/rcon-bridge/rcb/internal/resolver"
	"github.com/rcon-bridge/rcb/internal/server"
	"github.com/rcon-bridge/rcb/internal/telemetry"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log.Printf("Starting RCON Command Bridge v%s", version)

	// Step 1: Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully")

	// Step 2: Initialize audit logger
	auditLogger, err := audit.NewLogger(cfg.AuditDir)
	if err != nil {
		log.Fatalf("Failed to initialize audit logger: %v", err)
	}
	log.Printf("Audit logger writing to %s", auditLogger.FilePath())

	// Step 3: Initialize metrics and telemetry hub
	instruments := metrics.New()
	hub := telemetry.NewHub()
	log.Println("Telemetry hub initialized")

	// Step 4: Initialize server manager and dial configured servers
	manager := server.NewManager(time.Duration(cfg.Timeouts.Dial))
	for _, srv := range cfg.Servers {
		if err := manager.Register(srv); err != nil {
			log.Fatalf("Failed to register server %q: %v", srv.Name, err)
		}
	}
	for identity, serverName := range cfg.Bindings {
		if err := manager.Bind(identity, serverName); err != nil {
			log.Fatalf("Failed to bind %q: %v", identity, err)
		}
	}
	for _, err := range manager.ConnectAll() {
		// Unreachable servers stay registered; commands against them
		// classify as disconnected until an explicit reconnect.
		log.Printf("Warning: %v", err)
	}
	log.Printf("Server manager initialized with %d server(s)", len(cfg.Servers))

	// Step 5: Initialize admission controller
	store, err := newAdmissionStore(cfg.Admission)
	if err != nil {
		log.Fatalf("Failed to initialize admission store: %v", err)
	}
	admitter, err := admission.NewController(cfg.Categories(), store)
	if err != nil {
		log.Fatalf("Failed to initialize admission controller: %v", err)
	}
	log.Printf("Admission controller initialized (%s store)", cfg.Admission.Store)

	// Step 6: Build handlers and registry
	handlers := command.NewHandlers(command.Deps{
		Admission: admitter,
		Resolver:  resolver.New(manager),
		Timeouts: command.Timeouts{
			Admin: time.Duration(cfg.Timeouts.Admin),
			Query: time.Duration(cfg.Timeouts.Query),
			Chat:  time.Duration(cfg.Timeouts.Chat),
			Game:  time.Duration(cfg.Timeouts.Game),
		},
		Audit:   auditLogger,
		Events:  hub,
		Metrics: instruments,
	})
	registry := dispatch.NewRegistry()
	if err := registry.RegisterAll(handlers); err != nil {
		log.Fatalf("Failed to register handlers: %v", err)
	}
	log.Printf("Registered %d command(s)", len(registry.Names()))

	// Step 7: Create ops API server
	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize token verifier: %v", err)
	}
	if verifier == nil {
		log.Println("Warning: authentication disabled (no algorithm configured)")
	}
	apiServer := api.NewServer(cfg.ListenAddr, api.Deps{
		Inventory:  manager,
		Dispatcher: registry,
		Events:     hub,
		Metrics:    instruments.Handler(),
		Auth:       auth.NewMiddleware(verifier),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	log.Printf("Ops API listening on %s", cfg.ListenAddr)

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Error stopping HTTP server: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	if err := admitter.Close(); err != nil {
		log.Printf("Error closing admission store: %v", err)
	}
	if err := manager.CloseAll(); err != nil {
		log.Printf("Error closing RCON sessions: %v", err)
	}
	if err := auditLogger.Close(); err != nil {
		log.Printf("Error closing audit logger: %v", err)
	}

	log.Println("RCON Command Bridge shutdown complete")
}

func newAdmissionStore(cfg config.AdmissionConfig) (admission.Store, error) {
	switch cfg.Store {
	case "redis":
		return admission.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return admission.NewMemoryStore(), nil
	}
}
