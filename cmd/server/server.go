package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/martinsuchenak/devcalc/internal/api"
	"github.com/martinsuchenak/devcalc/internal/config"
	"github.com/martinsuchenak/devcalc/internal/events"
	"github.com/martinsuchenak/devcalc/internal/log"
	"github.com/martinsuchenak/devcalc/internal/mcp"
	"github.com/martinsuchenak/devcalc/internal/netcalc"
	"github.com/martinsuchenak/devcalc/internal/worker"
	"github.com/paularlott/cli"
)

const shutdownTimeout = 10 * time.Second

// ServerConfig holds the components served by RunServer
type ServerConfig struct {
	Config      *config.Config
	APIHandler  *api.Handler
	EventServer *events.Server
	MCPServer   *mcp.Server
	Pool        *worker.WorkerPool
}

// NewServerConfig wires the calculator into every transport
func NewServerConfig(cfg *config.Config) *ServerConfig {
	src := netcalc.DefaultSource()
	if cfg.Seed != 0 {
		src = netcalc.NewSeededSource(cfg.Seed)
		log.Warn("Using seeded random source, results are reproducible", "seed", cfg.Seed)
	}
	calc := netcalc.NewCalculator(netcalc.WithSource(src))

	pool := worker.NewWorkerPool(cfg.Workers, cfg.QueueSize)

	return &ServerConfig{
		Config:     cfg,
		APIHandler: api.NewHandler(calc),
		EventServer: events.NewServer(calc, pool, events.Options{
			ReadLimit:   cfg.ReadLimit,
			CheckOrigin: cfg.AllowsOrigin,
		}),
		MCPServer: mcp.NewServer(calc, cfg.MCPAuthToken),
		Pool:      pool,
	}
}

// Handler builds the routed and middleware-wrapped HTTP handler
func (s *ServerConfig) Handler() http.Handler {
	mux := http.NewServeMux()

	s.APIHandler.RegisterRoutes(mux)
	mux.Handle("GET "+api.EventsPath, s.EventServer)
	mux.HandleFunc("/mcp", s.MCPServer.GetHTTPHandler())

	var handler http.Handler = mux
	if s.Config.IsAPIAuthEnabled() {
		handler = api.AuthMiddleware(s.Config.APIAuthToken, handler)
	}
	handler = api.SecurityHeadersMiddleware(handler)
	handler = api.LoggingMiddleware(handler)
	handler = api.RequestIDMiddleware(handler)
	return handler
}

// RunServer serves until ctx is cancelled or a termination signal arrives
func RunServer(ctx context.Context, cfg *ServerConfig) error {
	cfg.Pool.Start()
	defer cfg.Pool.Stop()

	server := &http.Server{
		Addr:              cfg.Config.ListenAddr,
		Handler:           cfg.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Info("Starting devcalc server", "addr", cfg.Config.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.Config.ListenAddr+"/api/")
	log.Info("Events available", "url", "ws://localhost"+cfg.Config.ListenAddr+"/ws")
	log.Info("MCP available", "url", "http://localhost"+cfg.Config.ListenAddr+"/mcp")
	if cfg.Config.IsAPIAuthEnabled() {
		log.Info("API authentication enabled")
	}
	cfg.MCPServer.LogStartup()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	cfg.EventServer.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Graceful shutdown incomplete", "error", err)
	}

	log.Info("Server stopped")
	return nil
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the devcalc server",
		Description: "Start the HTTP server with REST API, websocket events, and MCP endpoints",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(cmd)
			log.Info("Configuration loaded", "config", cfg.String())

			return RunServer(ctx, NewServerConfig(cfg))
		},
	}
}
