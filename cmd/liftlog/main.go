package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/goals"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/readiness"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/IBM/pgxpoolprometheus"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	loc, err := cfg.Analytics.Location()
	if err != nil {
		log.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Analytics engines
	evaluator := records.NewEvaluator(db, log)
	generator := summary.NewGenerator(db, log, loc, cfg.Analytics.Formula())
	scorer := readiness.NewScorer(db, log, loc)
	engine := goals.NewEngine(db, log, loc)
	pipeline := ingest.NewPipeline(db, evaluator, scorer, log)
	alphaProvider := alpha.NewProvider(pipeline, db, log, loc)

	var m *metrics.Manager
	pgxpoolCollector := pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": cfg.Database.Name})
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	if cfg.Metrics.Enabled {
		m = metrics.NewManager("liftlog", "server", promRegistry)
	}

	srv := server.New(server.Services{
		Records:   evaluator,
		Summaries: generator,
		Readiness: scorer,
		Goals:     engine,
		Workouts:  pipeline,
		Alpha:     alphaProvider,
		Store:     db,
	}, cfg.Auth.APIKey, m, log)

	if cfg.Metrics.Enabled {
		srv.Mount(cfg.Metrics.Path, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
		log.Info("metrics enabled", "path", cfg.Metrics.Path)
	}

	if cfg.MCP.Enabled {
		mcpSrv := mcp.New(&mcp.Local{
			Records:   evaluator,
			Summaries: generator,
			Scorer:    scorer,
			Engine:    engine,
			DB:        db,
		}, Version, log)
		srv.MountIdentified("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithHTTPContextFunc(server.MCPContext),
		))
		log.Info("mcp enabled", "path", "/mcp")
	}

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
