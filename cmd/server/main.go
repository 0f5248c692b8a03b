package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mandjevant/noteboard/internal/auth"
	"github.com/mandjevant/noteboard/internal/config"
	"github.com/mandjevant/noteboard/internal/logging"
	"github.com/mandjevant/noteboard/internal/store/postgres"
	"github.com/mandjevant/noteboard/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Connect to database; migrations run as part of startup
	st, err := postgres.New(ctx, cfg.Database.URL, postgres.Options{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	authSvc := auth.NewService(st, slog.Default(), auth.Config{
		BcryptCost:  cfg.Auth.BcryptCost,
		SessionTTL:  cfg.Auth.SessionTTL,
		RecoveryTTL: cfg.Auth.RecoveryTTL,
	})

	// Bootstrap the initial superuser account
	if err := authSvc.EnsureSuperuser(ctx, cfg.Auth.SuperuserEmail, cfg.Auth.SuperuserPassword); err != nil {
		slog.Error("failed to ensure superuser", "error", err)
		os.Exit(1)
	}

	server, err := web.NewServer(st, authSvc, cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go authSvc.StartPurgeScheduler(jobCtx, cfg.Auth.SessionPurgeInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
