package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "groupkeeper-backend/internal/api/http"
	"groupkeeper-backend/internal/app"
	"groupkeeper-backend/internal/config"
	"groupkeeper-backend/internal/jobs"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/scheduler"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.SetAuditChannel(cfg.Audit.ChannelID)
	logger.Info("Starting GroupKeeper Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Platform configuration", "group_id", cfg.Platform.GroupID, "requests_per_second", cfg.Platform.RequestsPerSecond)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store, platform client and services
	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	// Startup session check. An invalid session is logged, not fatal.
	checkCtx, cancel := context.WithTimeout(ctx, cfg.PlatformTimeout())
	if user, err := a.Session.Check(checkCtx); err == nil {
		logger.Info("Platform session valid", "account", user.Name)
	}
	cancel()

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(&jobs.Services{Session: a.Session, Keys: a.Keys}, a.Metrics, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// Set up HTTP server
	handler := httpapi.NewHandler(a.Keys, a.Redemption, a.Membership, a.Session)
	router := httpapi.NewRouter(handler, a.Tokens, a.Registry)
	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
