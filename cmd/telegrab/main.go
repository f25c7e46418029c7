package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegrab/internal/config"
	"telegrab/internal/constants"
	"telegrab/internal/database"
	"telegrab/internal/retry"
	"telegrab/internal/service"
	"telegrab/internal/tracing"
	"telegrab/pkg/fetcher"
	"telegrab/pkg/telegram"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("telegrab %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting telegrab")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	tracingManager := tracing.NewManager(cfg.Tracing, Version, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Initialize database with exponential backoff retry
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  cfg.Retry.MaxAttempts,
		Jitter:       true,
	})
	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize database: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database after retries: %w", err)
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.Fetcher.StagingDir, 0750); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	client, err := telegram.NewClient(cfg.Telegram.Token, logger)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}

	mediaFetcher := fetcher.NewYtDlpFetcher(cfg.Fetcher, logger)
	cache := service.NewCacheGateway(db, logger)
	validator := service.NewValidator(cfg.Limits)
	limiter := service.NewChatLimiter()

	pipeline := service.NewPipeline(mediaFetcher, client, cache, validator, limiter, cfg.Telegram.ViaLink, logger)
	listener := service.NewUpdateListener(client, pipeline, cfg.Telegram, Version, logger)
	scheduler := service.NewScheduler(cache, cfg.Cache.TTLDays, cfg.Cache.SweepIntervalHrs, logger)

	go scheduler.Start(ctx)
	defer scheduler.Stop()

	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("failed to start update listener: %w", err)
	}

	server := NewServer(cfg.Server.Port, db, Version, logger)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("ops server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultGracefulShutdownSec*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Ops server shutdown error: %v", err)
	}

	listener.Wait()
	logger.Info("Shutdown complete")
	return nil
}
