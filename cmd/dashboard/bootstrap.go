package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"smc-dashboard/internal/api"
	"smc-dashboard/internal/interfaces"
	"smc-dashboard/internal/logger"
	"smc-dashboard/internal/scan"
	"smc-dashboard/internal/scan/scanobs"
	"smc-dashboard/internal/store"
	"smc-dashboard/internal/submit"
	"smc-dashboard/internal/submit/submitobs"
	"smc-dashboard/internal/trace"
)

// initializeSystem initializes logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("DASHBOARD_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeClient builds the shared API client for the backend endpoints
func initializeClient(cfg *store.Config) *api.Client {
	return api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second),
		api.WithLogging(true),
	)
}

// initializeFetcher builds the scan fetcher with observability
func initializeFetcher(ctx context.Context, cfg *store.Config, client *api.Client) interfaces.Fetcher {
	logger.Info(ctx, "Polling scan endpoint",
		"base_url", cfg.BaseURL,
		"path", cfg.ScanPath,
		"poll_seconds", cfg.PollSeconds,
	)
	return scanobs.Wrap(scan.NewFetcher(client, cfg.ScanPath))
}

// initializeSubmitter builds the order submitter with observability.
// Confirmation is handled by the web surface's confirm round-trip, so the
// submitter's own confirmer always approves.
func initializeSubmitter(cfg *store.Config, client *api.Client) interfaces.Submitter {
	return submitobs.Wrap(submit.New(client, cfg.ExecutePath, submit.Confirmed()))
}
