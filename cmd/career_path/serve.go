package main

import (
	"context"
	"fmt"

	"github.com/jonathan/career-path/internal/ingestion"
	"github.com/jonathan/career-path/internal/progress"
	"github.com/jonathan/career-path/internal/server"
	"github.com/jonathan/career-path/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for roadmap generation, progress
tracking, career path comparison and learning effort estimation.

Without a usable API key the server still starts; generation requests fail with 500
and /health reports degraded.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps := server.Deps{
		Tracker:  progress.NewTracker(),
		Limiter:  ratelimit.NewLimiter(ratelimit.LoadConfig(cfg.RateLimitPerMinute, cfg.RateLimitPerHour)),
		FetchJob: ingestion.NewFetcher(nil).FetchJobDescription,
		Logger:   logger,
	}

	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("workflow not initialized: %v", err)
	} else {
		defer b.Close()
		deps.Runner = b.runner
		deps.Cache = b.cache
		deps.Backend = b.client

		cleanupCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		b.cache.StartCleanup(cleanupCtx, 0)
	}

	srv, err := server.New(server.Config{
		Addr:             cfg.Addr(),
		AllowedOrigins:   cfg.AllowedOrigins,
		WorkflowTimeout:  cfg.WorkflowTimeout(),
		APIKeyConfigured: cfg.APIKey != "",
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
