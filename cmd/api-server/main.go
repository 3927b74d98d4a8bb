package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shamanic-technologies/lifecycle-emails/internal/api"
	"github.com/shamanic-technologies/lifecycle-emails/internal/clerk"
	"github.com/shamanic-technologies/lifecycle-emails/internal/config"
	"github.com/shamanic-technologies/lifecycle-emails/internal/dedup"
	"github.com/shamanic-technologies/lifecycle-emails/internal/gateway"
	"github.com/shamanic-technologies/lifecycle-emails/internal/ledger"
	"github.com/shamanic-technologies/lifecycle-emails/internal/logger"
	"github.com/shamanic-technologies/lifecycle-emails/internal/runs"
	"github.com/shamanic-technologies/lifecycle-emails/internal/send"
	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
	"github.com/shamanic-technologies/lifecycle-emails/internal/template"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewFromConfig(logger.Config{
		Level:     cfg.Logging.Level,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	log.Info().Msg("starting lifecycle-emails API server")

	// Connect to database
	ctx := context.Background()
	db, err := storage.NewDB(ctx, cfg.Database.URL, storage.PoolConfig{
		MinConns:       cfg.Database.PoolMin,
		MaxConns:       cfg.Database.PoolMax,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("database connection established")

	queries := storage.New(db.Pool)

	// Recipient directory
	directory := clerk.NewClient(clerk.Config{
		SecretKey: cfg.Clerk.SecretKey,
		BaseURL:   cfg.Clerk.BaseURL,
		Timeout:   cfg.Clerk.Timeout,
	})
	if cfg.Clerk.SecretKey == "" {
		log.Warn().Msg("Clerk secret key is not set; user and organization lookups will fail")
	}

	// Mail gateway. Without a Postmark key, deliveries go to stdout for
	// local development.
	var sender gateway.Sender
	if cfg.Postmark.APIKey != "" {
		sender = gateway.NewPostmark(gateway.PostmarkConfig{
			ServiceURL:  cfg.Postmark.ServiceURL,
			APIKey:      cfg.Postmark.APIKey,
			FromAddress: cfg.Postmark.FromAddress,
			BCCAddress:  cfg.Postmark.BCCAddress,
			Timeout:     cfg.Postmark.Timeout,
		})
	} else {
		sender = gateway.NewStdout()
		log.Warn().Msg("Postmark API key is not set; emails will be printed to stdout")
	}

	// Run tracking is optional; without a base URL it is a no-op.
	var tracker runs.Tracker = runs.Noop{}
	if cfg.Runs.BaseURL != "" {
		tracker = runs.NewClient(runs.Config{
			BaseURL: cfg.Runs.BaseURL,
			APIKey:  cfg.Runs.APIKey,
			Timeout: cfg.Runs.Timeout,
		})
	}

	resolver := template.NewResolver(queries)
	ledg := ledger.New(queries, log)
	service := send.NewService(directory, resolver, ledg, sender, tracker, send.Config{
		Policy:      dedup.DefaultPolicy(),
		AdminEvents: cfg.Send.AdminEvents,
		AdminEmail:  cfg.Send.AdminEmail,
	}, log)

	router := api.NewRouter(service, resolver, queries, cfg.Auth.APIKey, log)

	// Configure HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down server")

	// Graceful shutdown with 30-second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
