// Package main is the entry point for the artwise HTTP server.
// In Go, the `main` package with a `main()` function is what gets executed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mcoelho/artwise/internal/config"
	"github.com/mcoelho/artwise/internal/gateway"
	"github.com/mcoelho/artwise/internal/llm"
	"github.com/mcoelho/artwise/internal/server"
	"github.com/mcoelho/artwise/internal/service"
	"github.com/mcoelho/artwise/internal/storage"
)

func main() {
	// os.Exit ensures the process exits with a non-zero code on failure.
	// We call run() separately so deferred cleanup functions execute properly
	// (deferred functions don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("ARTWISE_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up structured logging with zap.
	// zap outputs JSON in production and human-readable format in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync flushes buffered log entries. We intentionally ignore the error
	// here because Sync commonly fails on stdout/stderr (not a real problem).
	defer func() { _ = logger.Sync() }()

	// All long-lived handles — the store connection, the inference clients —
	// are constructed here, once, and shared. Nothing is rebuilt per request.
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	analysisRepo := storage.NewAnalysisRepository(db)
	callRepo := storage.NewLLMCallRepository(db)

	clients, err := buildClients(cfg)
	if err != nil {
		return err
	}

	gw := gateway.New(
		clients,
		cfg.Inference.RatePerMinute,
		time.Duration(cfg.Inference.TimeoutSeconds)*time.Second,
		callRepo,
		logger,
	)

	var images service.ImageFinder
	if cfg.Enrichment.Enabled {
		images = service.NewWikiImageFinder(
			time.Duration(cfg.Enrichment.ProbeTimeoutSeconds)*time.Second,
			logger,
		)
	}

	analysisService := service.NewAnalysisService(
		analysisRepo,
		gw,
		images,
		cfg.Upload.MaxFileSize,
		cfg.Upload.AllowedTypes,
		logger,
	)

	srv := server.New(cfg, server.Deps{
		DB:              db,
		AnalysisRepo:    analysisRepo,
		AnalysisService: analysisService,
	}, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Block until we receive a signal or the server errors out.
	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// buildClients assembles the inference clients in configured priority order.
// Providers without an API key are skipped; at least one must be usable.
func buildClients(cfg *config.Config) ([]llm.Client, error) {
	var clients []llm.Client
	for _, name := range cfg.Inference.ProviderOrder {
		switch name {
		case "groq", "openai":
			if cfg.Inference.Groq.APIKey == "" {
				continue
			}
			clients = append(clients, llm.NewOpenAIClient(
				name,
				cfg.Inference.Groq.APIKey,
				cfg.Inference.Groq.BaseURL,
				cfg.Inference.Groq.TextModel,
				cfg.Inference.Groq.VisionModel,
				cfg.Inference.Groq.MaxTokens,
				cfg.Inference.Groq.Temperature,
			))
		case "anthropic":
			if cfg.Inference.Anthropic.APIKey == "" {
				continue
			}
			clients = append(clients, llm.NewAnthropicClient(
				cfg.Inference.Anthropic.APIKey,
				cfg.Inference.Anthropic.Model,
				cfg.Inference.Anthropic.MaxTokens,
			))
		default:
			return nil, fmt.Errorf("unknown inference provider %q", name)
		}
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no inference provider configured: set an API key for one of %v", cfg.Inference.ProviderOrder)
	}
	return clients, nil
}
