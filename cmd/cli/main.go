// Package main provides the CLI tool for artwise.
// Uses Cobra for command parsing — Cobra is the standard Go CLI framework
// (used by kubectl, docker, hugo, and many others).
//
// Run with: go run ./cmd/cli analyze "Starry Night"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcoelho/artwise/internal/config"
	"github.com/mcoelho/artwise/internal/gateway"
	"github.com/mcoelho/artwise/internal/llm"
	"github.com/mcoelho/artwise/internal/model"
	"github.com/mcoelho/artwise/internal/service"
	"github.com/mcoelho/artwise/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd creates the root command. Cobra builds a tree of commands:
// artwise analyze "Guernica"
// artwise recent -n 5
// artwise stats
func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "artwise",
		Short: "Artwork interpretation CLI tools",
	}

	root.AddCommand(analyzeCmd())
	root.AddCommand(recentCmd())
	root.AddCommand(statsCmd())
	return root
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <artwork name>",
		Short: "Interpret an artwork by name",
		Args:  cobra.MinimumNArgs(1),
		// RunE returns an error (vs Run which doesn't). Cobra prints the error automatically.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(strings.Join(args, " "))
		},
	}
}

func recentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecent(limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of analyses to show")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show gallery statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func runAnalyze(name string) error {
	cfg, logger, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

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

	svc := service.NewAnalysisService(
		analysisRepo,
		gw,
		images,
		cfg.Upload.MaxFileSize,
		cfg.Upload.AllowedTypes,
		logger,
	)

	// Ctrl+C cancels the in-flight inference call instead of killing the process hard.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("cancelling analysis...")
		cancel()
	}()

	result, err := svc.AnalyzeByName(ctx, name)
	if err != nil {
		return fmt.Errorf("analyzing %q: %w", name, err)
	}

	printAnalysis(result.Analysis, result.Cached)
	return nil
}

func runRecent(limit int) error {
	_, _, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	repo := storage.NewAnalysisRepository(db)
	analyses, err := repo.ListRecent(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("listing recent analyses: %w", err)
	}

	if len(analyses) == 0 {
		fmt.Println("No analyses yet.")
		return nil
	}

	for _, a := range analyses {
		artist := "Unknown"
		if a.Artist != nil {
			artist = *a.Artist
		}
		fmt.Printf("%s  %-40s  %s\n", a.CreatedAt.Format("2006-01-02 15:04"), a.ArtworkName, artist)
	}
	return nil
}

func runStats() error {
	_, _, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	repo := storage.NewAnalysisRepository(db)
	stats, err := repo.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	fmt.Printf("Total analyses:    %d\n", stats.TotalAnalyses)
	fmt.Printf("From images:       %d\n", stats.FromImages)
	fmt.Printf("Distinct artists:  %d\n", stats.DistinctArtists)
	fmt.Printf("Avg processing:    %.2fs\n", stats.AvgProcessing)
	return nil
}

// bootstrap loads config, the logger, and the database — the shared setup
// every subcommand needs. The returned cleanup closes everything.
func bootstrap() (*config.Config, *zap.Logger, *sqlx.DB, func(), error) {
	configPath := os.Getenv("ARTWISE_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	// Always use development mode for CLI output.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	cleanup := func() {
		db.Close()
		_ = logger.Sync()
	}
	return cfg, logger, db, cleanup, nil
}

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

func printAnalysis(a *model.Analysis, cached bool) {
	source := "generated"
	if cached {
		source = "cached"
	}
	fmt.Printf("\n%s (%s)\n", a.ArtworkName, source)
	if a.Artist != nil {
		fmt.Printf("Artist: %s", *a.Artist)
		if a.Year != nil {
			fmt.Printf(" (%s)", *a.Year)
		}
		fmt.Println()
	}
	if a.Style != nil {
		fmt.Printf("Style:  %s\n", *a.Style)
	}
	if len(a.Emotions) > 0 {
		fmt.Printf("Evokes: %s\n", strings.Join(a.Emotions, ", "))
	}
	fmt.Printf("\n%s\n", a.Interpretation)
}
