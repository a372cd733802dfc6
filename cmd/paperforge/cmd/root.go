// Package cmd provides the CLI commands for paperforge.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdk "github.com/openai/openai-go/v3"
	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge-core/internal/adapters/anthropic"
	"github.com/paperforge/paperforge-core/internal/adapters/demoembed"
	"github.com/paperforge/paperforge-core/internal/adapters/openaiembed"
	"github.com/paperforge/paperforge-core/internal/config"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/engine"
)

// NewRootCmd creates the root command for the paperforge CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paperforge",
		Short: "Query the PaperForge retrieval and context-intelligence pipeline",
		Long: `paperforge runs hybrid search, citation-graph authority ranking, and
multi-hop reasoning over a small bundled citation network.

There is no ingestion or persistence layer in this core: every subcommand
seeds the same demo corpus in-process before running. Set OPENAI_API_KEY
and ANTHROPIC_API_KEY to exercise the real embedding and synthesis
providers; without them the CLI falls back to a deterministic local
embedder and skips synthesis.`,
	}

	root.AddCommand(newSearchCmd())
	root.AddCommand(newIntelligentSearchCmd())
	root.AddCommand(newCitationsCmd())
	root.AddCommand(newAuthoritiesCmd())
	root.AddCommand(newIngestDemoCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// runWithSignalHandling runs fn with a context that is canceled on
// SIGINT/SIGTERM, giving it up to 10 seconds to wind down afterward.
// Subcommands use this when they hold background goroutines (the query and
// embedding caches' janitors) that need a clean stop.
func runWithSignalHandling(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- fn(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		select {
		case err := <-errCh:
			return err
		case <-time.After(10 * time.Second):
			return fmt.Errorf("timed out waiting for shutdown")
		}
	}
}

// buildEngine loads configuration, seeds the demo corpus, and wires an
// Engine with the best available embedder and LLM. It returns the
// demo corpus summary alongside the engine so callers can report what they
// queried against.
func buildEngine(ctx context.Context) (*engine.Engine, demoCorpusSummary, error) {
	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var embedder corpus.Embedder
	if cfg.EmbeddingAPIKey != "" {
		const openAIEmbeddingDimension = 1536 // text-embedding-3-small's native width
		embedder = openaiembed.New(cfg.EmbeddingAPIKey, "", sdk.EmbeddingModel(cfg.EmbeddingModel), openAIEmbeddingDimension)
	} else {
		embedder = demoembed.New()
	}

	var llm corpus.LLM
	if cfg.LLMAPIKey != "" {
		llm = anthropic.New(cfg.LLMAPIKey, cfg.LLMModel)
	}

	store, summary, err := seedDemoCorpus(ctx, embedder)
	if err != nil {
		return nil, demoCorpusSummary{}, fmt.Errorf("seeding demo corpus: %w", err)
	}

	eng, err := engine.New(cfg, store, embedder, llm, log)
	if err != nil {
		return nil, demoCorpusSummary{}, fmt.Errorf("building engine: %w", err)
	}

	return eng, summary, nil
}
