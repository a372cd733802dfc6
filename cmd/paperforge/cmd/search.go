package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge-core/internal/engine"
	"github.com/paperforge/paperforge-core/internal/retrieval"
)

type searchOptions struct {
	mode     string
	limit    int
	minScore float64
	jsonOut  bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run vector, lexical, or hybrid search over the demo corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runWithSignalHandling(func(ctx context.Context) error {
				return runSearch(ctx, cmd, query, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "hybrid", "Retrieval mode: vector, lexical, hybrid")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Minimum score to include a result")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")

	return cmd
}

func parseMode(s string) (retrieval.Mode, error) {
	switch strings.ToLower(s) {
	case "vector":
		return retrieval.ModeVector, nil
	case "lexical":
		return retrieval.ModeLexical, nil
	case "hybrid":
		return retrieval.ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want vector, lexical, or hybrid)", s)
	}
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	mode, err := parseMode(opts.mode)
	if err != nil {
		return err
	}

	eng, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.Search(ctx, engine.SearchRequest{
		Tenant:   demoTenant,
		Query:    query,
		Mode:     mode,
		Limit:    opts.limit,
		MinScore: opts.minScore,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.Degraded {
		fmt.Fprintln(out, "(degraded: one retrieval path failed, showing partial results)")
	}
	fmt.Fprintf(out, "Found %d results for %q in %dms:\n\n", len(resp.Results), query, resp.QueryTimeMS)
	for i, r := range resp.Results {
		fmt.Fprintf(out, "%d. %s (score: %.3f, source: %s)\n", i+1, r.PaperTitle, r.Score, r.Source)
		fmt.Fprintf(out, "   %s\n\n", firstLine(r.Content))
	}
	return nil
}

func firstLine(s string) string {
	if len(s) > 160 {
		return s[:160] + "..."
	}
	return s
}
