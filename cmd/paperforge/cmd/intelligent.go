package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge-core/internal/engine"
)

type intelligentOptions struct {
	mode             string
	maxHops          int
	includeReasoning bool
	includeSynthesis bool
	limit            int
	jsonOut          bool
}

func newIntelligentSearchCmd() *cobra.Command {
	var opts intelligentOptions

	cmd := &cobra.Command{
		Use:   "intelligent-search <query>",
		Short: "Run query understanding plus standard/deep/synthesis processing",
		Long: `intelligent-search parses the query's intent and entities, then runs
one of four modes:

  quick      hybrid search only
  standard   hybrid search (default)
  deep       multi-hop reasoning, then a final hybrid search
  synthesis  hybrid search, context stitching, and an LLM-written answer

synthesis mode falls back to returning stitched context windows without an
answer if no ANTHROPIC_API_KEY is configured.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runWithSignalHandling(func(ctx context.Context) error {
				return runIntelligentSearch(ctx, cmd, query, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "standard", "Mode: quick, standard, deep, synthesis")
	cmd.Flags().IntVar(&opts.maxHops, "max-hops", 0, "Override the reasoner's max hops (deep mode only)")
	cmd.Flags().BoolVar(&opts.includeReasoning, "include-reasoning", true, "Include reasoning hops in the output (deep mode only)")
	cmd.Flags().BoolVar(&opts.includeSynthesis, "include-synthesis", true, "Include a synthesized answer (synthesis mode only)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results per search")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")

	return cmd
}

func parseIntelligentMode(s string) (engine.IntelligentMode, error) {
	switch strings.ToLower(s) {
	case "quick":
		return engine.ModeQuick, nil
	case "standard":
		return engine.ModeStandard, nil
	case "deep":
		return engine.ModeDeep, nil
	case "synthesis":
		return engine.ModeSynthesis, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want quick, standard, deep, or synthesis)", s)
	}
}

func runIntelligentSearch(ctx context.Context, cmd *cobra.Command, query string, opts intelligentOptions) error {
	mode, err := parseIntelligentMode(opts.mode)
	if err != nil {
		return err
	}

	eng, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.IntelligentSearch(ctx, engine.IntelligentSearchRequest{
		Tenant: demoTenant,
		Query:  query,
		Options: engine.IntelligentSearchOptions{
			Mode:             mode,
			MaxHops:          opts.maxHops,
			IncludeReasoning: opts.includeReasoning,
			IncludeSynthesis: opts.includeSynthesis,
			Limit:            opts.limit,
		},
	})
	if err != nil {
		return fmt.Errorf("intelligent search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintf(out, "Intent: %s (confidence %.2f)\n", resp.Understanding.Intent, resp.Understanding.Confidence)
	if len(resp.Understanding.Entities) > 0 {
		fmt.Fprint(out, "Entities:")
		for _, e := range resp.Understanding.Entities {
			fmt.Fprintf(out, " %s[%s]", e.Text, e.Type)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out)

	for i, hop := range resp.ReasoningHops {
		fmt.Fprintf(out, "Hop %d: %q -> %q (confidence %.2f)\n", i+1, hop.Query, hop.NextQuery, hop.Confidence)
		for _, f := range hop.Facts {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
	if len(resp.ReasoningHops) > 0 {
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Results (%d):\n", len(resp.Results))
	for i, r := range resp.Results {
		fmt.Fprintf(out, "%d. %s (score: %.3f)\n", i+1, r.PaperTitle, r.Score)
	}

	if len(resp.ContextWindows) > 0 {
		fmt.Fprintf(out, "\nContext windows (%d), cross-references (%d):\n", len(resp.ContextWindows), len(resp.CrossReferences))
		for i, w := range resp.ContextWindows {
			fmt.Fprintf(out, "%d. %s (%d tokens)\n", i+1, w.PaperTitle, w.TokenCount)
		}
	}

	switch {
	case resp.Synthesis != nil:
		fmt.Fprintf(out, "\nSynthesized answer (confidence %.2f):\n%s\n", resp.Synthesis.Confidence, resp.Synthesis.Text)
	case resp.SynthesisDegraded:
		fmt.Fprintln(out, "\n(synthesis unavailable: no ANTHROPIC_API_KEY configured or the LLM call failed)")
	}

	fmt.Fprintf(out, "\n(%dms)\n", resp.ProcessingTimeMS)
	return nil
}
