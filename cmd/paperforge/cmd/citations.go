package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge-core/internal/citation"
	"github.com/paperforge/paperforge-core/internal/engine"
	"github.com/paperforge/paperforge-core/internal/model"
)

type citationsOptions struct {
	direction string
	maxHops   int
	limit     int
	jsonOut   bool
}

func newCitationsCmd() *cobra.Command {
	var opts citationsOptions

	cmd := &cobra.Command{
		Use:   "citations <seed paper title or UUID> [more seeds...]",
		Short: "Traverse the citation graph from one or more seed papers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSignalHandling(func(ctx context.Context) error {
				return runCitations(ctx, cmd, args, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "both", "Traversal direction: forward (references), backward (citations), both")
	cmd.Flags().IntVar(&opts.maxHops, "max-hops", 2, "Maximum hop distance from any seed")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Maximum number of papers to return")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")

	return cmd
}

func parseDirection(s string) (citation.Direction, error) {
	switch strings.ToLower(s) {
	case "forward":
		return citation.Forward, nil
	case "backward":
		return citation.Backward, nil
	case "both":
		return citation.Both, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want forward, backward, or both)", s)
	}
}

func runCitations(ctx context.Context, cmd *cobra.Command, seeds []string, opts citationsOptions) error {
	direction, err := parseDirection(opts.direction)
	if err != nil {
		return err
	}

	seedIDs := make([]model.PaperID, len(seeds))
	for i, s := range seeds {
		id, err := resolveSeedPaper(s)
		if err != nil {
			return err
		}
		seedIDs[i] = id
	}

	eng, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.CitationTraversal(ctx, engine.CitationTraversalRequest{
		Tenant:     demoTenant,
		SeedPapers: seedIDs,
		Direction:  direction,
		MaxHops:    opts.maxHops,
		Limit:      opts.limit,
	})
	if err != nil {
		return fmt.Errorf("citation traversal failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintf(out, "Reached %d papers via %d edges:\n\n", len(resp.Papers), len(resp.Edges))
	for i, p := range resp.Papers {
		fmt.Fprintf(out, "%d. %s (hop %d, authority %.4f)\n", i+1, p.Title, p.HopDistance, p.AuthorityScore)
	}
	return nil
}
