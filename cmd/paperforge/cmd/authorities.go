package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type authoritiesOptions struct {
	limit   int
	jsonOut bool
}

func newAuthoritiesCmd() *cobra.Command {
	var opts authoritiesOptions

	cmd := &cobra.Command{
		Use:   "authorities",
		Short: "Rank papers by PageRank authority over the citation graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSignalHandling(func(ctx context.Context) error {
				return runAuthorities(ctx, cmd, opts)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of papers to return")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")

	return cmd
}

func runAuthorities(ctx context.Context, cmd *cobra.Command, opts authoritiesOptions) error {
	eng, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	papers, err := eng.Authorities(ctx, demoTenant, opts.limit)
	if err != nil {
		return fmt.Errorf("authorities failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	for i, p := range papers {
		fmt.Fprintf(out, "%d. %s (authority %.4f, cited by %d, references %d)\n",
			i+1, p.Title, p.AuthorityScore, p.CitationCount, p.ReferenceCount)
	}
	return nil
}
