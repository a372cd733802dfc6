package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge-core/internal/adapters/demoembed"
	"github.com/paperforge/paperforge-core/internal/model"
)

func newIngestDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest-demo",
		Short: "Print the bundled demo citation network every other subcommand queries",
		Long: `ingest-demo seeds the same in-memory corpus the other subcommands seed
at startup and prints what it contains. It exists to let a user inspect
the demo data without running a search first; there is no ingestion
pipeline or persistence in this core, so this is the closest thing to one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestDemo(cmd.Context(), cmd)
		},
	}
	return cmd
}

func runIngestDemo(ctx context.Context, cmd *cobra.Command) error {
	_, summary, err := seedDemoCorpus(ctx, demoembed.New())
	if err != nil {
		return fmt.Errorf("seeding demo corpus: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded %d papers, %d chunks, %d citation edges under tenant %s\n\n",
		summary.Papers, summary.Chunks, summary.Citations, demoTenant)

	for _, dp := range demoPapers {
		fmt.Fprintf(out, "- %s (%s)\n", dp.title, dp.published)
		for _, c := range dp.cites {
			if cited, err := resolveSeedPaper(c); err == nil {
				fmt.Fprintf(out, "    cites %s\n", titleFor(cited))
			}
		}
	}
	return nil
}

func titleFor(id model.PaperID) string {
	s := id.String()
	for _, dp := range demoPapers {
		if dp.id == s {
			return dp.title
		}
	}
	return s
}
