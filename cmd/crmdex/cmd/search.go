package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/crmdex/internal/output"
)

func newSearchCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank entities by semantic similarity to a query",
		Long: `Build the index from the source, then rank entities against the
query text. Results are ordered by descending cosine similarity.

Examples:
  crmdex search "enterprise renewal" --data export.json
  crmdex search "manufacturing companies in Berlin" --data export.json -n 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			svc, cfg, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			out := output.New(cmd.OutOrStdout())
			k := limit
			if k <= 0 {
				k = cfg.Search.DefaultK
			}
			if k > cfg.Search.MaxK {
				k = cfg.Search.MaxK
			}

			// The index is in-memory: build it before querying
			summary, err := svc.TriggerReindex(cmd.Context())
			if err != nil {
				if summary != nil {
					out.ReindexSummary(summary)
				}
				return err
			}

			results, err := svc.Search(cmd.Context(), query, k)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			out.SearchResults(results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
