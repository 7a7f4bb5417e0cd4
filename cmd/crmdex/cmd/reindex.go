package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/crmdex/internal/output"
)

func newReindexCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the vector index from the source",
		Long: `Rebuild the index end to end: load every entity type from the
source, normalize and embed the records, build a fresh generation, and
publish it. Types fail independently; the summary reports each one.

Examples:
  crmdex reindex --data export.json
  crmdex reindex --data export.json --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			out := output.New(cmd.OutOrStdout())
			summary, err := svc.TriggerReindex(cmd.Context())
			if summary != nil {
				if jsonOutput {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(summary)
				}
				out.ReindexSummary(summary)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the job summary as JSON")

	return cmd
}
