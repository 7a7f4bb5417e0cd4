package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/crmdex/internal/output"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index generation stats",
		Long: `Build the index from the source and report the published
generation: entity count, dimension, index kind, model, build time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			out := output.New(cmd.OutOrStdout())
			if _, err := svc.TriggerReindex(cmd.Context()); err != nil {
				return err
			}

			stats := svc.Stats()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			out.IndexStats(stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output stats as JSON")

	return cmd
}
