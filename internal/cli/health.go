package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const healthyStatus = "ok"

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the score service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return fmt.Errorf("server %s unreachable: %w", cfg.ServerURL, err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			if result.Status != healthyStatus {
				return fmt.Errorf("server %s reports status %q", cfg.ServerURL, result.Status)
			}
			return nil
		},
	}
}
