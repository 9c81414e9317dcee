package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var (
		period string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "leaderboard <game-id>",
		Short: "Show a game's leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if period != "" {
				query.Set("period", period)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			path := gamePath(args[0], "leaderboard")
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var result Leaderboard
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Time window: today, week, month, alltime")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (1-200, server default 50)")

	return cmd
}

func newMyScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "my-score <game-id>",
		Short: "Show your best score and rank for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MyScore

			if err := client.Get(cmd.Context(), gamePath(args[0], "my-score"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <game-id>",
		Short: "Show your statistics for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats

			if err := client.Get(cmd.Context(), gamePath(args[0], "stats"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
