package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score commands",
	}

	cmd.AddCommand(newScoreSubmitCmd())

	return cmd
}

type submitScoreBody struct {
	GameID       string          `json:"game_id"`
	Score        int             `json:"score"`
	PlayTime     int             `json:"play_time"`
	GameplayData json.RawMessage `json:"gameplay_data,omitempty"`
	SessionID    string          `json:"session_id,omitempty"`
}

func newScoreSubmitCmd() *cobra.Command {
	var (
		body submitScoreBody
		data string
	)

	cmd := &cobra.Command{
		Use:   "submit <game-id>",
		Short: "Submit a finished play",
		Example: `  arcade score submit egg-catch --score 420 --play-time 95
  arcade score submit egg-catch --score 420 --play-time 95 --session <id> --data '{"eggs":42}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body.GameID = args[0]
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data must be valid JSON")
				}
				body.GameplayData = json.RawMessage(data)
			}

			var result ScoreResult
			if err := client.Post(cmd.Context(), "/api/v1/scores", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&body.Score, "score", 0, "Final score")
	cmd.Flags().IntVar(&body.PlayTime, "play-time", 0, "Play time in seconds")
	cmd.Flags().StringVar(&body.SessionID, "session", "", "Session ID returned by 'session start'")
	cmd.Flags().StringVar(&data, "data", "", "Gameplay data as a JSON document")
	_ = cmd.MarkFlagRequired("score")
	_ = cmd.MarkFlagRequired("play-time")

	return cmd
}
