package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Game catalog commands",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesShowCmd())
	cmd.AddCommand(newGamesSetActiveCmd("activate", "Make a game playable (admin)", true))
	cmd.AddCommand(newGamesSetActiveCmd("deactivate", "Hide a game from play (admin)", false))

	return cmd
}

func newGamesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameList

			if err := client.Get(cmd.Context(), "/api/v1/games", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <game-id>",
		Short: "Show a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			if err := client.Get(cmd.Context(), gamePath(args[0], ""), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamesSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <game-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]bool{"active": active}
			var result Game

			if err := client.Put(cmd.Context(), gamePath(args[0], "active"), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

// gamePath builds /api/v1/games/{id}[/suffix] with the ID escaped
func gamePath(gameID, suffix string) string {
	p := "/api/v1/games/" + url.PathEscape(gameID)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}
