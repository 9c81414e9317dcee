package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored bearer token",
		Long: `Tokens are issued by the platform's login service. Store one here so
later commands can act on your behalf.`,
	}

	cmd.AddCommand(newAuthSetTokenCmd())
	cmd.AddCommand(newAuthClearCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token <token>",
		Short: "Save a bearer token to the token file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SaveToken(strings.TrimSpace(args[0])); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Token saved to " + cfg.TokenFile)
			return nil
		},
	}
}

func newAuthClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Token cleared")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the saved token identifies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return errors.New("no token set; run 'arcade auth set-token <token>'")
			}
			info, err := InspectToken(cfg.Token)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Signed in as %s", info.Subject)
			if info.Username != "" {
				msg = fmt.Sprintf("Signed in as %s (%s)", info.Username, info.Subject)
			}
			if info.ExpiresAt != nil {
				if info.ExpiresAt.Before(time.Now()) {
					msg += ", token expired " + info.ExpiresAt.Format(time.RFC3339)
				} else {
					msg += ", token expires " + info.ExpiresAt.Format(time.RFC3339)
				}
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(msg)
			return nil
		},
	}
}
