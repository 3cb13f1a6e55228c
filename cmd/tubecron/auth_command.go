package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tubecron/internal/youtube"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage YouTube authorization",
	}
	authCmd.AddCommand(newAuthLoginCommand(ctx))
	return authCmd
}

func newAuthLoginCommand(ctx *commandContext) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize read-only access to your liked videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			auth, err := youtube.NewAuth(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			code = strings.TrimSpace(code)
			if code == "" {
				fmt.Fprintln(out, "Open this URL in a browser and approve access:")
				fmt.Fprintln(out, auth.AuthCodeURL(uuid.NewString()))
				fmt.Fprintln(out, "")
				fmt.Fprint(out, "Paste the code parameter from the redirect URL: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return fmt.Errorf("read authorization code: %w", err)
				}
				code = strings.TrimSpace(line)
			}

			if _, err := auth.Exchange(cmd.Context(), code); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved token to %s\n", cfg.Paths.TokenFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code (skips the interactive prompt)")
	return cmd
}
