package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tubecron/internal/config"
	"tubecron/internal/library"
	"tubecron/internal/summarize"
)

type llmCheckView struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut  bool
		checkLLM bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show item counts by stage and state database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var check *llmCheckView
			if checkLLM {
				check = runLLMCheck(cmd.Context(), cfg)
			}

			err = ctx.withStore(func(store *library.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					view := map[string]any{
						"stats":  stats,
						"health": health,
					}
					if check != nil {
						view["llm"] = check
					}
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Awaiting transcript", strconv.Itoa(stats.Discovered)},
					{"Awaiting summary", strconv.Itoa(stats.Transcribed)},
					{"Published", strconv.Itoa(stats.Published)},
					{"Total", strconv.Itoa(stats.Total)},
					{"With errors", strconv.Itoa(stats.Failing)},
					{"Permanent errors", strconv.Itoa(stats.Permanent)},
				}
				fmt.Fprintln(out, renderTable([]string{"Stage", "Items"}, rows, 1))
				fmt.Fprintf(out, "Database: %s\n", health.DBPath)
				fmt.Fprintf(out, "Schema version: %s\n", health.SchemaVersion)
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
				if len(health.MissingColumns) > 0 {
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(health.MissingColumns, ", "))
				}
				if health.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", health.Error)
				}
				if check != nil {
					if check.OK {
						fmt.Fprintf(out, "LLM check (%s/%s): ok\n", check.Provider, check.Model)
					} else {
						fmt.Fprintf(out, "LLM check (%s/%s): failed: %s\n", check.Provider, check.Model, check.Error)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if check != nil && !check.OK {
				return fmt.Errorf("llm check failed: %s", check.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print status as JSON")
	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Send a test prompt to the configured summarization provider")
	return cmd
}

// runLLMCheck pings the configured provider within its request timeout.
func runLLMCheck(ctx context.Context, cfg *config.Config) *llmCheckView {
	settings := cfg.GetLLM()
	view := &llmCheckView{Provider: settings.Provider, Model: settings.Model}

	summarizer, err := summarize.New(settings)
	if err != nil {
		view.Error = err.Error()
		return view
	}
	timeout := time.Duration(settings.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := summarizer.HealthCheck(checkCtx); err != nil {
		view.Error = err.Error()
		return view
	}
	view.OK = true
	return view
}
