package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tubecron/internal/library"
)

type itemView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Stage         string `json:"stage"`
	DiscoveredAt  string `json:"discovered_at"`
	TranscriptRef string `json:"transcript_ref,omitempty"`
	NoteRef       string `json:"note_ref,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	FailureCount  int    `json:"failure_count,omitempty"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List discovered videos and their stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *library.Store) error {
				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				views := make([]itemView, 0, len(items))
				for _, item := range items {
					views = append(views, toItemView(item))
				}
				if jsonOut {
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintln(out, "No videos discovered yet")
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{v.ID, truncate(v.Title, 48), v.Stage, v.DiscoveredAt, truncate(v.LastError, 40)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Stage", "Discovered", "Last Error"},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print items as JSON")
	return cmd
}

func toItemView(item *library.Item) itemView {
	view := itemView{
		ID:            item.ID,
		Title:         item.Title,
		Stage:         string(item.Stage()),
		TranscriptRef: item.TranscriptRef,
		NoteRef:       item.NoteRef,
		LastError:     item.LastError,
		FailureCount:  item.FailureCount,
	}
	if !item.DiscoveredAt.IsZero() {
		view.DiscoveredAt = item.DiscoveredAt.Local().Format(time.DateTime)
	}
	return view
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
