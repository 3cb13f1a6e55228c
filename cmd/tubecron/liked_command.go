package main

import (
	"github.com/spf13/cobra"

	"tubecron/internal/pipeline"
	"tubecron/internal/youtube"
)

func newLikedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "liked",
		Short: "Print every liked video from YouTube as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.youtubeClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			source, err := youtube.NewLikedVideos(cmd.Context(), client, cfg.YouTube)
			if err != nil {
				return err
			}
			videos, err := source.All(cmd.Context())
			if err != nil {
				return err
			}
			if videos == nil {
				videos = []pipeline.Candidate{}
			}
			return writeJSON(cmd, videos)
		},
	}
}
