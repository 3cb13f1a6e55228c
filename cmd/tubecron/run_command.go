package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tubecron/internal/config"
	"tubecron/internal/library"
	"tubecron/internal/logging"
	"tubecron/internal/notes"
	"tubecron/internal/notifications"
	"tubecron/internal/passlock"
	"tubecron/internal/pipeline"
	"tubecron/internal/summarize"
	"tubecron/internal/transcripts"
	"tubecron/internal/youtube"
)

type runOverrides struct {
	batchSize  int
	provider   string
	model      string
	vaultDir   string
	ollamaHost string
	jsonOut    bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOverrides

	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"process"},
		Short:   "Run one pass: transcripts, summaries, then discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunOverrides(cmd, cfg, opts); err != nil {
				return err
			}
			report, err := runPass(cmd.Context(), ctx, cfg)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, passReportJSON(report))
			}
			renderPassReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Maximum new videos to register this pass (0 skips discovery)")
	cmd.Flags().StringVar(&opts.provider, "llm-provider", "", "Summarization provider (openai, ollama, openrouter, anthropic)")
	cmd.Flags().StringVar(&opts.model, "llm-model", "", "Model name for the selected provider")
	cmd.Flags().StringVar(&opts.vaultDir, "vault-dir", "", "Obsidian vault directory")
	cmd.Flags().StringVar(&opts.ollamaHost, "ollama-host", "", "Ollama base URL")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the pass report as JSON")
	return cmd
}

func applyRunOverrides(cmd *cobra.Command, cfg *config.Config, opts runOverrides) error {
	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		cfg.Pipeline.BatchSize = opts.batchSize
	}
	if flags.Changed("llm-provider") {
		provider := strings.ToLower(strings.TrimSpace(opts.provider))
		if provider != cfg.LLM.Provider {
			// A model or endpoint chosen for the previous provider does not carry over.
			if !flags.Changed("llm-model") {
				cfg.LLM.Model = ""
			}
			cfg.LLM.BaseURL = ""
			cfg.LLM.APIKey = ""
		}
		cfg.LLM.Provider = provider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = strings.TrimSpace(opts.model)
	}
	if flags.Changed("vault-dir") {
		dir, err := config.ExpandPath(strings.TrimSpace(opts.vaultDir))
		if err != nil {
			return fmt.Errorf("resolve vault dir: %w", err)
		}
		cfg.Paths.VaultDir = dir
	}
	if flags.Changed("ollama-host") {
		cfg.LLM.OllamaHost = strings.TrimSpace(opts.ollamaHost)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func runPass(ctx context.Context, cmdCtx *commandContext, cfg *config.Config) (pipeline.PassReport, error) {
	var report pipeline.PassReport

	lock, err := passlock.Acquire(cfg.LockPath())
	if err != nil {
		return report, err
	}
	defer lock.Release()

	logger, err := cmdCtx.logger(cfg)
	if err != nil {
		return report, err
	}

	store, err := library.Open(cfg)
	if err != nil {
		return report, fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	deps, err := buildDependencies(ctx, cmdCtx, cfg, logger)
	if err != nil {
		return report, err
	}
	notifier := notifications.NewService(cfg)
	deps.Notifier = notifier

	driver, err := pipeline.New(store, deps,
		pipeline.WithBatchSize(cfg.Pipeline.BatchSize),
		pipeline.WithChunkSize(cfg.Summary.ChunkSize),
		pipeline.WithRetryPolicy(pipeline.RetryPolicy{
			Attempts:  cfg.Summary.RetryAttempts,
			BaseDelay: time.Duration(cfg.Summary.RetryBaseDelaySeconds) * time.Second,
			MaxDelay:  time.Duration(cfg.Summary.RetryMaxDelaySeconds) * time.Second,
		}),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return report, err
	}

	report, err = driver.RunPass(ctx)
	if err != nil {
		if ctx.Err() == nil {
			if nerr := notifier.NotifyError(ctx, err, "pass"); nerr != nil {
				logger.Warn("error notification failed", logging.Error(nerr))
			}
		}
		return report, err
	}
	if nerr := notifier.NotifyPassCompleted(ctx, notifications.PassSummary{
		Transcripts: report.Transcripts.Succeeded,
		Published:   report.Summaries.Succeeded,
		Failed:      report.Failed(),
		Registered:  report.Discovery.Registered,
		Duration:    report.Duration,
	}); nerr != nil {
		logger.Warn("pass notification failed", logging.Error(nerr))
	}
	return report, nil
}

func buildDependencies(ctx context.Context, cmdCtx *commandContext, cfg *config.Config, logger *slog.Logger) (pipeline.Dependencies, error) {
	fetcher, err := transcripts.New(cfg)
	if err != nil {
		return pipeline.Dependencies{}, err
	}
	summarizer, err := summarize.New(cfg.GetLLM())
	if err != nil {
		return pipeline.Dependencies{}, err
	}

	var source pipeline.Source
	if cfg.Pipeline.BatchSize > 0 {
		client, err := cmdCtx.youtubeClient(ctx, cfg)
		if err != nil {
			logger.Warn("youtube discovery unavailable", logging.Error(err))
			source = unavailableSource{err: err}
		} else if liked, err := youtube.NewLikedVideos(ctx, client, cfg.YouTube); err != nil {
			logger.Warn("youtube discovery unavailable", logging.Error(err))
			source = unavailableSource{err: err}
		} else {
			source = liked
		}
	}

	return pipeline.Dependencies{
		Source:     source,
		Fetcher:    fetcher,
		Reader:     fetcher,
		Summarizer: summarizer,
		Publisher:  notes.NewObsidianPublisher(cfg.Paths.VaultDir),
	}, nil
}

type passReportView struct {
	RunID       string               `json:"run_id"`
	StartedAt   string               `json:"started_at"`
	DurationMS  int64                `json:"duration_ms"`
	Transcripts pipeline.StageReport `json:"transcripts"`
	Summaries   pipeline.StageReport `json:"summaries"`
	Discovery   discoveryView        `json:"discovery"`
}

type discoveryView struct {
	Pages      int    `json:"pages"`
	Candidates int    `json:"candidates"`
	Known      int    `json:"known"`
	Registered int    `json:"registered"`
	Capped     bool   `json:"capped"`
	Error      string `json:"error,omitempty"`
}

func passReportJSON(report pipeline.PassReport) passReportView {
	view := passReportView{
		RunID:       report.RunID,
		StartedAt:   report.StartedAt.UTC().Format(time.RFC3339),
		DurationMS:  report.Duration.Milliseconds(),
		Transcripts: report.Transcripts,
		Summaries:   report.Summaries,
		Discovery: discoveryView{
			Pages:      report.Discovery.Pages,
			Candidates: report.Discovery.Candidates,
			Known:      report.Discovery.Known,
			Registered: report.Discovery.Registered,
			Capped:     report.Discovery.Capped,
		},
	}
	if report.Discovery.Err != nil {
		view.Discovery.Error = report.Discovery.Err.Error()
	}
	return view
}

func renderPassReport(out io.Writer, report pipeline.PassReport) {
	rows := [][]string{
		{"transcripts", strconv.Itoa(report.Transcripts.Attempted), strconv.Itoa(report.Transcripts.Succeeded), strconv.Itoa(report.Transcripts.Failed)},
		{"summaries", strconv.Itoa(report.Summaries.Attempted), strconv.Itoa(report.Summaries.Succeeded), strconv.Itoa(report.Summaries.Failed)},
	}
	fmt.Fprintf(out, "Pass %s finished in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Attempted", "Succeeded", "Failed"},
		rows,
		1, 2, 3,
	))
	d := report.Discovery
	switch {
	case d.Err != nil:
		fmt.Fprintf(out, "Discovery failed: %v\n", d.Err)
	case d.Pages == 0:
		fmt.Fprintln(out, "Discovery skipped")
	default:
		fmt.Fprintf(out, "Discovery: %d new of %d liked videos across %d pages (batch cap reached: %s)\n",
			d.Registered, d.Candidates, d.Pages, yesNo(d.Capped))
	}
}
