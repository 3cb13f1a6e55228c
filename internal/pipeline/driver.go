package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tubecron/internal/logging"
	"tubecron/internal/services"
)

// Dependencies are the collaborators a Driver calls.
type Dependencies struct {
	Source     Source
	Fetcher    TranscriptFetcher
	Reader     TranscriptReader
	Summarizer Summarizer
	Publisher  NotePublisher
	Notifier   Notifier
}

// Driver runs passes over the state store.
type Driver struct {
	store      Store
	source     Source
	fetcher    TranscriptFetcher
	reader     TranscriptReader
	summarizer Summarizer
	publisher  NotePublisher
	notifier   Notifier

	batchSize int
	chunkSize int
	maxPages  int
	retry     RetryPolicy
	sleep     Sleeper
	newRunID  func() string
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Driver.
type Option func(*Driver)

// WithBatchSize caps how many new videos discovery registers per pass. Zero
// disables discovery.
func WithBatchSize(n int) Option {
	return func(d *Driver) {
		if n >= 0 {
			d.batchSize = n
		}
	}
}

// WithChunkSize overrides the transcript chunk length.
func WithChunkSize(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

// WithRetryPolicy overrides the summary retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(d *Driver) {
		d.retry = p
	}
}

// WithSleeper replaces the wait used between summary retries.
func WithSleeper(s Sleeper) Option {
	return func(d *Driver) {
		if s != nil {
			d.sleep = s
		}
	}
}

// WithMaxPages bounds how many discovery pages are read in one pass.
func WithMaxPages(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxPages = n
		}
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRunID replaces the pass correlation id generator.
func WithRunID(fn func() string) Option {
	return func(d *Driver) {
		if fn != nil {
			d.newRunID = fn
		}
	}
}

// New constructs a Driver. A nil store is an error; collaborators may be nil
// when only some steps are run, and a step whose collaborator is missing
// reports an error.
func New(store Store, deps Dependencies, opts ...Option) (*Driver, error) {
	if store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	d := &Driver{
		store:      store,
		source:     deps.Source,
		fetcher:    deps.Fetcher,
		reader:     deps.Reader,
		summarizer: deps.Summarizer,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		batchSize:  10,
		chunkSize:  DefaultChunkSize,
		maxPages:   1000,
		retry:      DefaultRetryPolicy(),
		sleep:      contextSleep,
		newRunID:   uuid.NewString,
		now:        time.Now,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "pipeline")
	return d, nil
}

// PassReport summarizes one pass.
type PassReport struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Transcripts StageReport
	Summaries   StageReport
	Discovery   DiscoveryReport
}

// Failed reports the number of items that failed in either stage.
func (r PassReport) Failed() int {
	return r.Transcripts.Failed + r.Summaries.Failed
}

// RunPass performs the transcript stage, the summary stage, and discovery, in
// that order. It returns an error only when the store fails or ctx is
// cancelled; per-item and discovery failures are reported in PassReport.
func (d *Driver) RunPass(ctx context.Context) (PassReport, error) {
	report := PassReport{RunID: d.newRunID(), StartedAt: d.now()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("pass started", logging.Event("pass_started"))

	finish := func(err error) (PassReport, error) {
		report.Duration = d.now().Sub(report.StartedAt)
		if err != nil {
			logger.Error("pass aborted",
				logging.Event("pass_aborted"),
				logging.Error(err),
			)
			return report, err
		}
		logger.Info("pass completed",
			logging.Event("pass_completed"),
			logging.Int("transcripts_fetched", report.Transcripts.Succeeded),
			logging.Int("transcripts_failed", report.Transcripts.Failed),
			logging.Int("notes_published", report.Summaries.Succeeded),
			logging.Int("summaries_failed", report.Summaries.Failed),
			logging.Int("registered", report.Discovery.Registered),
			logging.Int("pages", report.Discovery.Pages),
			logging.Duration("duration", report.Duration),
		)
		return report, nil
	}

	var err error
	if report.Transcripts, err = d.RunTranscriptStage(ctx); err != nil {
		return finish(err)
	}
	if report.Summaries, err = d.RunSummaryStage(ctx); err != nil {
		return finish(err)
	}
	if report.Discovery, err = d.RunDiscovery(ctx); err != nil {
		return finish(err)
	}
	return finish(nil)
}

func (d *Driver) itemFailed(ctx context.Context, id, stage string, res Result) {
	permanent := res.Kind == Permanent
	reason := res.Error()
	logging.WithContext(ctx, d.logger).Warn("item failed",
		logging.Event("item_failed"),
		logging.Bool("permanent", permanent),
		logging.Error(reason),
	)
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	if err := d.store.RecordFailure(ctx, id, stage, msg, permanent); err != nil {
		logging.WithContext(ctx, d.logger).Warn("record failure",
			logging.Event("record_failure_failed"),
			logging.Error(err),
		)
	}
}

func itemContext(ctx context.Context, id, stage string) context.Context {
	return services.WithStage(services.WithVideoID(ctx, id), stage)
}
