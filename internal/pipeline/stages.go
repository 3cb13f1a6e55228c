package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubecron/internal/library"
	"tubecron/internal/logging"
)

// StageReport counts per-item outcomes of one stage.
type StageReport struct {
	Attempted int
	Succeeded int
	Failed    int
	Permanent int
}

func (r *StageReport) fail(res Result) {
	r.Failed++
	if res.Kind == Permanent {
		r.Permanent++
	}
}

// RunTranscriptStage fetches a transcript for every pending item. Failures
// leave the item pending; nothing is retried within the pass.
func (d *Driver) RunTranscriptStage(ctx context.Context) (StageReport, error) {
	var report StageReport
	if d.fetcher == nil {
		return report, errors.New("pipeline: transcript fetcher is not configured")
	}
	pending, err := d.store.PendingTranscripts(ctx)
	if err != nil {
		return report, fmt.Errorf("transcript stage: %w", err)
	}

	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		itemCtx := itemContext(ctx, item.ID, library.FailureStageTranscript)
		report.Attempted++

		res := d.fetcher.FetchTranscript(itemCtx, item.ID)
		if res.Kind == Success && strings.TrimSpace(res.Value) == "" {
			res = TransientFailure(errors.New("transcript fetcher returned an empty reference"))
		}
		if res.Kind != Success {
			report.fail(res)
			d.itemFailed(itemCtx, item.ID, library.FailureStageTranscript, res)
			continue
		}

		if err := d.store.MarkTranscript(itemCtx, item.ID, res.Value); err != nil {
			if isItemError(err) {
				report.fail(PermanentFailure(err))
				d.itemFailed(itemCtx, item.ID, library.FailureStageTranscript, PermanentFailure(err))
				continue
			}
			return report, fmt.Errorf("transcript stage: %w", err)
		}
		report.Succeeded++
		logging.WithContext(itemCtx, d.logger).Info("transcript stored",
			logging.Event("transcript_stored"),
			logging.String("title", item.Title),
			logging.String("transcript_ref", res.Value),
		)
	}
	return report, nil
}

// RunSummaryStage summarizes and publishes a note for every item with a
// transcript but no note. The store is updated only after both the summary
// and the note succeed.
func (d *Driver) RunSummaryStage(ctx context.Context) (StageReport, error) {
	var report StageReport
	if d.reader == nil || d.summarizer == nil || d.publisher == nil {
		return report, errors.New("pipeline: summary stage collaborators are not configured")
	}
	pending, err := d.store.PendingSummaries(ctx)
	if err != nil {
		return report, fmt.Errorf("summary stage: %w", err)
	}

	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		itemCtx := itemContext(ctx, item.ID, library.FailureStageSummary)
		report.Attempted++

		ref, res := d.summarizeAndPublish(itemCtx, item)
		if res.Kind != Success {
			if cerr := ctx.Err(); cerr != nil {
				return report, cerr
			}
			report.fail(res)
			d.itemFailed(itemCtx, item.ID, library.FailureStageSummary, res)
			continue
		}

		if err := d.store.MarkSummary(itemCtx, item.ID, ref); err != nil {
			if isItemError(err) {
				report.fail(PermanentFailure(err))
				d.itemFailed(itemCtx, item.ID, library.FailureStageSummary, PermanentFailure(err))
				continue
			}
			return report, fmt.Errorf("summary stage: %w", err)
		}
		report.Succeeded++
		logging.WithContext(itemCtx, d.logger).Info("note published",
			logging.Event("note_published"),
			logging.String("title", item.Title),
			logging.String("note_ref", ref),
		)
		if d.notifier != nil {
			if err := d.notifier.NotifyNotePublished(itemCtx, item.Title, ref); err != nil {
				logging.WithContext(itemCtx, d.logger).Warn("note notification failed", logging.Error(err))
			}
		}
	}
	return report, nil
}

func (d *Driver) summarizeAndPublish(ctx context.Context, item library.PendingSummary) (string, Result) {
	text, err := d.reader.ReadTranscript(ctx, item.TranscriptRef)
	if err != nil {
		return "", FromError("", fmt.Errorf("read transcript: %w", err))
	}

	chunks := Chunk(text, d.chunkSize)
	summaries := make([]string, 0, len(chunks))
	for idx, chunk := range chunks {
		// A split can leave a whitespace-only tail such as a final newline.
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		res := d.summarizeChunk(ctx, chunk, idx, len(chunks))
		if res.Kind != Success {
			return "", res
		}
		summaries = append(summaries, strings.TrimSpace(res.Value))
	}

	note := Note{
		ID:            item.ID,
		Title:         item.Title,
		TranscriptRef: item.TranscriptRef,
		Transcript:    text,
		Summary:       strings.Join(summaries, "\n\n"),
	}
	res := d.publisher.PublishNote(ctx, note)
	if res.Kind == Success && strings.TrimSpace(res.Value) == "" {
		return "", TransientFailure(errors.New("note publisher returned an empty reference"))
	}
	if res.Kind != Success {
		return "", res
	}
	return res.Value, res
}

func (d *Driver) summarizeChunk(ctx context.Context, chunk string, index, total int) Result {
	attempts := d.retry.attempts()
	var res Result
	for attempt := 1; attempt <= attempts; attempt++ {
		res = d.summarizer.Summarize(ctx, chunk)
		if res.Kind != Transient {
			return res
		}
		if attempt == attempts {
			break
		}
		delay := d.retry.Delay(attempt)
		logging.WithContext(ctx, d.logger).Info("summary retry scheduled",
			logging.Event("summary_retry"),
			logging.Int("attempt", attempt),
			logging.Int("chunk", index+1),
			logging.Int("chunks", total),
			logging.Duration("delay", delay),
			logging.Error(res.Error()),
		)
		if err := d.sleep(ctx, delay); err != nil {
			return TransientFailure(err)
		}
	}
	return TransientFailure(fmt.Errorf("summary retries exhausted after %d attempts: %w", attempts, res.Error()))
}

// isItemError reports store errors that concern a single item rather than the
// store itself.
func isItemError(err error) bool {
	return errors.Is(err, library.ErrNotFound) ||
		errors.Is(err, library.ErrPrecondition) ||
		errors.Is(err, library.ErrInvalid)
}
