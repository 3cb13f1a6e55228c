package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubecron/internal/logging"
	"tubecron/internal/services"
)

// DiscoveryReport summarizes one discovery step.
type DiscoveryReport struct {
	Pages      int
	Candidates int
	Known      int
	Registered int
	Capped     bool
	// Err is set when the source failed; nothing is registered in that case.
	Err error
}

// RunDiscovery reads every page of the source, following continuation tokens,
// then registers candidates in source order until the batch size of new
// registrations is reached. Known ids neither count toward the cap nor stop
// the scan. Every pass rescans the full source.
func (d *Driver) RunDiscovery(ctx context.Context) (DiscoveryReport, error) {
	var report DiscoveryReport
	ctx = services.WithStage(ctx, "discovery")
	logger := logging.WithContext(ctx, d.logger)

	if d.batchSize == 0 {
		logger.Info("discovery skipped", logging.String("reason", "batch size is zero"))
		return report, nil
	}
	if d.source == nil {
		return report, errors.New("pipeline: discovery source is not configured")
	}

	candidates, pages, err := d.collect(ctx)
	report.Pages = pages
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return report, cerr
		}
		report.Err = err
		logger.Warn("discovery failed",
			logging.Event("discovery_failed"),
			logging.Int("pages", pages),
			logging.Error(err),
		)
		return report, nil
	}
	report.Candidates = len(candidates)

	for _, candidate := range candidates {
		if report.Registered >= d.batchSize {
			report.Capped = true
			break
		}
		inserted, err := d.store.Register(ctx, candidate.ID, candidate.Title)
		if err != nil {
			return report, fmt.Errorf("discovery: %w", err)
		}
		if !inserted {
			report.Known++
			continue
		}
		report.Registered++
		logger.Info("video discovered",
			logging.Event("video_discovered"),
			logging.VideoID(candidate.ID),
			logging.String("title", candidate.Title),
		)
	}
	if report.Capped {
		logger.Info("batch size reached", logging.Int("batch_size", d.batchSize))
	}
	return report, nil
}

func (d *Driver) collect(ctx context.Context) ([]Candidate, int, error) {
	var (
		candidates []Candidate
		token      string
		pages      int
	)
	seenTokens := map[string]struct{}{}
	seenIDs := map[string]struct{}{}
	for {
		if pages >= d.maxPages {
			return nil, pages, fmt.Errorf("discovery: stopped after %d pages", pages)
		}
		page, err := d.source.LikedPage(ctx, token)
		if err != nil {
			return nil, pages, fmt.Errorf("discovery page %d: %w", pages+1, err)
		}
		pages++
		for _, candidate := range page.Candidates {
			id := strings.TrimSpace(candidate.ID)
			if id == "" {
				continue
			}
			if _, dup := seenIDs[id]; dup {
				continue
			}
			seenIDs[id] = struct{}{}
			candidates = append(candidates, Candidate{ID: id, Title: candidate.Title})
		}
		token = page.NextPageToken
		if token == "" {
			return candidates, pages, nil
		}
		if _, loop := seenTokens[token]; loop {
			return nil, pages, fmt.Errorf("discovery: page token %q repeated", token)
		}
		seenTokens[token] = struct{}{}
	}
}
