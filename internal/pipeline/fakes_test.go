package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tubecron/internal/pipeline"
)

type fakeSource struct {
	pages map[string]pipeline.Page
	err   map[string]error
	calls []string
}

func (s *fakeSource) LikedPage(_ context.Context, token string) (pipeline.Page, error) {
	s.calls = append(s.calls, token)
	if err, ok := s.err[token]; ok {
		return pipeline.Page{}, err
	}
	page, ok := s.pages[token]
	if !ok {
		return pipeline.Page{}, fmt.Errorf("unexpected page token %q", token)
	}
	return page, nil
}

// threePages spreads ids over three pages chained by tokens.
func threePages(ids ...string) *fakeSource {
	pages := map[string]pipeline.Page{}
	tokens := []string{"", "p2", "p3"}
	per := (len(ids) + 2) / 3
	for i, token := range tokens {
		start := i * per
		end := start + per
		if start > len(ids) {
			start = len(ids)
		}
		if end > len(ids) {
			end = len(ids)
		}
		page := pipeline.Page{}
		for _, id := range ids[start:end] {
			page.Candidates = append(page.Candidates, pipeline.Candidate{ID: id, Title: "Title " + id})
		}
		if i < len(tokens)-1 {
			page.NextPageToken = tokens[i+1]
		}
		pages[token] = page
	}
	return &fakeSource{pages: pages}
}

type fakeFetcher struct {
	results map[string]pipeline.Result
	calls   []string
}

func (f *fakeFetcher) FetchTranscript(_ context.Context, id string) pipeline.Result {
	f.calls = append(f.calls, id)
	if res, ok := f.results[id]; ok {
		return res
	}
	return pipeline.Ok("transcripts/" + id + ".txt")
}

type fakeReader struct {
	texts map[string]string
	err   error
}

func (r *fakeReader) ReadTranscript(_ context.Context, ref string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	text, ok := r.texts[ref]
	if !ok {
		return "transcript for " + ref, nil
	}
	return text, nil
}

// scriptedSummarizer replays results in order and then echoes the chunk.
type scriptedSummarizer struct {
	mu     sync.Mutex
	script []pipeline.Result
	always *pipeline.Result
	chunks []string
}

func (s *scriptedSummarizer) Summarize(_ context.Context, chunk string) pipeline.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunk)
	if s.always != nil {
		return *s.always
	}
	if len(s.script) > 0 {
		res := s.script[0]
		s.script = s.script[1:]
		return res
	}
	return pipeline.Ok(fmt.Sprintf("summary of %d chars", len([]rune(chunk))))
}

func (s *scriptedSummarizer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

type fakePublisher struct {
	notes  []pipeline.Note
	result *pipeline.Result
}

func (p *fakePublisher) PublishNote(_ context.Context, note pipeline.Note) pipeline.Result {
	p.notes = append(p.notes, note)
	if p.result != nil {
		return *p.result
	}
	return pipeline.Ok("notes/" + note.ID + ".md")
}

type fakeNotifier struct {
	published []string
}

func (n *fakeNotifier) NotifyNotePublished(_ context.Context, title, _ string) error {
	n.published = append(n.published, title)
	return errors.New("ntfy unavailable")
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

var errDiskGone = errors.New("disk I/O error")
