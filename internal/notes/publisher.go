// Package notes renders published summaries as Markdown notes inside an
// Obsidian vault.
package notes

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/natefinch/atomic"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"tubecron/internal/pipeline"
	"tubecron/internal/services"
	"tubecron/internal/transcripts"
)

// FolderName is the vault subdirectory holding video notes.
const FolderName = "YouTube Videos"

// EmptySummaryText replaces the summary section when the transcript had no text.
const EmptySummaryText = "No transcript text was available."

const createdLayout = "2006-01-02 15:04:05"

// Frontmatter is the YAML header written at the top of every note.
type Frontmatter struct {
	Title   string   `yaml:"title"`
	VideoID string   `yaml:"video_id"`
	URL     string   `yaml:"url"`
	Created string   `yaml:"created"`
	Tags    []string `yaml:"tags,flow"`
}

var noteTemplate = template.Must(template.New("note").Parse(`---
{{.Frontmatter}}---

# {{.Title}}

## Summary

{{.Summary}}

## Video Link

[Watch on YouTube]({{.URL}})

## Transcript

{{.Fence}}text
{{.Transcript}}
{{.Fence}}
`))

// ObsidianPublisher writes notes under <vault>/YouTube Videos.
type ObsidianPublisher struct {
	dir string
	now func() time.Time
}

// NewObsidianPublisher constructs a publisher rooted at vaultDir.
func NewObsidianPublisher(vaultDir string) *ObsidianPublisher {
	return &ObsidianPublisher{
		dir: filepath.Join(vaultDir, FolderName),
		now: time.Now,
	}
}

// Dir returns the folder notes are written to.
func (p *ObsidianPublisher) Dir() string {
	return p.dir
}

// PublishNote renders and writes the note, replacing an earlier copy.
func (p *ObsidianPublisher) PublishNote(_ context.Context, note pipeline.Note) pipeline.Result {
	if strings.TrimSpace(note.ID) == "" {
		return pipeline.PermanentFailure(fmt.Errorf("notes: video id is required"))
	}
	content, err := Render(note, p.now())
	if err != nil {
		return pipeline.PermanentFailure(err)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return pipeline.TransientFailure(services.Wrap(services.ErrTransient, "summary", "publish note", "create vault folder", err))
	}
	path := filepath.Join(p.dir, FileName(note.Title, note.ID))
	if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
		return pipeline.TransientFailure(services.Wrap(services.ErrTransient, "summary", "publish note", path, err))
	}
	return pipeline.Ok(path)
}

// Render produces the Markdown document for note.
func Render(note pipeline.Note, created time.Time) ([]byte, error) {
	url := transcripts.WatchURL(note.ID)
	header, err := yaml.Marshal(Frontmatter{
		Title:   note.Title,
		VideoID: note.ID,
		URL:     url,
		Created: created.Format(createdLayout),
		Tags:    []string{"youtube", "video", "transcript"},
	})
	if err != nil {
		return nil, fmt.Errorf("notes: encode frontmatter: %w", err)
	}

	summary := strings.TrimSpace(note.Summary)
	if summary == "" {
		summary = EmptySummaryText
	}
	transcript := strings.TrimRight(note.Transcript, "\n")
	var buf bytes.Buffer
	err = noteTemplate.Execute(&buf, map[string]string{
		"Frontmatter": string(header),
		"Title":       note.Title,
		"Summary":     summary,
		"URL":         url,
		"Transcript":  transcript,
		"Fence":       codeFence(transcript),
	})
	if err != nil {
		return nil, fmt.Errorf("notes: render: %w", err)
	}
	return buf.Bytes(), nil
}

// codeFence returns a backtick fence one longer than the longest backtick run
// in text, and never shorter than three.
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}

var fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FileName builds "<safe title>-<id>.md". The safe title keeps letters,
// digits, spaces, '-' and '_' after stripping diacritics.
func FileName(title, id string) string {
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	return safe + "-" + id + ".md"
}
