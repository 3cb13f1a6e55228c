package pipeline

import "strings"

// DefaultChunkSize is the transcript slice length, in characters, summarized
// per request.
const DefaultChunkSize = 12000

// Chunk splits text into contiguous slices of at most size characters. Text
// that is empty or whitespace-only yields no chunks.
func Chunk(text string, size int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
