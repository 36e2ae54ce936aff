package chunk

import (
	"strings"
	"unicode"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Split cuts text into overlapping windows of at most chunkSize runes, each
// consecutive pair sharing overlap runes. Control characters are stripped
// first so PDF extraction artifacts never reach the index. Returns nil for
// text that is empty after cleaning.
func Split(text string, chunkSize, overlap int) []string {
	cleaned := sanitize(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	// An overlap at or above the window size would never advance.
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	runes := []rune(cleaned)
	if len(runes) <= chunkSize {
		return []string{cleaned}
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, (len(runes)/step)+1)
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// sanitize drops non-printable control characters but keeps whitespace.
func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}
