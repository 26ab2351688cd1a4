// ABOUTME: Chunker splits raw document text into ordered overlapping fragments
// ABOUTME: Snaps chunk boundaries backward to sentence terminators when one is near
package chunker

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// DefaultTargetSize is the default chunk size in characters
	DefaultTargetSize = 500
	// DefaultOverlap is the default overlap between adjacent raw-cut chunks
	DefaultOverlap = 50
	// sentenceWindow is how far back from a proposed boundary to look for a
	// sentence terminator
	sentenceWindow = 100
)

// Chunker produces ordered text fragments for embedding
type Chunker struct {
	targetSize int
	overlap    int
}

// New creates a Chunker. Overlap must be smaller than the target size or
// chunking could not terminate.
func New(targetSize, overlap int) (*Chunker, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %d", targetSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must be >= 0, got %d", overlap)
	}
	if overlap >= targetSize {
		return nil, fmt.Errorf("overlap (%d) must be smaller than target size (%d)", overlap, targetSize)
	}
	return &Chunker{targetSize: targetSize, overlap: overlap}, nil
}

// Chunk splits text using the chunker's configured sizes
func (c *Chunker) Chunk(text string) []string {
	return Chunk(text, c.targetSize, c.overlap)
}

// Chunk splits text into ordered chunks of at most targetSize characters.
// Boundaries snap backward to the last sentence terminator within the search
// window; if none is found the raw boundary stands. A snapped chunk ends at
// its terminator and the next chunk starts clean after it, so overlap only
// applies between raw cuts.
func Chunk(text string, targetSize, overlap int) []string {
	runes := []rune(text)
	var chunks []string

	pos := 0
	for pos < len(runes) {
		end := pos + targetSize
		if end > len(runes) {
			end = len(runes)
		}

		snapped := false
		if end < len(runes) {
			if idx := lastTerminator(runes, pos, end); idx > pos {
				end = idx + 1
				snapped = true
			}
		}

		if chunk := strings.TrimSpace(string(runes[pos:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		next := end - overlap
		if snapped || next <= pos {
			next = end
		}
		pos = next
	}

	return chunks
}

// lastTerminator finds the last sentence terminator in runes[pos:end],
// searching at most sentenceWindow characters back from end. Returns -1 if
// none is found.
func lastTerminator(runes []rune, pos, end int) int {
	limit := end - sentenceWindow
	if limit < pos {
		limit = pos
	}
	for i := end - 1; i >= limit; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}

// EstimateTokens counts whitespace/punctuation-delimited tokens. A rough
// bookkeeping figure, not what a model tokenizer would produce.
func EstimateTokens(text string) int {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return len(fields)
}
