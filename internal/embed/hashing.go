// ABOUTME: Local deterministic embedder using signed feature hashing
// ABOUTME: Tokens hash into fixed buckets with a sign bit, then L2 normalization
package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/vector"
)

// DefaultDimension is the default vector size for the hashing embedder
const DefaultDimension = 256

var tokenPattern = regexp.MustCompile(`\p{L}+(?:'\p{L}+)*|\p{N}+`)

// HashingEmbedder produces deterministic embeddings without model weights.
// Unigram and adjacent-bigram features hash into buckets; the bucket sign
// comes from a second hash bit. Identical texts always embed identically.
type HashingEmbedder struct {
	dimension int
}

// NewHashingEmbedder creates a hashing embedder. A non-positive dimension
// falls back to the default.
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashingEmbedder{dimension: dimension}
}

// Dimension returns the configured vector size
func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

// Embed produces a unit vector for the text. Text with no tokens cannot be
// embedded.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in text", models.ErrEmbedding)
	}

	v := make([]float32, e.dimension)
	for i, tok := range tokens {
		e.accumulate(v, tok)
		if i+1 < len(tokens) {
			e.accumulate(v, tok+"_"+tokens[i+1])
		}
	}

	return vector.Normalize(v), nil
}

// EmbedBatch embeds each text independently. A failing item yields a nil
// slot rather than failing the batch.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			continue
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// accumulate hashes a feature into its bucket with a sign bit
func (e *HashingEmbedder) accumulate(v []float32, feature string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dimension))
	if sum&(1<<63) != 0 {
		v[bucket]--
	} else {
		v[bucket]++
	}
}

// Tokenize lowercases and splits text into letter/digit runs
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
