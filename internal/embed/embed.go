// ABOUTME: Embedding generator contract and provider factory
// ABOUTME: Every implementation returns L2-normalized vectors of the configured dimension
package embed

import (
	"context"
	"fmt"
	"time"
)

// Supported embedding providers
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
)

// Embedder turns text into unit vectors of a fixed dimension.
//
// EmbedBatch never fails the whole batch for one bad item: a failing item
// leaves a nil slot in the returned slice so the caller can exclude that
// fragment. The returned error is non-nil only when the batch as a whole
// could not be attempted.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Options configures the embedding provider factory
type Options struct {
	Provider  string
	Dimension int

	OpenAIKey   string
	OpenAIModel string

	OllamaHost  string
	OllamaModel string

	MaxRetries int
	RetryDelay time.Duration
}

// NewEmbedder selects an embedding provider by name
func NewEmbedder(opts Options) (Embedder, error) {
	switch opts.Provider {
	case ProviderHashing, "":
		return NewHashingEmbedder(opts.Dimension), nil
	case ProviderOpenAI:
		if opts.OpenAIKey == "" {
			return nil, fmt.Errorf("openai embedding provider selected but no API key configured")
		}
		return NewOpenAIEmbedder(opts)
	case ProviderOllama:
		return NewOllamaEmbedder(opts), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", opts.Provider)
	}
}
