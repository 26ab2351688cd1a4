// ABOUTME: Generator contract and provider factory for answer generation
// ABOUTME: Selects the local sampling engine or a remote chat model by name
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/docent-dev/docent/internal/models"
)

// Supported generation providers
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Generator produces an answer for a query grounded in context fragments
type Generator interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error)
	ClarifyingQuestions(ctx context.Context, query string) ([]string, error)
}

// Options configures the generation provider factory
type Options struct {
	Provider    string
	Temperature float64

	OpenAIKey   string
	OpenAIModel string

	OllamaHost  string
	OllamaModel string

	MaxRetries int
	RetryDelay time.Duration
}

// NewGenerator selects a generation provider by name. The corpus trains the
// local model's vocabulary and transition tables; remote providers ignore it.
func NewGenerator(opts Options, corpus []string) (Generator, error) {
	switch opts.Provider {
	case ProviderLocal, "":
		return NewLocalGenerator(corpus, opts), nil
	case ProviderOpenAI:
		if opts.OpenAIKey == "" {
			return nil, fmt.Errorf("openai generation provider selected but no API key configured")
		}
		return NewOpenAIGenerator(opts)
	case ProviderOllama:
		return NewOllamaGenerator(opts), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", opts.Provider)
	}
}

// NewLocalGenerator builds the in-process engine: a word tokenizer over the
// corpus and a bigram model trained on it. Each corpus text is terminated
// with the end-of-sequence token so the model learns to stop.
func NewLocalGenerator(corpus []string, opts Options) *Engine {
	tokenizer := NewWordTokenizer(corpus)
	model := NewNgramModel(tokenizer.VocabSize())

	for _, text := range corpus {
		tokens := tokenizer.Encode(text)
		if len(tokens) == 0 {
			continue
		}
		model.Train(append(tokens, tokenizer.EOS()))
	}

	var engineOpts []Option
	if opts.Temperature > 0 {
		engineOpts = append(engineOpts, WithTemperature(opts.Temperature))
	}
	return NewEngine(model, tokenizer, engineOpts...)
}
