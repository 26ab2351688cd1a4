// ABOUTME: Autoregressive generation engine: encode, sample token by token, decode
// ABOUTME: Temperature-scaled softmax sampling with an injectable random source
package generate

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/docent-dev/docent/internal/models"
)

const (
	// DefaultTemperature controls sampling sharpness unless configured
	DefaultTemperature = 0.7
	// DefaultMaxTokens bounds generation when the request carries no budget
	DefaultMaxTokens = 256
	// clarifyMaxTokens bounds the clarifying-question generation
	clarifyMaxTokens = 60
)

// clarifyTemplate is the fixed prompt for clarifying-question generation
const clarifyTemplate = "Generate 3 short clarifying questions that would help answer " +
	"the question below. Number them 1. 2. 3., one per line.\n\nQuestion: %s\n\n1."

// Engine drives an autoregressive sampling loop over a local model.
// The random source is injectable so tests can pin exact outputs; the
// default is time-seeded.
type Engine struct {
	model       Model
	tokenizer   Tokenizer
	temperature float64

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Option configures an Engine
type Option func(*Engine)

// WithTemperature overrides the sampling temperature
func WithTemperature(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.temperature = t
		}
	}
}

// WithSeed makes sampling deterministic for tests
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// NewEngine creates a generation engine over a model and tokenizer
func NewEngine(model Model, tokenizer Tokenizer, opts ...Option) *Engine {
	e := &Engine{
		model:       model,
		tokenizer:   tokenizer,
		temperature: DefaultTemperature,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate runs the sampling loop: assemble the prompt, encode it, sample
// up to MaxTokens tokens, stop at the end-of-sequence marker, then decode
// and clean only the generated tail.
func (e *Engine) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	prompt := BuildPrompt(req.Query, req.Contexts)
	return e.complete(ctx, prompt, req.MaxTokens)
}

// ClarifyingQuestions samples from a short fixed template and parses the
// numbered lines out of the result. Malformed or empty generations yield
// an empty list, not an error.
func (e *Engine) ClarifyingQuestions(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(clarifyTemplate, query)
	result, err := e.complete(ctx, prompt, clarifyMaxTokens)
	if err != nil {
		return nil, err
	}
	// The template ends with the "1." cue, so the generation is the rest of
	// that first item plus any further numbered lines.
	return parseNumberedList("1. "+result.Text, 3), nil
}

// complete encodes the prompt, samples, and post-processes the output
func (e *Engine) complete(ctx context.Context, prompt string, maxTokens int) (*models.GenerationResult, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	budget := e.model.ContextLimit() - maxTokens
	if budget < 1 {
		return nil, fmt.Errorf("%w: token budget %d leaves no room in context window %d",
			models.ErrValidation, maxTokens, e.model.ContextLimit())
	}

	tokens := e.tokenizer.Encode(prompt)
	if len(tokens) > budget {
		// Lossy by choice: keep the tail so the question and answer cue
		// survive, drop the oldest context from the front.
		tokens = tokens[len(tokens)-budget:]
	}
	promptLen := len(tokens)

	generated := 0
	for generated < maxTokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logits, err := e.model.Forward(ctx, tokens)
		if err != nil {
			return nil, fmt.Errorf("%w: forward pass at position %d: %v", models.ErrGeneration, len(tokens), err)
		}

		next, err := e.sample(logits)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrGeneration, err)
		}
		if next == e.tokenizer.EOS() {
			break
		}

		tokens = append(tokens, next)
		generated++
	}

	text := postProcess(e.tokenizer.Decode(tokens[promptLen:]), prompt)

	return &models.GenerationResult{
		Text:       text,
		TokensUsed: generated,
	}, nil
}

// sample draws one token from the temperature-scaled softmax of the logits
func (e *Engine) sample(logits []float64) (int, error) {
	if len(logits) == 0 {
		return 0, fmt.Errorf("model returned no logits")
	}

	// Scale by temperature, subtracting the max logit first so the
	// exponentials stay finite.
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		p := math.Exp((l - maxLogit) / e.temperature)
		probs[i] = p
		sum += p
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, fmt.Errorf("degenerate probability distribution (sum %v)", sum)
	}

	e.mu.Lock()
	r := e.rng.Float64() * sum
	e.mu.Unlock()

	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return i, nil
		}
	}
	// Rounding can leave r at the very top of the range
	return len(probs) - 1, nil
}
