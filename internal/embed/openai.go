// ABOUTME: OpenAI embedding provider with retry and backoff
// ABOUTME: Re-normalizes API vectors so the unit-length contract always holds
package embed

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docent-dev/docent/internal/util"
	"github.com/docent-dev/docent/internal/vector"
)

// DefaultOpenAIModel is the embedding model used unless configured otherwise
const DefaultOpenAIModel = string(openai.SmallEmbedding3)

// OpenAIEmbedder generates embeddings through the OpenAI API
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimension  int
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder
func NewOpenAIEmbedder(opts Options) (*OpenAIEmbedder, error) {
	if opts.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := opts.OpenAIModel
	if model == "" {
		model = DefaultOpenAIModel
	}
	dimension := opts.Dimension
	if dimension <= 0 {
		dimension = 1536
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}

	return &OpenAIEmbedder{
		client:     openai.NewClient(opts.OpenAIKey),
		model:      openai.EmbeddingModel(model),
		dimension:  dimension,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}, nil
}

// Dimension returns the configured vector size
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Embed generates one embedding with retries
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for all texts in one API call. The API
// either answers for every input or fails the call, so a nil error means
// every slot is filled.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.request(ctx, texts)
}

// request calls the embeddings API with the client's retry policy
func (e *OpenAIEmbedder) request(ctx context.Context, inputs []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(e.retryDelay, attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

		resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
			Input:      inputs,
			Model:      e.model,
			Dimensions: e.dimension,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) != len(inputs) {
			cancel()
			lastErr = fmt.Errorf("attempt %d: expected %d embeddings, got %d", attempt+1, len(inputs), len(resp.Data))
			continue
		}

		vectors := make([][]float32, len(inputs))
		for _, item := range resp.Data {
			vec := make([]float32, len(item.Embedding))
			copy(vec, item.Embedding)
			vectors[item.Index] = vector.Normalize(vec)
		}

		cancel()
		return vectors, nil
	}

	return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", e.maxRetries+1, lastErr)
}
