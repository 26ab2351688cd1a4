// ABOUTME: Ollama embedding provider calling a local server over HTTP
// ABOUTME: One request per text; batch failures leave nil slots for exclusion
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/docent-dev/docent/internal/vector"
)

// DefaultOllamaHost is the local Ollama server address
const DefaultOllamaHost = "http://localhost:11434"

// DefaultOllamaModel is the embedding model used unless configured otherwise
const DefaultOllamaModel = "nomic-embed-text"

// OllamaEmbedder generates embeddings through a local Ollama server
type OllamaEmbedder struct {
	host      string
	model     string
	dimension int
	client    *http.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaEmbedder creates an Ollama-backed embedder
func NewOllamaEmbedder(opts Options) *OllamaEmbedder {
	host := strings.TrimRight(opts.OllamaHost, "/")
	if host == "" {
		host = DefaultOllamaHost
	}
	model := opts.OllamaModel
	if model == "" {
		model = DefaultOllamaModel
	}
	dimension := opts.Dimension
	if dimension <= 0 {
		dimension = 768
	}

	return &OllamaEmbedder{
		host:      host,
		model:     model,
		dimension: dimension,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Dimension returns the configured vector size
func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

// Embed generates one embedding
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call ollama embeddings API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embeddings API returned status %d", resp.StatusCode)
	}

	var payload ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}

	if len(payload.Embedding) != e.dimension {
		return nil, fmt.Errorf("ollama embedding dimension mismatch: expected %d, got %d", e.dimension, len(payload.Embedding))
	}

	vec := make([]float32, len(payload.Embedding))
	for i, value := range payload.Embedding {
		vec[i] = float32(value)
	}

	return vector.Normalize(vec), nil
}

// EmbedBatch embeds each text with its own request. A failing item is
// logged and leaves a nil slot so the caller can exclude the fragment.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var embedded int

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.Embed(ctx, text)
		if err != nil {
			log.Printf("Warning: embedding item %d failed, excluding it: %v", i, err)
			continue
		}
		vectors[i] = vec
		embedded++
	}

	if embedded == 0 && len(texts) > 0 {
		return nil, fmt.Errorf("all %d embedding requests failed", len(texts))
	}
	return vectors, nil
}
