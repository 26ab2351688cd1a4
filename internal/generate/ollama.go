// ABOUTME: Ollama chat generator calling a local server over HTTP
// ABOUTME: Single non-streaming request per generation
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/docent-dev/docent/internal/models"
)

// DefaultOllamaHost is the local Ollama server address
const DefaultOllamaHost = "http://localhost:11434"

// DefaultOllamaChatModel is the chat model used unless configured otherwise
const DefaultOllamaChatModel = "llama3.2"

// OllamaGenerator produces answers through a local Ollama server
type OllamaGenerator struct {
	host        string
	model       string
	temperature float64
	client      *http.Client
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaChatOptions   `json:"options"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaChatResponse struct {
	Message   ollamaChatMessage `json:"message"`
	EvalCount int               `json:"eval_count"`
}

// NewOllamaGenerator creates an Ollama-backed generator
func NewOllamaGenerator(opts Options) *OllamaGenerator {
	host := strings.TrimRight(opts.OllamaHost, "/")
	if host == "" {
		host = DefaultOllamaHost
	}
	model := opts.OllamaModel
	if model == "" {
		model = DefaultOllamaChatModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &OllamaGenerator{
		host:        host,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate asks the local chat model for an answer grounded in the contexts
func (g *OllamaGenerator) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	prompt := BuildPromptBudget(req.Query, req.Contexts, remoteMaxContexts, remoteMaxContextLen)

	text, tokens, err := g.chat(ctx, prompt, req.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}

	return &models.GenerationResult{
		Text:       postProcess(text, prompt),
		TokensUsed: tokens,
	}, nil
}

// ClarifyingQuestions asks the local chat model for numbered questions
func (g *OllamaGenerator) ClarifyingQuestions(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(clarifyTemplate, query)

	text, _, err := g.chat(ctx, prompt, clarifyMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}
	return parseNumberedList("1. "+text, 3), nil
}

// chat posts one non-streaming chat request
func (g *OllamaGenerator) chat(ctx context.Context, prompt string, maxTokens int) (string, int, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody, err := json.Marshal(ollamaChatRequest{
		Model:    g.model,
		Messages: []ollamaChatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options: ollamaChatOptions{
			Temperature: g.temperature,
			NumPredict:  maxTokens,
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.host+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return "", 0, fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("call ollama chat API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("ollama chat API returned status %d", resp.StatusCode)
	}

	var payload ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("decode ollama response: %w", err)
	}

	return payload.Message.Content, payload.EvalCount, nil
}
