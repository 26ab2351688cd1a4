// ABOUTME: OpenAI chat generator with retry and backoff
// ABOUTME: Stands in for the local engine when remote quality is wanted
package generate

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/util"
)

// DefaultChatModel is the chat model used unless configured otherwise
const DefaultChatModel = "gpt-4o-mini"

// Prompt budget for remote chat windows
const (
	remoteMaxContexts   = 8
	remoteMaxContextLen = 2000
)

// OpenAIGenerator produces answers through the OpenAI chat API
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
}

// NewOpenAIGenerator creates an OpenAI-backed generator
func NewOpenAIGenerator(opts Options) (*OpenAIGenerator, error) {
	if opts.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := opts.OpenAIModel
	if model == "" {
		model = DefaultChatModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(opts.OpenAIKey),
		model:       model,
		temperature: temperature,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
	}, nil
}

// Generate asks the chat model for an answer grounded in the contexts
func (g *OpenAIGenerator) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
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

// ClarifyingQuestions asks the chat model for numbered clarifying questions
func (g *OpenAIGenerator) ClarifyingQuestions(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(clarifyTemplate, query)

	text, _, err := g.chat(ctx, prompt, clarifyMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}
	return parseNumberedList("1. "+text, 3), nil
}

// chat calls the completion API with the client's retry policy
func (g *OpenAIGenerator) chat(ctx context.Context, prompt string, maxTokens int) (string, int, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(g.retryDelay, attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

		resp, err := g.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: float32(g.temperature),
			MaxTokens:   maxTokens,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Choices) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		cancel()
		return resp.Choices[0].Message.Content, resp.Usage.CompletionTokens, nil
	}

	return "", 0, fmt.Errorf("chat completion failed after %d attempts: %w", g.maxRetries+1, lastErr)
}
