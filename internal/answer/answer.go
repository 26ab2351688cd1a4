// ABOUTME: Orchestrator runs the full question answering pipeline
// ABOUTME: Embeds the query, retrieves fragments, generates a grounded answer, and assembles citations
package answer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/docent-dev/docent/internal/embed"
	"github.com/docent-dev/docent/internal/generate"
	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/storage/sqlite"
)

const (
	// DefaultTopK is how many fragments retrieval returns when not configured
	DefaultTopK = 5
	// DefaultThreshold is the minimum similarity score for a fragment to count
	DefaultThreshold = 0.15

	// NoResultsAnswer is returned when retrieval finds nothing above threshold
	NoResultsAnswer = "No relevant information found in the indexed documents."

	// fallbackExcerpts caps how many passages the degraded answer quotes
	fallbackExcerpts = 3
)

// Orchestrator wires retrieval and generation into a cited answer
type Orchestrator struct {
	store     *sqlite.Storage
	embedder  embed.Embedder
	generator generate.Generator

	topK      int
	threshold float64
	maxTokens int
	strict    bool
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithTopK sets how many fragments retrieval returns
func WithTopK(k int) Option {
	return func(o *Orchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithThreshold sets the minimum similarity score for retrieval
func WithThreshold(t float64) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

// WithMaxTokens caps the generated answer length in tokens. Zero keeps the
// generator's own default.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// WithStrict makes generation failures propagate instead of degrading to an
// excerpt fallback answer.
func WithStrict(strict bool) Option {
	return func(o *Orchestrator) { o.strict = strict }
}

// New creates an answer Orchestrator over the given store, embedder, and generator
func New(store *sqlite.Storage, embedder embed.Embedder, generator generate.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		embedder:  embedder,
		generator: generator,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Answer runs the full pipeline for a question: retrieve, generate, cite.
// When retrieval finds nothing the report carries the canned no-results
// answer and generation is skipped. When generation fails the answer
// degrades to quoted excerpts unless strict mode is on.
func (o *Orchestrator) Answer(ctx context.Context, query string) (*models.AnswerReport, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", models.ErrValidation)
	}

	// 1. Retrieve the most similar fragments
	results, err := o.Search(ctx, query, o.topK)
	if err != nil {
		return nil, err
	}

	report := &models.AnswerReport{
		Query:       query,
		GeneratedAt: time.Now().UTC(),
		Sources:     []models.SourceRef{},
	}

	// 2. Nothing above threshold: report that honestly, skip generation
	if len(results) == 0 {
		report.Answer = NoResultsAnswer
		return report, nil
	}

	// 3. Generate an answer grounded in the retrieved fragments
	contexts := make([]string, len(results))
	for i, res := range results {
		contexts[i] = res.Fragment.Content
	}

	result, err := o.generator.Generate(ctx, &models.GenerationRequest{
		Query:     query,
		Contexts:  contexts,
		MaxTokens: o.maxTokens,
	})
	switch {
	case err == nil:
		report.Answer = result.Text
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case o.strict:
		return nil, err
	default:
		log.Printf("Warning: generation failed, answering with excerpts: %v", err)
		report.Answer = o.fallbackAnswer(results)
	}

	// 4. Assemble citations in retrieval order
	var totalScore float64
	for _, res := range results {
		report.Sources = append(report.Sources, models.SourceRef{
			FileName: res.Document.FileName(),
			Path:     res.Document.Path,
			Excerpt:  res.Fragment.Content,
			Score:    res.Score,
			Seq:      res.Fragment.Seq,
		})
		totalScore += res.Score
	}
	report.TotalSources = len(results)
	report.AverageScore = totalScore / float64(len(results))
	report.SourcesFound = true

	return report, nil
}

// Search embeds the query and retrieves the most similar fragments. A topK
// of zero or less uses the configured default. Every executed search is
// recorded for the statistics view; a failed record is logged, not fatal.
func (o *Orchestrator) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", models.ErrValidation)
	}
	if topK <= 0 {
		topK = o.topK
	}

	queryVec, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", models.ErrEmbedding, err)
	}

	results, err := o.store.SearchFragments(queryVec, topK, o.threshold)
	if err != nil {
		return nil, err
	}

	var totalScore float64
	for _, res := range results {
		totalScore += res.Score
	}
	avgScore := 0.0
	if len(results) > 0 {
		avgScore = totalScore / float64(len(results))
	}
	if err := o.store.RecordSearch(models.NewSearchRecord(query, len(results), avgScore)); err != nil {
		log.Printf("Warning: failed to record search: %v", err)
	}

	return results, nil
}

// ClarifyingQuestions asks the generator for follow-up questions that would
// sharpen an ambiguous query
func (o *Orchestrator) ClarifyingQuestions(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", models.ErrValidation)
	}
	return o.generator.ClarifyingQuestions(ctx, query)
}

// Statistics reports corpus counts and recent activity straight from storage
func (o *Orchestrator) Statistics() (*models.Statistics, error) {
	return o.store.Statistics()
}

// fallbackAnswer quotes the highest-scoring retrieved passages when the
// generator could not produce text
func (o *Orchestrator) fallbackAnswer(results []models.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("An answer could not be generated; the most relevant passages are quoted below.")
	for i, res := range results {
		if i >= fallbackExcerpts {
			break
		}
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(res.Fragment.Content))
	}
	return sb.String()
}
