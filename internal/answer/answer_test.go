// ABOUTME: Tests for the answer orchestrator
// ABOUTME: Covers the empty-corpus fallback, excerpt degradation, strict mode, and citations
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docent-dev/docent/internal/chunker"
	"github.com/docent-dev/docent/internal/embed"
	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/storage/sqlite"
)

// fakeGenerator returns a scripted result or error
type fakeGenerator struct {
	result    *models.GenerationResult
	questions []string
	err       error

	lastRequest *models.GenerationRequest
}

func (g *fakeGenerator) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	g.lastRequest = req
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *fakeGenerator) ClarifyingQuestions(ctx context.Context, query string) ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.questions, nil
}

func newTestStore(t *testing.T) *sqlite.Storage {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedDocument indexes one document with a fragment per text, embedded by the
// given embedder so retrieval scores are real
func seedDocument(t *testing.T, store *sqlite.Storage, embedder embed.Embedder, path string, texts ...string) {
	t.Helper()

	doc, err := models.NewDocument(path, "hash-"+path, 100, time.Now().UTC())
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}

	fragments := make([]models.Fragment, 0, len(texts))
	for seq, text := range texts {
		frag, err := models.NewFragment(doc.ID, seq, text, chunker.EstimateTokens(text))
		if err != nil {
			t.Fatalf("NewFragment() error = %v", err)
		}
		vec, err := embedder.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed() error = %v", err)
		}
		frag.Embedding = vec
		fragments = append(fragments, *frag)
	}

	if err := store.ReplaceDocument(doc, fragments); err != nil {
		t.Fatalf("ReplaceDocument() error = %v", err)
	}
}

func TestAnswer_EmptyCorpus(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	gen := &fakeGenerator{result: &models.GenerationResult{Text: "should not be called"}}
	orch := New(store, embedder, gen)

	report, err := orch.Answer(context.Background(), "what color is the sky")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if report.Answer != NoResultsAnswer {
		t.Errorf("Answer = %q, want canned no-results answer", report.Answer)
	}
	if report.SourcesFound {
		t.Error("SourcesFound = true for empty corpus, want false")
	}
	if len(report.Sources) != 0 || report.TotalSources != 0 {
		t.Errorf("sources = %d/%d, want none", len(report.Sources), report.TotalSources)
	}
	if gen.lastRequest != nil {
		t.Error("generator was invoked despite empty retrieval")
	}
}

func TestAnswer_EmptyQuery(t *testing.T) {
	store := newTestStore(t)
	orch := New(store, embed.NewHashingEmbedder(64), &fakeGenerator{})

	for _, query := range []string{"", "   ", "\n\t"} {
		if _, err := orch.Answer(context.Background(), query); !errors.Is(err, models.ErrValidation) {
			t.Errorf("Answer(%q) error = %v, want ErrValidation", query, err)
		}
	}
}

func TestAnswer_GeneratesWithCitations(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	seedDocument(t, store, embedder, "/docs/sky.txt",
		"The sky is blue during the day.",
		"At sunset the sky turns orange.")
	gen := &fakeGenerator{result: &models.GenerationResult{Text: "The sky is blue.", TokensUsed: 4}}
	// Threshold -1 keeps every fragment regardless of hashing-score overlap
	orch := New(store, embedder, gen, WithThreshold(-1))

	query := "The sky is blue during the day."
	report, err := orch.Answer(context.Background(), query)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if report.Answer != "The sky is blue." {
		t.Errorf("Answer = %q, want generated text", report.Answer)
	}
	if !report.SourcesFound {
		t.Error("SourcesFound = false, want true")
	}
	if report.TotalSources != 2 || len(report.Sources) != 2 {
		t.Fatalf("TotalSources = %d (len %d), want 2", report.TotalSources, len(report.Sources))
	}

	// The query matches the first fragment verbatim, so it must rank first
	// with a perfect score under the unit-vector contract
	first := report.Sources[0]
	if first.Excerpt != "The sky is blue during the day." {
		t.Errorf("first source excerpt = %q, want exact match ranked first", first.Excerpt)
	}
	if first.Score < 0.999 {
		t.Errorf("exact match score = %f, want ~1.0", first.Score)
	}
	if first.FileName != "sky.txt" {
		t.Errorf("FileName = %q, want sky.txt", first.FileName)
	}
	if first.Path != "/docs/sky.txt" {
		t.Errorf("Path = %q, want /docs/sky.txt", first.Path)
	}

	if report.AverageScore <= 0 || report.AverageScore > 1 {
		t.Errorf("AverageScore = %f, want in (0, 1]", report.AverageScore)
	}

	// Generation was grounded in the retrieved fragments, retrieval order
	if gen.lastRequest == nil {
		t.Fatal("generator was not invoked")
	}
	if len(gen.lastRequest.Contexts) != 2 {
		t.Fatalf("generation contexts = %d, want 2", len(gen.lastRequest.Contexts))
	}
	if gen.lastRequest.Contexts[0] != first.Excerpt {
		t.Error("generation contexts not in retrieval order")
	}
}

func TestAnswer_FallbackOnGenerationFailure(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	seedDocument(t, store, embedder, "/docs/facts.txt", "Water boils at one hundred degrees.")
	gen := &fakeGenerator{err: fmt.Errorf("%w: model exploded", models.ErrGeneration)}
	orch := New(store, embedder, gen, WithThreshold(-1))

	report, err := orch.Answer(context.Background(), "Water boils at one hundred degrees.")
	if err != nil {
		t.Fatalf("Answer() error = %v, want degraded report", err)
	}
	if !strings.Contains(report.Answer, "Water boils at one hundred degrees.") {
		t.Errorf("fallback answer does not quote the retrieved excerpt: %q", report.Answer)
	}
	if !report.SourcesFound {
		t.Error("SourcesFound = false on fallback, want true")
	}
	if len(report.Sources) != 1 {
		t.Errorf("fallback kept %d sources, want 1", len(report.Sources))
	}
}

func TestAnswer_StrictPropagatesGenerationFailure(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	seedDocument(t, store, embedder, "/docs/facts.txt", "Water boils at one hundred degrees.")
	gen := &fakeGenerator{err: fmt.Errorf("%w: model exploded", models.ErrGeneration)}
	orch := New(store, embedder, gen, WithThreshold(-1), WithStrict(true))

	_, err := orch.Answer(context.Background(), "Water boils at one hundred degrees.")
	if !errors.Is(err, models.ErrGeneration) {
		t.Errorf("Answer() error = %v, want ErrGeneration in strict mode", err)
	}
}

func TestAnswer_CancellationNeverFallsBack(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	seedDocument(t, store, embedder, "/docs/facts.txt", "Water boils at one hundred degrees.")
	gen := &fakeGenerator{err: context.Canceled}
	orch := New(store, embedder, gen, WithThreshold(-1))

	_, err := orch.Answer(context.Background(), "Water boils at one hundred degrees.")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Answer() error = %v, want context.Canceled propagated", err)
	}
}

func TestSearch_RecordsEverySearch(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	seedDocument(t, store, embedder, "/docs/a.txt", "Alpha fragment content here.")
	orch := New(store, embedder, &fakeGenerator{}, WithThreshold(-1))

	if _, err := orch.Search(context.Background(), "alpha content", 0); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if _, err := orch.Search(context.Background(), "nothing matches this", 3); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	records, err := store.RecentSearches(10)
	if err != nil {
		t.Fatalf("RecentSearches() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("recorded %d searches, want 2", len(records))
	}
}

func TestSearch_TopKLimit(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	seedDocument(t, store, embedder, "/docs/many.txt",
		"First fragment.", "Second fragment.", "Third fragment.", "Fourth fragment.")
	orch := New(store, embedder, &fakeGenerator{}, WithThreshold(-1))

	results, err := orch.Search(context.Background(), "fragment", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search(topK=2) returned %d results, want 2", len(results))
	}
}

func TestClarifyingQuestions(t *testing.T) {
	store := newTestStore(t)
	gen := &fakeGenerator{questions: []string{"Which version?", "Which platform?"}}
	orch := New(store, embed.NewHashingEmbedder(64), gen)

	questions, err := orch.ClarifyingQuestions(context.Background(), "how do I install it")
	if err != nil {
		t.Fatalf("ClarifyingQuestions() error = %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}

	if _, err := orch.ClarifyingQuestions(context.Background(), "  "); !errors.Is(err, models.ErrValidation) {
		t.Errorf("ClarifyingQuestions(blank) error = %v, want ErrValidation", err)
	}
}

func TestStatistics(t *testing.T) {
	store := newTestStore(t)
	embedder := embed.NewHashingEmbedder(64)
	seedDocument(t, store, embedder, "/docs/a.txt", "One fragment.", "Two fragments.")
	seedDocument(t, store, embedder, "/docs/b.md", "Markdown fragment.")
	orch := New(store, embedder, &fakeGenerator{})

	stats, err := orch.Statistics()
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.DocumentCount != 2 {
		t.Errorf("DocumentCount = %d, want 2", stats.DocumentCount)
	}
	if stats.FragmentCount != 3 {
		t.Errorf("FragmentCount = %d, want 3", stats.FragmentCount)
	}
	if stats.FileTypeCounts["txt"] != 1 || stats.FileTypeCounts["md"] != 1 {
		t.Errorf("FileTypeCounts = %v, want txt:1 md:1", stats.FileTypeCounts)
	}
}
