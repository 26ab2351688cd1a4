// ABOUTME: Tests for the hashing embedder
// ABOUTME: Verifies unit norm, determinism, dimension, and batch exclusion slots
package embed

import (
	"context"
	"math"
	"testing"

	"github.com/docent-dev/docent/internal/vector"
)

func TestHashingEmbedder_UnitNorm(t *testing.T) {
	e := NewHashingEmbedder(128)
	ctx := context.Background()

	texts := []string{
		"a single word",
		"The quick brown fox jumps over the lazy dog.",
		"numbers 123 and 456 count too",
	}

	for _, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			t.Fatalf("Embed(%q) error = %v", text, err)
		}
		if len(vec) != 128 {
			t.Errorf("Embed(%q) dimension = %d, want 128", text, len(vec))
		}
		if mag := vector.Magnitude(vec); math.Abs(mag-1) > 1e-5 {
			t.Errorf("Embed(%q) magnitude = %v, want 1", text, mag)
		}
	}
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "deterministic output please")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := e.Embed(ctx, "deterministic output please")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Embed() not deterministic at index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestHashingEmbedder_SimilarityOrdering(t *testing.T) {
	e := NewHashingEmbedder(256)
	ctx := context.Background()

	base, _ := e.Embed(ctx, "the cat sat on the mat")
	near, _ := e.Embed(ctx, "the cat sat on the rug")
	far, _ := e.Embed(ctx, "quantum chromodynamics lattice simulation")

	simNear := vector.Dot(base, near)
	simFar := vector.Dot(base, far)
	if simNear <= simFar {
		t.Errorf("similar text scored %v, dissimilar scored %v; want similar > dissimilar", simNear, simFar)
	}

	if self := vector.Dot(base, base); math.Abs(self-1) > 1e-5 {
		t.Errorf("self similarity = %v, want 1", self)
	}
}

func TestHashingEmbedder_EmptyText(t *testing.T) {
	e := NewHashingEmbedder(64)
	if _, err := e.Embed(context.Background(), "   \t\n "); err == nil {
		t.Fatal("Embed(whitespace) expected error, got nil")
	}
}

func TestHashingEmbedder_BatchExcludesFailures(t *testing.T) {
	e := NewHashingEmbedder(64)
	vectors, err := e.EmbedBatch(context.Background(), []string{"good text", "", "more good text"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("EmbedBatch() returned %d slots, want 3", len(vectors))
	}
	if vectors[0] == nil || vectors[2] == nil {
		t.Error("EmbedBatch() good items should have vectors")
	}
	if vectors[1] != nil {
		t.Error("EmbedBatch() failing item should have a nil slot, not a placeholder vector")
	}
}

func TestHashingEmbedder_DefaultDimension(t *testing.T) {
	e := NewHashingEmbedder(0)
	if e.Dimension() != DefaultDimension {
		t.Errorf("Dimension() = %d, want %d", e.Dimension(), DefaultDimension)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"it's fine", []string{"it's", "fine"}},
		{"v2 release 2024", []string{"v", "2", "release", "2024"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNewEmbedder_Factory(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErr  bool
		wantDims int
	}{
		{"default is hashing", Options{Dimension: 32}, false, 32},
		{"explicit hashing", Options{Provider: ProviderHashing, Dimension: 64}, false, 64},
		{"openai without key", Options{Provider: ProviderOpenAI}, true, 0},
		{"ollama", Options{Provider: ProviderOllama, Dimension: 768}, false, 768},
		{"unknown provider", Options{Provider: "word2vec"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEmbedder(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEmbedder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if e.Dimension() != tt.wantDims {
				t.Errorf("Dimension() = %d, want %d", e.Dimension(), tt.wantDims)
			}
		})
	}
}
