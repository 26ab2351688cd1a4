// ABOUTME: Local language model: a trainable bigram model with a word tokenizer
// ABOUTME: Laplace-smoothed log frequencies serve as logits for the sampling loop
package generate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Model produces next-token logits for a token sequence.
//
// Forward runs one pass and returns one logit per vocabulary entry for the
// position following the last token. Implementations must be safe for
// concurrent calls or serialize internally.
type Model interface {
	Forward(ctx context.Context, tokens []int) ([]float64, error)
	VocabSize() int
	ContextLimit() int
}

// Tokenizer maps between text and token ids. The mapping is deterministic
// and invertible for in-vocabulary, whitespace-normalized text.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
	EOS() int
}

// Reserved vocabulary entries of the word tokenizer
const (
	eosWord = "<eos>"
	unkWord = "<unk>"
)

// ngramContextLimit bounds the token window the local model accepts
const ngramContextLimit = 2048

// WordTokenizer is a whitespace word-level tokenizer over a fixed
// vocabulary. Ids 0 and 1 are reserved for <eos> and <unk>; the remaining
// vocabulary comes from the corpus, sorted for a stable assignment.
type WordTokenizer struct {
	words []string
	ids   map[string]int
}

// NewWordTokenizer builds a tokenizer whose vocabulary is every
// whitespace-delimited word appearing in the corpus.
func NewWordTokenizer(corpus []string) *WordTokenizer {
	seen := make(map[string]struct{})
	for _, text := range corpus {
		for _, word := range strings.Fields(text) {
			seen[word] = struct{}{}
		}
	}

	unique := make([]string, 0, len(seen))
	for word := range seen {
		unique = append(unique, word)
	}
	sort.Strings(unique)

	t := &WordTokenizer{
		words: make([]string, 0, len(unique)+2),
		ids:   make(map[string]int, len(unique)+2),
	}
	for _, word := range append([]string{eosWord, unkWord}, unique...) {
		t.ids[word] = len(t.words)
		t.words = append(t.words, word)
	}
	return t
}

// Encode splits text on whitespace and maps each word to its id.
// Out-of-vocabulary words map to <unk>.
func (t *WordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, len(fields))
	for i, word := range fields {
		id, ok := t.ids[word]
		if !ok {
			id = t.ids[unkWord]
		}
		tokens[i] = id
	}
	return tokens
}

// Decode joins the words for the given ids with single spaces. The <eos>
// marker and out-of-range ids are skipped.
func (t *WordTokenizer) Decode(tokens []int) string {
	words := make([]string, 0, len(tokens))
	for _, id := range tokens {
		if id == t.EOS() || id < 0 || id >= len(t.words) {
			continue
		}
		words = append(words, t.words[id])
	}
	return strings.Join(words, " ")
}

// EOS returns the end-of-sequence token id
func (t *WordTokenizer) EOS() int {
	return 0
}

// VocabSize returns the number of vocabulary entries
func (t *WordTokenizer) VocabSize() int {
	return len(t.words)
}

// NgramModel is a bigram language model over a fixed vocabulary. Logits are
// Laplace-smoothed log frequencies of the transition from the last token.
// The count tables are the shared model weights: built once, then guarded
// by a mutex so concurrent Forward calls are safe.
type NgramModel struct {
	mu        sync.RWMutex
	counts    map[int]map[int]int
	totals    map[int]int
	vocabSize int
}

// NewNgramModel creates an untrained bigram model for a vocabulary
func NewNgramModel(vocabSize int) *NgramModel {
	return &NgramModel{
		counts:    make(map[int]map[int]int),
		totals:    make(map[int]int),
		vocabSize: vocabSize,
	}
}

// Train counts the consecutive token pairs of one sequence. Callers append
// the EOS token first if the sequence should teach the model to stop.
func (m *NgramModel) Train(tokens []int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i+1 < len(tokens); i++ {
		prev, next := tokens[i], tokens[i+1]
		if prev < 0 || prev >= m.vocabSize || next < 0 || next >= m.vocabSize {
			continue
		}
		row, ok := m.counts[prev]
		if !ok {
			row = make(map[int]int)
			m.counts[prev] = row
		}
		row[next]++
		m.totals[prev]++
	}
}

// Forward returns the smoothed log-probability of every vocabulary entry
// following the last token of the sequence.
func (m *NgramModel) Forward(_ context.Context, tokens []int) ([]float64, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("forward pass needs at least one token")
	}
	prev := tokens[len(tokens)-1]
	if prev < 0 || prev >= m.vocabSize {
		return nil, fmt.Errorf("token %d out of vocabulary range [0, %d)", prev, m.vocabSize)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	row := m.counts[prev]
	denom := float64(m.totals[prev] + m.vocabSize)

	logits := make([]float64, m.vocabSize)
	for i := range logits {
		logits[i] = math.Log(float64(row[i]+1) / denom)
	}
	return logits, nil
}

// VocabSize returns the vocabulary size the model was built for
func (m *NgramModel) VocabSize() int {
	return m.vocabSize
}

// ContextLimit returns the maximum token window the model accepts
func (m *NgramModel) ContextLimit() int {
	return ngramContextLimit
}
