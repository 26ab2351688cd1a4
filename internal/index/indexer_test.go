// ABOUTME: Tests for the indexing orchestrator
// ABOUTME: Covers hash-skip reindexing, atomic replacement, exclusion, and cancellation
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docent-dev/docent/internal/chunker"
	"github.com/docent-dev/docent/internal/embed"
	"github.com/docent-dev/docent/internal/extract"
	"github.com/docent-dev/docent/internal/storage/sqlite"
)

func newTestIndexer(t *testing.T, root string) (*Indexer, *sqlite.Storage) {
	t.Helper()

	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ch, err := chunker.New(100, 20)
	if err != nil {
		t.Fatalf("chunker.New() error = %v", err)
	}

	embedder := embed.NewHashingEmbedder(64)
	return New(store, extract.NewRegistry(), ch, embedder, root), store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

func TestIndexDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "The sky is blue. Grass is green. Water is clear.")
	ix, store := newTestIndexer(t, dir)

	ok, err := ix.IndexDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if !ok {
		t.Fatal("IndexDocument() = false, want true")
	}

	doc, err := store.GetDocumentByPath(path)
	if err != nil {
		t.Fatalf("GetDocumentByPath() error = %v", err)
	}
	if doc == nil {
		t.Fatal("document not stored")
	}
	if doc.FileType != "txt" {
		t.Errorf("FileType = %q, want txt", doc.FileType)
	}
	if len(doc.ContentHash) != 64 {
		t.Errorf("ContentHash length = %d, want 64 hex chars", len(doc.ContentHash))
	}

	frags, err := store.FragmentsByDocument(doc.ID)
	if err != nil {
		t.Fatalf("FragmentsByDocument() error = %v", err)
	}
	if len(frags) == 0 {
		t.Fatal("no fragments stored")
	}
	for i, frag := range frags {
		if frag.Seq != i {
			t.Errorf("fragment %d has seq %d, want contiguous", i, frag.Seq)
		}
		if len(frag.Embedding) != 64 {
			t.Errorf("fragment %d embedding length = %d, want 64", i, len(frag.Embedding))
		}
		if frag.TokenCount <= 0 {
			t.Errorf("fragment %d token count = %d, want positive", i, frag.TokenCount)
		}
	}
}

func TestIndexDocument_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "binary.exe", "not indexable")
	ix, _ := newTestIndexer(t, dir)

	ok, err := ix.IndexDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if ok {
		t.Error("IndexDocument() = true for unsupported extension, want false")
	}
}

func TestIndexDocument_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "   \n\t ")
	ix, _ := newTestIndexer(t, dir)

	ok, err := ix.IndexDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if ok {
		t.Error("IndexDocument() = true for empty file, want false")
	}
}

func TestNeedsReindexing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "Original content here.")
	ix, _ := newTestIndexer(t, dir)

	needs, err := ix.NeedsReindexing(path)
	if err != nil {
		t.Fatalf("NeedsReindexing() error = %v", err)
	}
	if !needs {
		t.Error("NeedsReindexing() = false for unindexed file, want true")
	}

	if _, err := ix.IndexDocument(context.Background(), path); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}

	needs, err = ix.NeedsReindexing(path)
	if err != nil {
		t.Fatalf("NeedsReindexing() error = %v", err)
	}
	if needs {
		t.Error("NeedsReindexing() = true for unchanged file, want false")
	}

	writeFile(t, dir, "doc.txt", "Changed content here.")
	needs, err = ix.NeedsReindexing(path)
	if err != nil {
		t.Fatalf("NeedsReindexing() error = %v", err)
	}
	if !needs {
		t.Error("NeedsReindexing() = false after content change, want true")
	}
}

func TestIndexDocument_UnchangedKeepsFragments(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "Stable text that does not change between runs.")
	ix, store := newTestIndexer(t, dir)

	ctx := context.Background()
	if _, err := ix.IndexDocument(ctx, path); err != nil {
		t.Fatalf("first IndexDocument() error = %v", err)
	}

	first, err := store.GetDocumentByPath(path)
	if err != nil {
		t.Fatalf("GetDocumentByPath() error = %v", err)
	}
	firstFrags, err := store.FragmentsByDocument(first.ID)
	if err != nil {
		t.Fatalf("FragmentsByDocument() error = %v", err)
	}

	// The batch path consults NeedsReindexing and skips the unchanged file
	count, err := ix.IndexAll(ctx, false, nil)
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	if count != 0 {
		t.Errorf("IndexAll() indexed %d unchanged documents, want 0", count)
	}

	second, err := store.GetDocumentByPath(path)
	if err != nil {
		t.Fatalf("GetDocumentByPath() error = %v", err)
	}
	if second.ContentHash != first.ContentHash {
		t.Errorf("content hash changed: %s -> %s", first.ContentHash, second.ContentHash)
	}
	secondFrags, err := store.FragmentsByDocument(second.ID)
	if err != nil {
		t.Fatalf("FragmentsByDocument() error = %v", err)
	}
	if len(secondFrags) != len(firstFrags) {
		t.Errorf("fragment count changed: %d -> %d", len(firstFrags), len(secondFrags))
	}
}

func TestIndexDocument_ChangeReplacesFragments(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "The first version of the document.")
	ix, store := newTestIndexer(t, dir)

	ctx := context.Background()
	if _, err := ix.IndexDocument(ctx, path); err != nil {
		t.Fatalf("first IndexDocument() error = %v", err)
	}
	firstDoc, _ := store.GetDocumentByPath(path)
	firstFrags, _ := store.FragmentsByDocument(firstDoc.ID)

	oldIDs := make(map[string]bool)
	for _, f := range firstFrags {
		oldIDs[f.ID] = true
	}

	writeFile(t, dir, "doc.txt", "A rewritten second version. It talks about other things entirely.")
	ok, err := ix.IndexDocument(ctx, path)
	if err != nil {
		t.Fatalf("second IndexDocument() error = %v", err)
	}
	if !ok {
		t.Fatal("second IndexDocument() = false, want true")
	}

	secondDoc, err := store.GetDocumentByPath(path)
	if err != nil {
		t.Fatalf("GetDocumentByPath() error = %v", err)
	}
	if secondDoc.ContentHash == firstDoc.ContentHash {
		t.Error("content hash unchanged after rewrite")
	}

	secondFrags, err := store.FragmentsByDocument(secondDoc.ID)
	if err != nil {
		t.Fatalf("FragmentsByDocument() error = %v", err)
	}
	for _, f := range secondFrags {
		if oldIDs[f.ID] {
			t.Errorf("old fragment %s survived replacement", f.ID)
		}
	}

	// The old document's fragments are gone entirely
	orphans, err := store.FragmentsByDocument(firstDoc.ID)
	if err != nil {
		t.Fatalf("FragmentsByDocument(old) error = %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("%d fragments survived under the replaced document", len(orphans))
	}
}

func TestIndexAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Document about the weather. It rains often in spring.")
	writeFile(t, dir, "b.md", "# Title\n\nDocument about gardening and soil quality.")
	writeFile(t, dir, "skip.bin", "unsupported format")
	writeFile(t, dir, "empty.txt", "")
	ix, store := newTestIndexer(t, dir)

	var progressCalls int
	var lastProcessed, lastTotal int
	count, err := ix.IndexAll(context.Background(), false, func(path string, processed, total int) {
		progressCalls++
		lastProcessed, lastTotal = processed, total
	})
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}

	// The empty file is discovered but skipped; the .bin never discovered
	if count != 2 {
		t.Errorf("IndexAll() = %d, want 2", count)
	}
	if progressCalls != 3 {
		t.Errorf("progress called %d times, want 3", progressCalls)
	}
	if lastProcessed != lastTotal || lastTotal != 3 {
		t.Errorf("final progress = %d/%d, want 3/3", lastProcessed, lastTotal)
	}

	stats, err := store.Statistics()
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.DocumentCount != 2 {
		t.Errorf("DocumentCount = %d, want 2", stats.DocumentCount)
	}
}

func TestIndexAll_Cancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, dir, fmt.Sprintf("doc%d.txt", i), "Some indexable content.")
	}
	ix, _ := newTestIndexer(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := ix.IndexAll(ctx, false, nil)
	if err != context.Canceled {
		t.Errorf("IndexAll() error = %v, want context.Canceled", err)
	}
	if count != 0 {
		t.Errorf("IndexAll() = %d after immediate cancel, want 0", count)
	}
}

func TestIndexAll_Force(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "Content that never changes.")
	ix, store := newTestIndexer(t, dir)

	ctx := context.Background()
	if _, err := ix.IndexAll(ctx, false, nil); err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	firstDoc, _ := store.GetDocumentByPath(path)

	count, err := ix.IndexAll(ctx, true, nil)
	if err != nil {
		t.Fatalf("forced IndexAll() error = %v", err)
	}
	if count != 1 {
		t.Errorf("forced IndexAll() = %d, want 1", count)
	}

	secondDoc, _ := store.GetDocumentByPath(path)
	if secondDoc.ID == firstDoc.ID {
		t.Error("forced reindex did not replace the document row")
	}
}

func TestIndexAll_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "visible.txt", "Visible document content.")
	hidden := filepath.Join(dir, ".cache")
	if err := os.MkdirAll(hidden, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeFile(t, hidden, "secret.txt", "Hidden document content.")
	ix, store := newTestIndexer(t, dir)

	count, err := ix.IndexAll(context.Background(), false, nil)
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	if count != 1 {
		t.Errorf("IndexAll() = %d, want 1", count)
	}

	docs, err := store.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	for _, doc := range docs {
		if strings.Contains(doc.Path, ".cache") {
			t.Errorf("hidden directory file was indexed: %s", doc.Path)
		}
	}
}

// excludingEmbedder fails items containing a marker, leaving nil slots
type excludingEmbedder struct {
	inner  *embed.HashingEmbedder
	marker string
}

func (e *excludingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.inner.Embed(ctx, text)
}

func (e *excludingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if strings.Contains(text, e.marker) {
			continue
		}
		vec, err := e.inner.Embed(ctx, text)
		if err != nil {
			continue
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *excludingEmbedder) Dimension() int { return e.inner.Dimension() }

func TestIndexDocument_ExcludesFailedEmbeddings(t *testing.T) {
	dir := t.TempDir()
	// Small target size so each sentence becomes its own chunk
	content := "First sentence stays in. POISON sentence fails embedding. Third sentence stays in."
	path := writeFile(t, dir, "doc.txt", content)

	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ch, err := chunker.New(40, 5)
	if err != nil {
		t.Fatalf("chunker.New() error = %v", err)
	}

	embedder := &excludingEmbedder{inner: embed.NewHashingEmbedder(32), marker: "POISON"}
	ix := New(store, extract.NewRegistry(), ch, embedder, dir)

	ok, err := ix.IndexDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if !ok {
		t.Fatal("IndexDocument() = false, want true")
	}

	doc, _ := store.GetDocumentByPath(path)
	frags, err := store.FragmentsByDocument(doc.ID)
	if err != nil {
		t.Fatalf("FragmentsByDocument() error = %v", err)
	}

	if len(frags) != 2 {
		t.Fatalf("stored %d fragments, want 2 (poisoned chunk excluded)", len(frags))
	}
	for i, frag := range frags {
		if frag.Seq != i {
			t.Errorf("fragment %d has seq %d, want renumbered contiguous", i, frag.Seq)
		}
		if strings.Contains(frag.Content, "POISON") {
			t.Errorf("poisoned chunk was stored: %q", frag.Content)
		}
		if frag.Embedding == nil {
			t.Errorf("fragment %d stored without embedding", i)
		}
	}
}
