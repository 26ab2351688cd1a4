// ABOUTME: Indexing orchestrator: discover files, extract, chunk, embed, persist
// ABOUTME: Content hashing skips unchanged files; replacement is one transaction
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/docent-dev/docent/internal/chunker"
	"github.com/docent-dev/docent/internal/embed"
	"github.com/docent-dev/docent/internal/extract"
	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/storage/sqlite"
)

// ProgressFunc reports batch indexing progress after each file
type ProgressFunc func(path string, processed, total int)

// Indexer coordinates extraction, chunking, embedding, and persistence for
// one documents root. Indexing is single-writer: run one batch at a time.
type Indexer struct {
	store    *sqlite.Storage
	registry *extract.Registry
	chunker  *chunker.Chunker
	embedder embed.Embedder
	root     string
}

// New creates an indexer for the documents under root
func New(store *sqlite.Storage, registry *extract.Registry, ch *chunker.Chunker, embedder embed.Embedder, root string) *Indexer {
	return &Indexer{
		store:    store,
		registry: registry,
		chunker:  ch,
		embedder: embedder,
		root:     root,
	}
}

// Root returns the documents root this indexer walks
func (ix *Indexer) Root() string {
	return ix.root
}

// IndexAll walks the documents root and indexes every supported file whose
// content changed since the last run; force indexes them all regardless.
// One bad file never aborts the batch: its error is logged and the walk
// continues. Cancellation is polled at file boundaries, so the document in
// flight always finishes. Returns the number of successfully indexed
// documents.
func (ix *Indexer) IndexAll(ctx context.Context, force bool, progress ProgressFunc) (int, error) {
	files, err := ix.discover()
	if err != nil {
		return 0, fmt.Errorf("discovering files under %s: %w", ix.root, err)
	}

	indexed := 0
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		needs := true
		if !force {
			needs, err = ix.NeedsReindexing(path)
			if err != nil {
				log.Printf("Warning: cannot check %s, skipping: %v", path, err)
				needs = false
			}
		}

		if needs {
			ok, err := ix.IndexDocument(ctx, path)
			if err != nil {
				log.Printf("Warning: indexing %s failed: %v", path, err)
			} else if ok {
				indexed++
			}
		}

		if progress != nil {
			progress(path, i+1, len(files))
		}
	}

	return indexed, nil
}

// IndexDocument extracts, chunks, embeds, and atomically persists one file.
// Unsupported, unreadable, or empty files are skipped with a false return
// and no error; persistence failures propagate after the transaction rolls
// back. Fragments whose embedding failed are excluded and the survivors
// renumbered, never stored with a placeholder vector.
func (ix *Indexer) IndexDocument(ctx context.Context, path string) (bool, error) {
	ext := models.FileTypeOf(path)
	extractor, ok := ix.registry.Get(ext)
	if !ok {
		log.Printf("Warning: no extractor for %q, skipping %s", ext, path)
		return false, nil
	}

	text, err := extractor.Extract(path)
	if err != nil {
		log.Printf("Warning: extraction failed for %s, skipping: %v", path, err)
		return false, nil
	}
	if strings.TrimSpace(text) == "" {
		log.Printf("Warning: %v in %s, skipping", models.ErrEmptyContent, path)
		return false, nil
	}

	chunks := ix.chunker.Chunk(text)
	if len(chunks) == 0 {
		log.Printf("Warning: %v after chunking %s, skipping", models.ErrEmptyContent, path)
		return false, nil
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return false, fmt.Errorf("%w: embedding %s: %v", models.ErrEmbedding, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	hash, err := hashFile(path)
	if err != nil {
		return false, fmt.Errorf("hashing %s: %w", path, err)
	}

	doc, err := models.NewDocument(path, hash, info.Size(), info.ModTime().UTC())
	if err != nil {
		return false, fmt.Errorf("building document for %s: %w", path, err)
	}

	fragments := make([]models.Fragment, 0, len(chunks))
	for i, content := range chunks {
		if vectors[i] == nil {
			log.Printf("Warning: excluding chunk %d of %s: no embedding", i, path)
			continue
		}
		frag, err := models.NewFragment(doc.ID, len(fragments), content, chunker.EstimateTokens(content))
		if err != nil {
			return false, fmt.Errorf("building fragment %d for %s: %w", i, path, err)
		}
		frag.Embedding = vectors[i]
		fragments = append(fragments, *frag)
	}
	if len(fragments) == 0 {
		log.Printf("Warning: every embedding failed for %s, skipping", path)
		return false, nil
	}

	if err := ix.store.ReplaceDocument(doc, fragments); err != nil {
		return false, err
	}

	return true, nil
}

// NeedsReindexing reports whether a path should be indexed: true when no
// document exists for it, or when the file's content hash changed.
func (ix *Indexer) NeedsReindexing(path string) (bool, error) {
	doc, err := ix.store.GetDocumentByPath(path)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return true, nil
	}

	hash, err := hashFile(path)
	if err != nil {
		return false, err
	}
	return hash != doc.ContentHash, nil
}

// discover walks the root collecting supported files in lexical order.
// Hidden directories are not descended into.
func (ix *Indexer) discover() ([]string, error) {
	var files []string

	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != ix.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if ix.registry.Supports(models.FileTypeOf(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// hashFile computes the streaming sha-256 digest of a file's bytes
func hashFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
