// ABOUTME: Document and Fragment models for the indexed corpus
// ABOUTME: Core data structures for retrieval-augmented question answering
package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document represents one indexed source file
type Document struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	FileType    string    `json:"file_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentHash string    `json:"content_hash"`
	ModifiedAt  time.Time `json:"modified_at"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// Fragment represents a contiguous slice of a document's text, the unit of retrieval.
// Fragments are exclusively owned by their Document and removed with it.
type Fragment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Seq        int       `json:"seq"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count"`
	Embedding  []float32 `json:"embedding,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDocument creates a Document for a file path with validation
func NewDocument(path, contentHash string, sizeBytes int64, modifiedAt time.Time) (*Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("document path cannot be empty")
	}
	if contentHash == "" {
		return nil, errors.New("content hash cannot be empty")
	}
	return &Document{
		ID:          generateDocumentID(),
		Path:        path,
		FileType:    FileTypeOf(path),
		SizeBytes:   sizeBytes,
		ContentHash: contentHash,
		ModifiedAt:  modifiedAt,
		IndexedAt:   time.Now().UTC(),
	}, nil
}

// NewFragment creates a Fragment bound to a document with validation
func NewFragment(documentID string, seq int, content string, tokenCount int) (*Fragment, error) {
	if documentID == "" {
		return nil, errors.New("fragment document id cannot be empty")
	}
	if seq < 0 {
		return nil, fmt.Errorf("fragment seq must be >= 0, got %d", seq)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("fragment content cannot be empty")
	}
	return &Fragment{
		ID:         generateFragmentID(),
		DocumentID: documentID,
		Seq:        seq,
		Content:    content,
		TokenCount: tokenCount,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// FileName returns the base name of the document's path
func (d *Document) FileName() string {
	return filepath.Base(d.Path)
}

// FileTypeOf returns the lowercase extension without the leading dot
func FileTypeOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return strings.TrimPrefix(ext, ".")
}

// generateDocumentID generates a unique document identifier
func generateDocumentID() string {
	return fmt.Sprintf("doc_%s", uuid.New().String())
}

// generateFragmentID generates a unique fragment identifier
func generateFragmentID() string {
	return fmt.Sprintf("frag_%s", uuid.New().String())
}
