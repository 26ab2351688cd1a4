// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Provides document replacement, vector search, and statistics in one facade
package sqlite

import (
	"fmt"
	"sync"
	"time"

	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/vector"
)

// recentSearchWindow is the trailing window counted as "recent" in statistics.
const recentSearchWindow = 24 * time.Hour

// Storage manages all persistent data for the document index using SQLite
type Storage struct {
	db        *DB
	documents *DocumentStore
	fragments *FragmentStore
	searches  *SearchLogStore
	mu        sync.RWMutex
}

// NewStorage initializes storage at the default database path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:        db,
		documents: NewDocumentStore(db),
		fragments: NewFragmentStore(db),
		searches:  NewSearchLogStore(db),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database handle for advanced usage
func (s *Storage) DB() *DB {
	return s.db
}

// ReplaceDocument atomically replaces a document and all its fragments.
// Any previously indexed version of the same path is removed in the same
// transaction, so readers never observe a mix of old and new fragments.
func (s *Storage) ReplaceDocument(doc *models.Document, fragments []models.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrPersistence, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Cascade removes the old document's fragments
	if _, err = tx.Exec("DELETE FROM documents WHERE path = ?", doc.Path); err != nil {
		return fmt.Errorf("%w: failed to remove previous version: %v", models.ErrPersistence, err)
	}

	_, err = tx.Exec(`
		INSERT INTO documents (id, path, file_type, size_bytes, content_hash, modified_at, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Path, doc.FileType, doc.SizeBytes, doc.ContentHash, doc.ModifiedAt, doc.IndexedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to insert document: %v", models.ErrPersistence, err)
	}

	for i := range fragments {
		frag := &fragments[i]
		_, err = tx.Exec(`
			INSERT INTO fragments (id, document_id, seq, content, token_count, embedding, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, frag.ID, frag.DocumentID, frag.Seq, frag.Content, frag.TokenCount, vector.ToBlob(frag.Embedding), frag.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: failed to insert fragment %d: %v", models.ErrPersistence, frag.Seq, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", models.ErrPersistence, err)
	}

	return nil
}

// GetDocumentByPath retrieves a document by path, returning nil if not indexed
func (s *Storage) GetDocumentByPath(path string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents.GetByPath(path)
}

// GetDocumentByID retrieves a document by ID, returning nil if not found
func (s *Storage) GetDocumentByID(id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents.GetByID(id)
}

// ListDocuments returns all indexed documents ordered by path
func (s *Storage) ListDocuments() ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents.List()
}

// DeleteDocument removes a document and its fragments
func (s *Storage) DeleteDocument(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documents.DeleteByPath(path)
}

// FragmentsByDocument returns a document's fragments ordered by sequence
func (s *Storage) FragmentsByDocument(documentID string) ([]models.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragments.GetByDocument(documentID)
}

// SearchFragments performs a brute-force similarity search over all fragments
func (s *Storage) SearchFragments(queryVector []float32, topK int, threshold float64) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragments.Search(queryVector, topK, threshold)
}

// FragmentTexts returns every stored fragment's content in corpus order
func (s *Storage) FragmentTexts() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragments.AllTexts()
}

// RecordSearch logs an executed search for statistics
func (s *Storage) RecordSearch(record *models.SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches.Save(record)
}

// RecentSearches returns the most recent searches, newest first
func (s *Storage) RecentSearches(limit int) ([]models.SearchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searches.Recent(limit)
}

// Statistics aggregates counts and timestamps describing the index
func (s *Storage) Statistics() (*models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docCount, err := s.documents.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	fragCount, err := s.fragments.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count fragments: %w", err)
	}

	fileTypes, err := s.documents.CountByFileType()
	if err != nil {
		return nil, fmt.Errorf("failed to count file types: %w", err)
	}

	lastIndexed, err := s.documents.LastIndexedAt()
	if err != nil {
		return nil, fmt.Errorf("failed to get last indexed time: %w", err)
	}

	recentSearches, err := s.searches.CountSince(time.Now().Add(-recentSearchWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent searches: %w", err)
	}

	stats := &models.Statistics{
		DocumentCount:     docCount,
		FragmentCount:     fragCount,
		RecentSearchCount: recentSearches,
		LastIndexedAt:     lastIndexed,
		FileTypeCounts:    fileTypes,
	}
	if docCount > 0 {
		stats.AvgFragmentsPerDocument = float64(fragCount) / float64(docCount)
	}

	return stats, nil
}
