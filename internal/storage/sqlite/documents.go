// ABOUTME: Document storage operations for SQLite
// ABOUTME: Handles CRUD operations for indexed source documents
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/docent-dev/docent/internal/models"
)

// DocumentStore handles document persistence
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new document store
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save inserts or updates a document
func (s *DocumentStore) Save(doc *models.Document) error {
	query := `
		INSERT INTO documents (id, path, file_type, size_bytes, content_hash, modified_at, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			file_type = excluded.file_type,
			size_bytes = excluded.size_bytes,
			content_hash = excluded.content_hash,
			modified_at = excluded.modified_at,
			indexed_at = excluded.indexed_at
	`

	_, err := s.db.Exec(query,
		doc.ID,
		doc.Path,
		doc.FileType,
		doc.SizeBytes,
		doc.ContentHash,
		doc.ModifiedAt,
		doc.IndexedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// GetByPath retrieves a document by its file path, returning nil if not indexed
func (s *DocumentStore) GetByPath(path string) (*models.Document, error) {
	query := `
		SELECT id, path, file_type, size_bytes, content_hash, modified_at, indexed_at
		FROM documents
		WHERE path = ?
	`

	doc := &models.Document{}
	err := s.db.QueryRow(query, path).Scan(
		&doc.ID,
		&doc.Path,
		&doc.FileType,
		&doc.SizeBytes,
		&doc.ContentHash,
		&doc.ModifiedAt,
		&doc.IndexedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document by path: %w", err)
	}

	return doc, nil
}

// GetByID retrieves a document by its ID, returning nil if not found
func (s *DocumentStore) GetByID(id string) (*models.Document, error) {
	query := `
		SELECT id, path, file_type, size_bytes, content_hash, modified_at, indexed_at
		FROM documents
		WHERE id = ?
	`

	doc := &models.Document{}
	err := s.db.QueryRow(query, id).Scan(
		&doc.ID,
		&doc.Path,
		&doc.FileType,
		&doc.SizeBytes,
		&doc.ContentHash,
		&doc.ModifiedAt,
		&doc.IndexedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document by id: %w", err)
	}

	return doc, nil
}

// List returns all indexed documents ordered by path
func (s *DocumentStore) List() ([]models.Document, error) {
	query := `
		SELECT id, path, file_type, size_bytes, content_hash, modified_at, indexed_at
		FROM documents
		ORDER BY path ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanDocuments(rows)
}

// DeleteByPath removes a document and its fragments (via cascade)
func (s *DocumentStore) DeleteByPath(path string) error {
	result, err := s.db.Exec("DELETE FROM documents WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("document not found: %s", path)
	}

	return nil
}

// Count returns the total number of indexed documents
func (s *DocumentStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// CountByFileType returns document counts grouped by file type
func (s *DocumentStore) CountByFileType() (map[string]int, error) {
	rows, err := s.db.Query("SELECT file_type, COUNT(*) FROM documents GROUP BY file_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count documents by type: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var fileType string
		var count int
		if err := rows.Scan(&fileType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts[fileType] = count
	}

	return counts, rows.Err()
}

// LastIndexedAt returns the most recent indexing timestamp, or nil when nothing is indexed
func (s *DocumentStore) LastIndexedAt() (*time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRow("SELECT MAX(indexed_at) FROM documents").Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to get last indexed time: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// scanDocuments scans multiple document rows
func scanDocuments(rows *sql.Rows) ([]models.Document, error) {
	var docs []models.Document

	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.Path,
			&doc.FileType,
			&doc.SizeBytes,
			&doc.ContentHash,
			&doc.ModifiedAt,
			&doc.IndexedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
