// ABOUTME: Fragment storage operations including brute-force vector search
// ABOUTME: Stores fragment text and embedding BLOBs, scans all vectors for similarity
package sqlite

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/vector"
)

// FragmentStore handles fragment persistence and similarity search
type FragmentStore struct {
	db *DB
}

// NewFragmentStore creates a new fragment store
func NewFragmentStore(db *DB) *FragmentStore {
	return &FragmentStore{db: db}
}

// Save inserts a fragment with its embedding vector
func (s *FragmentStore) Save(frag *models.Fragment) error {
	query := `
		INSERT INTO fragments (id, document_id, seq, content, token_count, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		frag.ID,
		frag.DocumentID,
		frag.Seq,
		frag.Content,
		frag.TokenCount,
		vector.ToBlob(frag.Embedding),
		frag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save fragment: %w", err)
	}

	return nil
}

// GetByDocument returns all fragments of a document ordered by sequence
func (s *FragmentStore) GetByDocument(documentID string) ([]models.Fragment, error) {
	query := `
		SELECT id, document_id, seq, content, token_count, embedding, created_at
		FROM fragments
		WHERE document_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.Query(query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fragments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFragments(rows)
}

// Search performs a brute-force similarity scan over all stored fragments.
// Vectors are unit-normalized at embedding time, so the dot product is the
// cosine similarity. Results below the threshold are dropped, the rest are
// sorted by score descending (fragment ID ascending on ties) and truncated
// to topK.
func (s *FragmentStore) Search(queryVector []float32, topK int, threshold float64) ([]models.SearchResult, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", models.ErrValidation)
	}

	query := `
		SELECT f.id, f.document_id, f.seq, f.content, f.token_count, f.embedding, f.created_at,
		       d.id, d.path, d.file_type, d.size_bytes, d.content_hash, d.modified_at, d.indexed_at
		FROM fragments f
		JOIN documents d ON d.id = f.document_id
		WHERE f.embedding IS NOT NULL
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.SearchResult
	for rows.Next() {
		var frag models.Fragment
		var doc models.Document
		var blob []byte

		err := rows.Scan(
			&frag.ID,
			&frag.DocumentID,
			&frag.Seq,
			&frag.Content,
			&frag.TokenCount,
			&blob,
			&frag.CreatedAt,
			&doc.ID,
			&doc.Path,
			&doc.FileType,
			&doc.SizeBytes,
			&doc.ContentHash,
			&doc.ModifiedAt,
			&doc.IndexedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}

		vec, err := vector.FromBlob(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding for fragment %s: %w", frag.ID, err)
		}
		if len(vec) != len(queryVector) {
			return nil, fmt.Errorf("%w: query dimension %d does not match stored dimension %d",
				models.ErrValidation, len(queryVector), len(vec))
		}

		score := vector.Dot(queryVector, vec)
		if score < threshold {
			continue
		}

		frag.Embedding = vec
		results = append(results, models.SearchResult{
			Fragment: frag,
			Document: doc,
			Score:    score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fragments: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Fragment.ID < results[j].Fragment.ID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// AllTexts returns the content of every stored fragment in document and
// sequence order. Used to build the local generation model's vocabulary.
func (s *FragmentStore) AllTexts() ([]string, error) {
	rows, err := s.db.Query("SELECT content FROM fragments ORDER BY document_id, seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query fragment texts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var texts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan fragment text: %w", err)
		}
		texts = append(texts, content)
	}

	return texts, rows.Err()
}

// Count returns the total number of stored fragments
func (s *FragmentStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM fragments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fragments: %w", err)
	}
	return count, nil
}

// scanFragments scans multiple fragment rows
func scanFragments(rows *sql.Rows) ([]models.Fragment, error) {
	var frags []models.Fragment

	for rows.Next() {
		var frag models.Fragment
		var blob []byte

		err := rows.Scan(
			&frag.ID,
			&frag.DocumentID,
			&frag.Seq,
			&frag.Content,
			&frag.TokenCount,
			&blob,
			&frag.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}

		if len(blob) > 0 {
			vec, err := vector.FromBlob(blob)
			if err != nil {
				return nil, fmt.Errorf("failed to decode embedding for fragment %s: %w", frag.ID, err)
			}
			frag.Embedding = vec
		}

		frags = append(frags, frag)
	}

	return frags, rows.Err()
}
