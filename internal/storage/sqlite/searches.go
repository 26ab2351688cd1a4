// ABOUTME: Search history storage operations for SQLite
// ABOUTME: Records executed searches for the statistics report
package sqlite

import (
	"fmt"
	"time"

	"github.com/docent-dev/docent/internal/models"
)

// SearchLogStore handles search history persistence
type SearchLogStore struct {
	db *DB
}

// NewSearchLogStore creates a new search log store
func NewSearchLogStore(db *DB) *SearchLogStore {
	return &SearchLogStore{db: db}
}

// Save records an executed search
func (s *SearchLogStore) Save(record *models.SearchRecord) error {
	query := `
		INSERT INTO searches (id, query, result_count, avg_score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		record.ID,
		record.Query,
		record.ResultCount,
		record.AvgScore,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save search record: %w", err)
	}

	return nil
}

// Recent returns the most recent searches, newest first
func (s *SearchLogStore) Recent(limit int) ([]models.SearchRecord, error) {
	query := `
		SELECT id, query, result_count, avg_score, created_at
		FROM searches
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.SearchRecord
	for rows.Next() {
		var record models.SearchRecord
		err := rows.Scan(
			&record.ID,
			&record.Query,
			&record.ResultCount,
			&record.AvgScore,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountSince returns the number of searches executed at or after the given time
func (s *SearchLogStore) CountSince(since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM searches WHERE created_at >= ?", since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count searches: %w", err)
	}
	return count, nil
}
