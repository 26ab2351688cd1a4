// ABOUTME: Search result and answer report models
// ABOUTME: Defines SearchResult, SourceRef, AnswerReport, and the persisted search log entry
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SearchResult pairs a fragment with its document and a similarity score in [-1, 1].
// Transient: produced by retrieval, never persisted.
type SearchResult struct {
	Fragment Fragment `json:"fragment"`
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// SourceRef is a citation entry in an AnswerReport, in retrieval order
type SourceRef struct {
	FileName string  `json:"file_name"`
	Path     string  `json:"path"`
	Excerpt  string  `json:"excerpt"`
	Score    float64 `json:"score"`
	Seq      int     `json:"seq"`
}

// AnswerReport is the final assembled answer with citations
type AnswerReport struct {
	Query        string      `json:"query"`
	GeneratedAt  time.Time   `json:"generated_at"`
	Answer       string      `json:"answer"`
	Sources      []SourceRef `json:"sources"`
	TotalSources int         `json:"total_sources"`
	AverageScore float64     `json:"average_score"`
	SourcesFound bool        `json:"sources_found"`
}

// SearchRecord is a persisted log entry for one executed search
type SearchRecord struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	AvgScore    float64   `json:"avg_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSearchRecord creates a log entry for an executed search
func NewSearchRecord(query string, resultCount int, avgScore float64) *SearchRecord {
	return &SearchRecord{
		ID:          fmt.Sprintf("search_%s", uuid.New().String()),
		Query:       query,
		ResultCount: resultCount,
		AvgScore:    avgScore,
		CreatedAt:   time.Now().UTC(),
	}
}
