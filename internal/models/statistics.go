// ABOUTME: Corpus statistics model read from persisted state
// ABOUTME: Bookkeeping counts for the stats command and MCP tool
package models

import "time"

// Statistics summarizes the indexed corpus and recent activity
type Statistics struct {
	DocumentCount           int            `json:"document_count"`
	FragmentCount           int            `json:"fragment_count"`
	AvgFragmentsPerDocument float64        `json:"avg_fragments_per_document"`
	RecentSearchCount       int            `json:"recent_search_count"`
	LastIndexedAt           *time.Time     `json:"last_indexed_at,omitempty"`
	FileTypeCounts          map[string]int `json:"file_type_counts"`
}
