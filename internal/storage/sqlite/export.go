// ABOUTME: Export functionality for the document index
// ABOUTME: Supports YAML and Markdown export formats plus a JSON embedding dump
package sqlite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/docent-dev/docent/internal/vector"
)

// ExportData represents the complete exportable index structure
type ExportData struct {
	Version    string           `yaml:"version" json:"version"`
	ExportedAt string           `yaml:"exported_at" json:"exported_at"`
	Tool       string           `yaml:"tool" json:"tool"`
	Documents  []ExportDocument `yaml:"documents,omitempty" json:"documents,omitempty"`
	Searches   []ExportSearch   `yaml:"searches,omitempty" json:"searches,omitempty"`
}

// ExportDocument represents an indexed document for export
type ExportDocument struct {
	Path        string           `yaml:"path" json:"path"`
	FileType    string           `yaml:"file_type" json:"file_type"`
	SizeBytes   int64            `yaml:"size_bytes" json:"size_bytes"`
	ContentHash string           `yaml:"content_hash" json:"content_hash"`
	IndexedAt   string           `yaml:"indexed_at" json:"indexed_at"`
	Fragments   []ExportFragment `yaml:"fragments" json:"fragments"`
}

// ExportFragment represents a text fragment for export
type ExportFragment struct {
	Seq        int    `yaml:"seq" json:"seq"`
	Content    string `yaml:"content" json:"content"`
	TokenCount int    `yaml:"token_count" json:"token_count"`
}

// ExportSearch represents a recorded search for export
type ExportSearch struct {
	Query       string  `yaml:"query" json:"query"`
	ResultCount int     `yaml:"result_count" json:"result_count"`
	AvgScore    float64 `yaml:"avg_score" json:"avg_score"`
	CreatedAt   string  `yaml:"created_at" json:"created_at"`
}

// Export exports all indexed data from storage
func (s *Storage) Export() (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "docent",
	}

	docs, err := s.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	for _, doc := range docs {
		frags, err := s.FragmentsByDocument(doc.ID)
		if err != nil {
			continue
		}

		exportDoc := ExportDocument{
			Path:        doc.Path,
			FileType:    doc.FileType,
			SizeBytes:   doc.SizeBytes,
			ContentHash: doc.ContentHash,
			IndexedAt:   doc.IndexedAt.Format(time.RFC3339),
			Fragments:   make([]ExportFragment, 0, len(frags)),
		}

		for _, frag := range frags {
			exportDoc.Fragments = append(exportDoc.Fragments, ExportFragment{
				Seq:        frag.Seq,
				Content:    frag.Content,
				TokenCount: frag.TokenCount,
			})
		}

		data.Documents = append(data.Documents, exportDoc)
	}

	searches, err := s.RecentSearches(100)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	for _, record := range searches {
		data.Searches = append(data.Searches, ExportSearch{
			Query:       record.Query,
			ResultCount: record.ResultCount,
			AvgScore:    record.AvgScore,
			CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		})
	}

	return data, nil
}

// ExportToYAML exports the index to a YAML file
func (s *Storage) ExportToYAML(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// ExportToMarkdown exports the index to a Markdown file
func (s *Storage) ExportToMarkdown(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Write header
	_, _ = fmt.Fprintf(file, "# Document Index Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", data.ExportedAt)

	// Write document summary
	if len(data.Documents) > 0 {
		_, _ = fmt.Fprintln(file, "## Documents")
		_, _ = fmt.Fprintln(file)
		_, _ = fmt.Fprintln(file, "| Path | Type | Fragments | Indexed |")
		_, _ = fmt.Fprintln(file, "|------|------|-----------|---------|")
		for _, doc := range data.Documents {
			_, _ = fmt.Fprintf(file, "| %s | %s | %d | %s |\n", doc.Path, doc.FileType, len(doc.Fragments), doc.IndexedAt)
		}
		_, _ = fmt.Fprintln(file)

		// Write fragment contents per document
		_, _ = fmt.Fprintln(file, "## Contents")
		_, _ = fmt.Fprintln(file)
		for _, doc := range data.Documents {
			_, _ = fmt.Fprintf(file, "### %s\n\n", doc.Path)
			for _, frag := range doc.Fragments {
				_, _ = fmt.Fprintf(file, "> %s\n\n", frag.Content)
			}
			_, _ = fmt.Fprintln(file, "---")
			_, _ = fmt.Fprintln(file)
		}
	}

	// Write search history
	if len(data.Searches) > 0 {
		_, _ = fmt.Fprintln(file, "## Recent Searches")
		_, _ = fmt.Fprintln(file)
		_, _ = fmt.Fprintln(file, "| Query | Results | Avg Score |")
		_, _ = fmt.Fprintln(file, "|-------|---------|-----------|")
		for _, search := range data.Searches {
			_, _ = fmt.Fprintf(file, "| %s | %d | %.3f |\n", search.Query, search.ResultCount, search.AvgScore)
		}
		_, _ = fmt.Fprintln(file)
	}

	return nil
}

// ExportEmbeddingsToJSON exports fragment embeddings to a separate JSON file
func (s *Storage) ExportEmbeddingsToJSON(outputPath string) error {
	rows, err := s.db.Query(`
		SELECT f.id, d.path, f.seq, f.embedding, f.created_at
		FROM fragments f
		JOIN documents d ON d.id = f.document_id
		WHERE f.embedding IS NOT NULL
	`)
	if err != nil {
		return fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type EmbeddingExport struct {
		FragmentID   string    `json:"fragment_id"`
		DocumentPath string    `json:"document_path"`
		Seq          int       `json:"seq"`
		Vector       []float32 `json:"vector"`
		CreatedAt    string    `json:"created_at"`
	}

	var embeddings []EmbeddingExport
	for rows.Next() {
		var (
			emb       EmbeddingExport
			blob      []byte
			createdAt time.Time
		)
		if err := rows.Scan(&emb.FragmentID, &emb.DocumentPath, &emb.Seq, &blob, &createdAt); err != nil {
			continue
		}
		vec, err := vector.FromBlob(blob)
		if err != nil {
			continue
		}
		emb.Vector = vec
		emb.CreatedAt = createdAt.Format(time.RFC3339)
		embeddings = append(embeddings, emb)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(embeddings); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
