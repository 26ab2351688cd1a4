// ABOUTME: End-to-end tests running CLI commands against a temp database
// ABOUTME: Exercises index, search, ask, stats, and export through the root command

package commands

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docent-dev/docent/internal/models"
	"github.com/docent-dev/docent/internal/storage/sqlite"
)

const skySentence = "The sky is blue because of Rayleigh scattering."

// setupPipelineEnv points the CLI at temp paths so runs never touch real state
func setupPipelineEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "docent.db")
	t.Setenv("DOCENT_DB_PATH", dbPath)
	return dbPath
}

// seedDocsDir writes a small corpus with supported and unsupported files
func seedDocsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"sky.txt":  skySentence,
		"notes.md": "# Notes\n\nGrass is green in spring.",
		"skip.bin": "binary payload",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
	return dir
}

// execDocent runs the root command with args and returns its combined output
func execDocent(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer func() {
		verbose, quiet = false, false
		log.SetOutput(os.Stderr)
	}()

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

// docIDsByPath reads the stored documents keyed by path
func docIDsByPath(t *testing.T, dbPath string) map[string]string {
	t.Helper()
	store, err := sqlite.NewStorageWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStorageWithPath() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	docs, err := store.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	ids := make(map[string]string, len(docs))
	for _, doc := range docs {
		ids[doc.Path] = doc.ID
	}
	return ids
}

func TestPipeline_IndexThenSearch(t *testing.T) {
	dbPath := setupPipelineEnv(t)
	docs := seedDocsDir(t)

	if _, err := execDocent(t, "--quiet", "index", docs); err != nil {
		t.Fatalf("index error = %v", err)
	}

	ids := docIDsByPath(t, dbPath)
	if len(ids) != 2 {
		t.Fatalf("indexed %d documents, want 2 (bin file must be skipped)", len(ids))
	}

	output, err := execDocent(t, "--quiet", "search", skySentence)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(output, "SCORE") {
		t.Errorf("search output should render the table header, got:\n%s", output)
	}
	if !strings.Contains(output, "sky.txt") {
		t.Errorf("search output should list sky.txt, got:\n%s", output)
	}
}

func TestPipeline_ReindexSkipsUnchanged(t *testing.T) {
	dbPath := setupPipelineEnv(t)
	docs := seedDocsDir(t)

	if _, err := execDocent(t, "--quiet", "index", docs); err != nil {
		t.Fatalf("first index error = %v", err)
	}
	before := docIDsByPath(t, dbPath)

	if _, err := execDocent(t, "--quiet", "index", docs); err != nil {
		t.Fatalf("second index error = %v", err)
	}
	after := docIDsByPath(t, dbPath)

	for path, id := range before {
		if after[path] != id {
			t.Errorf("document %s replaced on unchanged reindex", path)
		}
	}

	if _, err := execDocent(t, "--quiet", "index", "--force", docs); err != nil {
		t.Fatalf("forced index error = %v", err)
	}
	forced := docIDsByPath(t, dbPath)

	for path, id := range before {
		if forced[path] == id {
			t.Errorf("document %s not replaced under --force", path)
		}
	}
}

func TestPipeline_AskRendersReport(t *testing.T) {
	setupPipelineEnv(t)
	docs := seedDocsDir(t)

	if _, err := execDocent(t, "--quiet", "index", docs); err != nil {
		t.Fatalf("index error = %v", err)
	}

	output, err := execDocent(t, "--quiet", "ask", skySentence)
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(output, "# Answer") {
		t.Errorf("markdown report should contain answer heading, got:\n%s", output)
	}
	if !strings.Contains(output, "## Sources") {
		t.Errorf("markdown report should contain sources section, got:\n%s", output)
	}
	if !strings.Contains(output, "sky.txt") {
		t.Errorf("report should cite sky.txt, got:\n%s", output)
	}
}

func TestPipeline_AskJSONReport(t *testing.T) {
	setupPipelineEnv(t)
	docs := seedDocsDir(t)

	if _, err := execDocent(t, "--quiet", "index", docs); err != nil {
		t.Fatalf("index error = %v", err)
	}

	output, err := execDocent(t, "--quiet", "ask", "--format", "json", skySentence)
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}

	var report models.AnswerReport
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, output)
	}
	if report.Query != skySentence {
		t.Errorf("Query = %q, want %q", report.Query, skySentence)
	}
	if !report.SourcesFound {
		t.Error("SourcesFound = false, want true")
	}
	if len(report.Sources) == 0 || report.Sources[0].FileName != "sky.txt" {
		t.Errorf("Sources = %+v, want sky.txt ranked first", report.Sources)
	}
}

func TestPipeline_AskEmptyCorpus(t *testing.T) {
	setupPipelineEnv(t)

	output, err := execDocent(t, "--quiet", "ask", "--no-report", "anything at all")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(output, "No relevant information found") {
		t.Errorf("empty corpus should produce the canned answer, got:\n%s", output)
	}
}

func TestPipeline_StatsAfterSearch(t *testing.T) {
	setupPipelineEnv(t)
	docs := seedDocsDir(t)

	if _, err := execDocent(t, "--quiet", "index", docs); err != nil {
		t.Fatalf("index error = %v", err)
	}
	if _, err := execDocent(t, "--quiet", "search", skySentence); err != nil {
		t.Fatalf("search error = %v", err)
	}

	output, err := execDocent(t, "stats", "--recent", "5")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	for _, want := range []string{"Documents:", "Fragments:", "File types:", "Recent searches:", "txt", "md"} {
		if !strings.Contains(output, want) {
			t.Errorf("stats output should contain %q, got:\n%s", want, output)
		}
	}

	jsonOut, err := execDocent(t, "--format", "json", "stats")
	if err != nil {
		t.Fatalf("stats --format json error = %v", err)
	}
	var payload struct {
		Statistics models.Statistics `json:"statistics"`
	}
	if err := json.Unmarshal([]byte(jsonOut), &payload); err != nil {
		t.Fatalf("stats JSON output invalid: %v\n%s", err, jsonOut)
	}
	if payload.Statistics.DocumentCount != 2 {
		t.Errorf("DocumentCount = %d, want 2", payload.Statistics.DocumentCount)
	}
	if payload.Statistics.RecentSearchCount == 0 {
		t.Error("RecentSearchCount = 0, want at least 1 after a search")
	}
}

func TestPipeline_ExportFormats(t *testing.T) {
	setupPipelineEnv(t)
	docs := seedDocsDir(t)

	if _, err := execDocent(t, "--quiet", "index", docs); err != nil {
		t.Fatalf("index error = %v", err)
	}

	outDir := t.TempDir()
	tests := []struct {
		format string
		file   string
		want   string
	}{
		{"yaml", "dump.yaml", "sky.txt"},
		{"markdown", "dump.md", "# Document Index Export"},
		{"embeddings", "dump.json", "document_path"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			outPath := filepath.Join(outDir, tt.file)
			if _, err := execDocent(t, "--quiet", "export", "--format", tt.format, "--output", outPath); err != nil {
				t.Fatalf("export error = %v", err)
			}
			data, err := os.ReadFile(outPath)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("export file should contain %q, got:\n%s", tt.want, truncate(string(data), 500))
			}
		})
	}
}

func TestPipeline_ExportUnknownFormat(t *testing.T) {
	setupPipelineEnv(t)

	outPath := filepath.Join(t.TempDir(), "dump.xml")
	_, err := execDocent(t, "--quiet", "export", "--format", "xml", "--output", outPath)
	if err == nil {
		t.Fatal("expected error for unknown export format, got nil")
	}
	if !strings.Contains(err.Error(), "unknown export format") {
		t.Errorf("error = %v, want unknown export format", err)
	}
}
