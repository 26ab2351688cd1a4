// ABOUTME: Plain text extractor for txt and log files
// ABOUTME: Reads the file wholesale and normalizes line endings
package extract

import (
	"fmt"
	"os"

	"github.com/docent-dev/docent/internal/models"
)

// PlainTextExtractor reads plain text files as-is
type PlainTextExtractor struct{}

// Extensions returns the extensions handled by this extractor
func (e *PlainTextExtractor) Extensions() []string {
	return []string{"txt", "text", "log"}
}

// Extract reads the file content
func (e *PlainTextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", models.ErrExtraction, path, err)
	}
	return normalizeText(string(data)), nil
}
