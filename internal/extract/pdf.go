// ABOUTME: PDF extractor built on the pure-Go pdf reader
// ABOUTME: Pulls the plain text stream out of the document body
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/docent-dev/docent/internal/models"
)

// PDFExtractor extracts text from PDF files
type PDFExtractor struct{}

// Extensions returns the extensions handled by this extractor
func (e *PDFExtractor) Extensions() []string {
	return []string{"pdf"}
}

// Extract opens the PDF and reads its plain text content
func (e *PDFExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", models.ErrExtraction, path, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: opening pdf %s: %v", models.ErrExtraction, path, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extracting pdf text from %s: %v", models.ErrExtraction, path, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: reading pdf text from %s: %v", models.ErrExtraction, path, err)
	}

	return normalizeText(buf.String()), nil
}
