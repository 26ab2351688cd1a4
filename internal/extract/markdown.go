// ABOUTME: Markdown extractor that strips structural markup down to readable text
// ABOUTME: Headings, emphasis, links, and code fences become plain prose
package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/docent-dev/docent/internal/models"
)

var (
	mdHeading  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasis = regexp.MustCompile(`(\*\*|__|\*|_)([^*_]+)(\*\*|__|\*|_)`)
	mdLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdImage    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdInline   = regexp.MustCompile("`([^`]*)`")
)

// MarkdownExtractor reads markdown files and strips markup
type MarkdownExtractor struct{}

// Extensions returns the extensions handled by this extractor
func (e *MarkdownExtractor) Extensions() []string {
	return []string{"md", "markdown"}
}

// Extract reads the file and converts markdown markup to plain text
func (e *MarkdownExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", models.ErrExtraction, path, err)
	}
	return StripMarkdown(normalizeText(string(data))), nil
}

// StripMarkdown removes common markdown markup, keeping the readable text.
// Fenced code blocks survive with their fences removed.
func StripMarkdown(text string) string {
	var out []string
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		line = mdHeading.ReplaceAllString(line, "")
		line = mdImage.ReplaceAllString(line, "$1")
		line = mdLink.ReplaceAllString(line, "$1")
		line = mdEmphasis.ReplaceAllString(line, "$2")
		line = mdInline.ReplaceAllString(line, "$1")
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
