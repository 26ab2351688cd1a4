// ABOUTME: Text extraction capability registry keyed by file extension
// ABOUTME: Adding a format means registering one more Extractor variant
package extract

import (
	"sort"
	"strings"
)

// Extractor turns a source file into raw text
type Extractor interface {
	// Extract reads the file at path and returns its text content
	Extract(path string) (string, error)
	// Extensions lists the lowercase extensions (without dot) this extractor handles
	Extensions() []string
}

// Registry selects an Extractor by file extension
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a registry with the built-in extractors registered
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(&PlainTextExtractor{})
	r.Register(&MarkdownExtractor{})
	r.Register(&PDFExtractor{})
	return r
}

// Register adds an extractor for all extensions it declares
func (r *Registry) Register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Get returns the extractor for an extension (without dot), if any
func (r *Registry) Get(ext string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(ext)]
	return e, ok
}

// Supports reports whether an extension has a registered extractor
func (r *Registry) Supports(ext string) bool {
	_, ok := r.Get(ext)
	return ok
}

// Extensions returns all supported extensions, sorted
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// normalizeText converts line endings to \n and trims trailing whitespace per line
func normalizeText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
