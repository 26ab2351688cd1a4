// ABOUTME: Report renderers producing markdown, HTML, and plaintext output
// ABOUTME: Pure functions over an assembled AnswerReport
package answer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/docent-dev/docent/internal/models"
)

// Output formats accepted by Render
const (
	FormatMarkdown  = "markdown"
	FormatHTML      = "html"
	FormatPlaintext = "plaintext"
)

// Render produces a textual rendering of the report in the requested format
func Render(report *models.AnswerReport, format string) (string, error) {
	switch format {
	case FormatMarkdown:
		return RenderMarkdown(report), nil
	case FormatHTML:
		return RenderHTML(report)
	case FormatPlaintext:
		return RenderPlaintext(report), nil
	default:
		return "", fmt.Errorf("%w: unknown report format: %s", models.ErrValidation, format)
	}
}

// RenderMarkdown renders the report as a markdown document
func RenderMarkdown(report *models.AnswerReport) string {
	var sb strings.Builder

	sb.WriteString("# Answer\n\n")
	sb.WriteString(report.Answer)
	sb.WriteString("\n")

	if !report.SourcesFound {
		sb.WriteString("\n_No sources found._\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n## Sources (%d)\n\n", report.TotalSources))
	for i, src := range report.Sources {
		sb.WriteString(fmt.Sprintf("%d. **%s** — fragment %d, score %.3f\n", i+1, src.FileName, src.Seq, src.Score))
		sb.WriteString(fmt.Sprintf("   `%s`\n\n", src.Path))
		sb.WriteString(fmt.Sprintf("   > %s\n\n", strings.ReplaceAll(src.Excerpt, "\n", " ")))
	}

	sb.WriteString(fmt.Sprintf("---\n\nAverage similarity: %.3f · Generated %s\n",
		report.AverageScore, report.GeneratedAt.Format(time.RFC3339)))

	return sb.String()
}

// htmlReportTemplate is the standalone HTML rendering. html/template escaping
// keeps document content from injecting markup.
var htmlReportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>docent answer</title>
</head>
<body>
<h1>Answer</h1>
<p class="query"><em>{{.Query}}</em></p>
<div class="answer"><p>{{.Answer}}</p></div>
{{if .SourcesFound}}<h2>Sources ({{.TotalSources}})</h2>
<ol>
{{range .Sources}}<li>
<strong>{{.FileName}}</strong> (fragment {{.Seq}}, score {{printf "%.3f" .Score}})<br>
<code>{{.Path}}</code>
<blockquote>{{.Excerpt}}</blockquote>
</li>
{{end}}</ol>
<p class="footer">Average similarity: {{printf "%.3f" .AverageScore}}</p>
{{else}}<p class="footer"><em>No sources found.</em></p>
{{end}}</body>
</html>
`))

// RenderHTML renders the report as a standalone HTML page
func RenderHTML(report *models.AnswerReport) (string, error) {
	var sb strings.Builder
	if err := htmlReportTemplate.Execute(&sb, report); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	return sb.String(), nil
}

// RenderPlaintext renders the report as plain terminal-friendly text
func RenderPlaintext(report *models.AnswerReport) string {
	var sb strings.Builder

	sb.WriteString(report.Answer)
	sb.WriteString("\n")

	if !report.SourcesFound {
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\nSources (%d):\n", report.TotalSources))
	for i, src := range report.Sources {
		sb.WriteString(fmt.Sprintf("  %d. %s (fragment %d, score %.3f)\n", i+1, src.FileName, src.Seq, src.Score))
		sb.WriteString(fmt.Sprintf("     %s\n", src.Path))
	}
	sb.WriteString(fmt.Sprintf("\nAverage similarity: %.3f\n", report.AverageScore))

	return sb.String()
}
