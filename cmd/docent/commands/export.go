// ABOUTME: CLI command to export the index to portable formats
// ABOUTME: Writes YAML, Markdown, or embedding JSON dumps of the database
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFormat string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the index to a file",
		Long: `Export the document index to a portable file.

Formats:
  yaml        full dump of documents, fragments, and search history
  markdown    human-readable report
  embeddings  fragment embeddings as JSON (for external analysis)

Examples:
  docent export --output index.yaml
  docent export --format markdown --output index.md
  docent export --format embeddings --output embeddings.json`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (required)")
	cmd.Flags().StringVar(&exportFormat, "format", "yaml", "Export format (yaml, markdown, embeddings)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	switch exportFormat {
	case "yaml":
		err = store.ExportToYAML(exportOutput)
	case "markdown":
		err = store.ExportToMarkdown(exportOutput)
	case "embeddings":
		err = store.ExportEmbeddingsToJSON(exportOutput)
	default:
		return fmt.Errorf("unknown export format: %s (expected yaml, markdown, or embeddings)", exportFormat)
	}
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported index to %s\n", exportOutput)
	}

	return nil
}
