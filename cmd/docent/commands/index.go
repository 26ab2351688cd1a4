// ABOUTME: CLI command to index documents into the local database
// ABOUTME: Walks the docs directory and embeds changed files with a progress bar
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	indexForce bool
)

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index documents for question answering",
		Long: `Index documents under a directory into the local database.

Walks the directory for supported files (.txt, .md, .markdown, .pdf),
splits them into sentence-aligned chunks, embeds each chunk, and
stores the result. Unchanged files are skipped by content hash.

Examples:
  docent index
  docent index ./docs
  docent index --force ./docs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIndex,
	}

	cmd.Flags().BoolVar(&indexForce, "force", false, "Reindex files even when unchanged")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := cfg.DocsDir
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("docs directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("docs path is not a directory: %s", absRoot)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	indexer, err := newIndexer(cfg, store, absRoot)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(path string, processed, total int) {
		if quiet {
			return
		}
		if bar == nil {
			bar = getProgressBar(total, "Indexing documents")
		}
		if verbose {
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				rel = path
			}
			bar.Describe(color.BlueString("Indexing " + truncate(rel, 30)))
		}
		_ = bar.Set(processed)
	}

	indexed, err := indexer.IndexAll(cmd.Context(), indexForce, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	if !quiet {
		color.Green("✓ Indexed %d document(s) under %s\n", indexed, absRoot)
	}

	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
