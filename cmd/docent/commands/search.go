// ABOUTME: CLI command for retrieval-only search over indexed fragments
// ABOUTME: Embeds the query and prints ranked fragments without generation
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	searchTopK      int
	searchThreshold float64
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documents",
		Long: `Search indexed documents by semantic similarity.

Embeds the query and ranks stored fragments by cosine similarity,
without running generation. Useful for checking what the answer
pipeline would retrieve.

Examples:
  docent search "rate limits"
  docent search --top-k 10 "database schema"
  docent search --threshold 0.3 "error handling"
  docent search --format json "API keys"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchTopK, "top-k", 5, "Maximum results to return")
	cmd.Flags().Float64Var(&searchThreshold, "threshold", 0.15, "Minimum similarity score (-1 to 1)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validatePositiveInt(searchTopK, "top-k"); err != nil {
		return err
	}
	if searchThreshold < -1 || searchThreshold > 1 {
		return fmt.Errorf("threshold must be between -1 and 1, got %g", searchThreshold)
	}

	query := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = searchTopK
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = searchThreshold
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	orchestrator, err := newOrchestrator(cfg, store)
	if err != nil {
		return err
	}

	results, err := orchestrator.Search(cmd.Context(), query, cfg.TopK)
	if err != nil {
		return fmt.Errorf("searching documents: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No fragments found for query: %s\n", query)
		}
		return nil
	}

	// Format output
	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		// Table format
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SCORE\tFILE\tFRAG\tPREVIEW\n")
		fmt.Fprintf(w, "-----\t----\t----\t-------\n")

		for _, result := range results {
			fmt.Fprintf(w, "%.3f\t%s\t%d\t%s\n",
				result.Score,
				truncate(result.Document.FileName(), 25),
				result.Fragment.Seq,
				truncate(oneLine(result.Fragment.Content), 60))
		}
		w.Flush()

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
		}
	}

	return nil
}
