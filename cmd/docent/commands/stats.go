// ABOUTME: CLI command to show index statistics
// ABOUTME: Reports document and fragment counts, file types, and recent searches
package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docent-dev/docent/internal/models"
)

var (
	statsRecent int
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long: `Show statistics about the document index.

Reports document and fragment counts, fragments per document, the
file type distribution, and when the index was last updated.

Examples:
  docent stats
  docent stats --recent 10
  docent stats --format json`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	cmd.Flags().IntVar(&statsRecent, "recent", 0, "Also list the N most recent searches")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Statistics()
	if err != nil {
		return fmt.Errorf("collecting statistics: %w", err)
	}

	var recent []models.SearchRecord
	if statsRecent > 0 {
		recent, err = store.RecentSearches(statsRecent)
		if err != nil {
			return fmt.Errorf("loading recent searches: %w", err)
		}
	}

	if outputFormat == "json" {
		payload := map[string]any{"statistics": stats}
		if statsRecent > 0 {
			payload["recent_searches"] = recent
		}
		jsonData, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Documents:\t%d\n", stats.DocumentCount)
	fmt.Fprintf(w, "Fragments:\t%d\n", stats.FragmentCount)
	fmt.Fprintf(w, "Fragments/doc:\t%.1f\n", stats.AvgFragmentsPerDocument)
	fmt.Fprintf(w, "Recent searches:\t%d\n", stats.RecentSearchCount)
	if stats.LastIndexedAt != nil {
		fmt.Fprintf(w, "Last indexed:\t%s\n", formatTime(*stats.LastIndexedAt))
	}
	w.Flush()

	if len(stats.FileTypeCounts) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFile types:\n")
		types := make([]string, 0, len(stats.FileTypeCounts))
		for ft := range stats.FileTypeCounts {
			types = append(types, ft)
		}
		sort.Strings(types)
		for _, ft := range types {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %d\n", ft, stats.FileTypeCounts[ft])
		}
	}

	if statsRecent > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nRecent searches:\n")
		if len(recent) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "  (none)")
			return nil
		}
		rw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(rw, "  WHEN\tRESULTS\tAVG SCORE\tQUERY\n")
		for _, rec := range recent {
			fmt.Fprintf(rw, "  %s\t%d\t%.3f\t%s\n",
				formatTime(rec.CreatedAt),
				rec.ResultCount,
				rec.AvgScore,
				truncate(rec.Query, 50))
		}
		rw.Flush()
	}

	return nil
}
