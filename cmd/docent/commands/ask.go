// ABOUTME: CLI command to answer a question from the indexed documents
// ABOUTME: Runs retrieval plus generation and renders the cited answer report
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docent-dev/docent/internal/answer"
)

var (
	askFormat   string
	askClarify  bool
	askNoReport bool
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed documents",
		Long: `Answer a question using the indexed documents.

Embeds the question, retrieves the most similar fragments by cosine
similarity, and generates an answer grounded in them. The report
cites every source fragment with its file and score.

Examples:
  docent ask "How does the billing cycle work?"
  docent ask --format html "What are the retention rules?"
  docent ask --clarify "the schema"
  docent ask --no-report "Where is the config file?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askFormat, "format", answer.FormatMarkdown, "Report format (markdown, html, plaintext, json)")
	cmd.Flags().BoolVar(&askClarify, "clarify", false, "Print clarifying questions instead of answering")
	cmd.Flags().BoolVar(&askNoReport, "no-report", false, "Print only the answer text")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
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

	if askClarify {
		questions, err := orchestrator.ClarifyingQuestions(cmd.Context(), question)
		if err != nil {
			return fmt.Errorf("generating clarifying questions: %w", err)
		}
		for i, q := range questions {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, q)
		}
		return nil
	}

	report, err := orchestrator.Answer(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}

	if askNoReport {
		fmt.Fprintln(cmd.OutOrStdout(), report.Answer)
		return nil
	}

	if askFormat == "json" {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	rendered, err := answer.Render(report, askFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)

	return nil
}
