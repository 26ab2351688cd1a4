// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Wires the persistent verbose/quiet/format/config flags shared by all subcommands
package commands

import (
	"io"
	"log"

	"github.com/spf13/cobra"
)

// Global flags shared by all subcommands
var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
██████╗  ██████╗  ██████╗███████╗███╗   ██╗████████╗
██╔══██╗██╔═══██╗██╔════╝██╔════╝████╗  ██║╚══██╔══╝
██║  ██║██║   ██║██║     █████╗  ██╔██╗ ██║   ██║
██║  ██║██║   ██║██║     ██╔══╝  ██║╚██╗██║   ██║
██████╔╝╚██████╔╝╚██████╗███████╗██║ ╚████║   ██║
╚═════╝  ╚═════╝  ╚═════╝╚══════╝╚═╝  ╚═══╝   ╚═╝`

// NewRootCmd creates the root command with all subcommands registered
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docent",
		Short: "Ask questions about your own documents",
		Long: banner + `

Docent answers questions about your own documents. It indexes plain
text, Markdown, and PDF files into a local SQLite database, retrieves
the most similar passages by cosine similarity, and generates answers
with cited sources.

Runs fully offline by default; OpenAI and Ollama providers are
available for embeddings and generation when configured.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				log.SetOutput(io.Discard)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, json)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: docent.yaml, ~/.config/docent/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
