// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes document Q&A tools to LLM agents over stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/docent-dev/docent/internal/embed"
	"github.com/docent-dev/docent/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docent as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to ask questions about your indexed
documents via stdio.

Configure in Claude Desktop's config file to enable document tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  docent mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "docent": {
  #       "command": "docent",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.EmbeddingProvider == embed.ProviderOpenAI && os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - openai embeddings will not work")
	}

	// Initialize storage
	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	docsRoot, err := filepath.Abs(cfg.DocsDir)
	if err != nil {
		return fmt.Errorf("resolving docs directory: %w", err)
	}

	// Initialize the indexing pipeline for the reindex tool
	indexer, err := newIndexer(cfg, store, docsRoot)
	if err != nil {
		return err
	}

	// Initialize the answer pipeline
	orchestrator, err := newOrchestrator(cfg, store)
	if err != nil {
		return err
	}

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Docent Document Q&A",
		versionInfo.Version,
	)

	// Register MCP tools
	mcp.RegisterTools(server, orchestrator, indexer)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("docent MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		// Close storage (flushes pending writes, closes DB)
		if err := store.Close(); err != nil {
			log.Printf("Warning: Error closing storage: %v", err)
		}

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
