// ABOUTME: Main entry point for the docent MCP server with stdio transport
// ABOUTME: Initializes storage, the answer pipeline, and MCP tools
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docent-dev/docent/internal/answer"
	"github.com/docent-dev/docent/internal/chunker"
	"github.com/docent-dev/docent/internal/config"
	"github.com/docent-dev/docent/internal/embed"
	"github.com/docent-dev/docent/internal/extract"
	"github.com/docent-dev/docent/internal/generate"
	"github.com/docent-dev/docent/internal/index"
	"github.com/docent-dev/docent/internal/mcp"
	"github.com/docent-dev/docent/internal/storage/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Remote providers need credentials; the local stack does not
	if cfg.EmbeddingProvider == embed.ProviderOpenAI && os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - OpenAI embeddings will not work")
	}

	var store *sqlite.Storage
	if cfg.DBPath != "" {
		store, err = sqlite.NewStorageWithPath(cfg.DBPath)
	} else {
		store, err = sqlite.NewStorage()
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	docsDir, err := filepath.Abs(cfg.DocsDir)
	if err != nil {
		log.Fatalf("Failed to resolve docs directory: %v", err)
	}

	embedder, err := embed.NewEmbedder(embed.Options{
		Provider:    cfg.EmbeddingProvider,
		Dimension:   cfg.VectorDimension,
		OpenAIKey:   cfg.OpenAIKey,
		OpenAIModel: cfg.EmbeddingModel,
		OllamaHost:  cfg.OllamaHost,
		OllamaModel: cfg.EmbeddingModel,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
	})
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to initialize chunker: %v", err)
	}
	indexer := index.New(store, extract.NewRegistry(), ch, embedder, docsDir)

	corpus, err := store.FragmentTexts()
	if err != nil {
		log.Fatalf("Failed to load fragment corpus: %v", err)
	}
	generator, err := generate.NewGenerator(generate.Options{
		Provider:    cfg.GenerationProvider,
		Temperature: cfg.Temperature,
		OpenAIKey:   cfg.OpenAIKey,
		OpenAIModel: cfg.ChatModel,
		OllamaHost:  cfg.OllamaHost,
		OllamaModel: cfg.ChatModel,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
	}, corpus)
	if err != nil {
		log.Fatalf("Failed to initialize generator: %v", err)
	}

	orchestrator := answer.New(store, embedder, generator,
		answer.WithTopK(cfg.TopK),
		answer.WithThreshold(cfg.Threshold),
		answer.WithMaxTokens(cfg.MaxTokens),
		answer.WithStrict(cfg.Strict),
	)

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Docent Document Q&A",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, orchestrator, indexer)

	// Start server with stdio transport
	log.Println("docent MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
