// ABOUTME: Shared pipeline wiring for CLI commands
// ABOUTME: Builds storage, embedder, generator, indexer, and orchestrator from config
package commands

import (
	"fmt"

	"github.com/docent-dev/docent/internal/answer"
	"github.com/docent-dev/docent/internal/chunker"
	"github.com/docent-dev/docent/internal/config"
	"github.com/docent-dev/docent/internal/embed"
	"github.com/docent-dev/docent/internal/extract"
	"github.com/docent-dev/docent/internal/generate"
	"github.com/docent-dev/docent/internal/index"
	"github.com/docent-dev/docent/internal/storage/sqlite"
)

// loadConfig loads and validates configuration, honoring the global --config flag
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStorage opens the configured SQLite database (XDG default path when unset)
func openStorage(cfg *config.Config) (*sqlite.Storage, error) {
	if cfg.DBPath != "" {
		return sqlite.NewStorageWithPath(cfg.DBPath)
	}
	return sqlite.NewStorage()
}

// newEmbedder builds the configured embedding provider
func newEmbedder(cfg *config.Config) (embed.Embedder, error) {
	return embed.NewEmbedder(embed.Options{
		Provider:    cfg.EmbeddingProvider,
		Dimension:   cfg.VectorDimension,
		OpenAIKey:   cfg.OpenAIKey,
		OpenAIModel: cfg.EmbeddingModel,
		OllamaHost:  cfg.OllamaHost,
		OllamaModel: cfg.EmbeddingModel,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
	})
}

// newGenerator builds the configured generation provider. The local provider
// trains its n-gram model on the fragments already stored in the database.
func newGenerator(cfg *config.Config, store *sqlite.Storage) (generate.Generator, error) {
	var corpus []string
	if cfg.GenerationProvider == generate.ProviderLocal || cfg.GenerationProvider == "" {
		texts, err := store.FragmentTexts()
		if err != nil {
			return nil, fmt.Errorf("loading fragment corpus: %w", err)
		}
		corpus = texts
	}
	return generate.NewGenerator(generate.Options{
		Provider:    cfg.GenerationProvider,
		Temperature: cfg.Temperature,
		OpenAIKey:   cfg.OpenAIKey,
		OpenAIModel: cfg.ChatModel,
		OllamaHost:  cfg.OllamaHost,
		OllamaModel: cfg.ChatModel,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
	}, corpus)
}

// newIndexer wires extraction, chunking, and embedding for the given root directory
func newIndexer(cfg *config.Config, store *sqlite.Storage, root string) (*index.Indexer, error) {
	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring embedder: %w", err)
	}
	return index.New(store, extract.NewRegistry(), ch, embedder, root), nil
}

// newOrchestrator wires retrieval and generation into the answer pipeline
func newOrchestrator(cfg *config.Config, store *sqlite.Storage) (*answer.Orchestrator, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring embedder: %w", err)
	}
	generator, err := newGenerator(cfg, store)
	if err != nil {
		return nil, fmt.Errorf("configuring generator: %w", err)
	}
	return answer.New(store, embedder, generator,
		answer.WithTopK(cfg.TopK),
		answer.WithThreshold(cfg.Threshold),
		answer.WithMaxTokens(cfg.MaxTokens),
		answer.WithStrict(cfg.Strict),
	), nil
}
