// ABOUTME: Centralized configuration for the docent pipeline
// ABOUTME: Merges an optional YAML config file, DOCENT_* environment variables, and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the indexing and answering pipeline.
// Precedence: environment variables over config file over defaults.
type Config struct {
	// Storage
	DBPath  string `yaml:"db_path"`
	DocsDir string `yaml:"docs_dir"`

	// Chunking
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// Embedding
	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
	VectorDimension   int    `yaml:"vector_dimension"`

	// Generation
	GenerationProvider string  `yaml:"generation_provider"`
	ChatModel          string  `yaml:"chat_model"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
	Strict             bool    `yaml:"strict"`

	// Retrieval
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`

	// Remote providers. The API key is environment-only, never read from
	// the config file.
	OpenAIKey  string        `yaml:"-"`
	OllamaHost string        `yaml:"ollama_host"`
	Timeout    time.Duration `yaml:"-"`
	MaxRetries int           `yaml:"-"`
	RetryDelay time.Duration `yaml:"-"`
}

// Load reads configuration from the default config file locations and the
// environment
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration from the given YAML file, then overlays
// environment variables and fills remaining defaults. An empty path searches
// the default locations; no file at all is fine.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.overlayEnv()
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// findConfigFile checks the default config file locations
func findConfigFile() string {
	locations := []string{"docent.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "docent", "config.yaml"))
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// overlayEnv applies environment variables over whatever the file set.
// Each helper keeps the current value when the variable is unset.
func (c *Config) overlayEnv() {
	c.DBPath = getEnv("DOCENT_DB_PATH", c.DBPath)
	c.DocsDir = getEnv("DOCENT_DOCS_DIR", c.DocsDir)
	c.ChunkSize = getEnvInt("DOCENT_CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = getEnvInt("DOCENT_CHUNK_OVERLAP", c.ChunkOverlap)
	c.EmbeddingProvider = getEnv("DOCENT_EMBEDDING_PROVIDER", c.EmbeddingProvider)
	c.EmbeddingModel = getEnv("DOCENT_EMBEDDING_MODEL", c.EmbeddingModel)
	c.VectorDimension = getEnvInt("DOCENT_VECTOR_DIMENSION", c.VectorDimension)
	c.GenerationProvider = getEnv("DOCENT_GENERATION_PROVIDER", c.GenerationProvider)
	c.ChatModel = getEnv("DOCENT_CHAT_MODEL", c.ChatModel)
	c.Temperature = getEnvFloat("DOCENT_TEMPERATURE", c.Temperature)
	c.MaxTokens = getEnvInt("DOCENT_MAX_TOKENS", c.MaxTokens)
	c.Strict = getEnvBool("DOCENT_STRICT", c.Strict)
	c.TopK = getEnvInt("DOCENT_TOP_K", c.TopK)
	c.Threshold = getEnvFloat("DOCENT_THRESHOLD", c.Threshold)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OllamaHost = getEnv("OLLAMA_HOST", c.OllamaHost)
	c.Timeout = getEnvDuration("DOCENT_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("DOCENT_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("DOCENT_RETRY_DELAY", c.RetryDelay)
}

// applyDefaults fills any value still unset. Zero means unset.
func (c *Config) applyDefaults() {
	if c.DocsDir == "" {
		c.DocsDir = "."
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 500
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 50
	}
	if c.EmbeddingProvider == "" {
		c.EmbeddingProvider = "hashing"
	}
	if c.VectorDimension == 0 {
		c.VectorDimension = 256
	}
	if c.GenerationProvider == "" {
		c.GenerationProvider = "local"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 256
	}
	if c.TopK == 0 {
		c.TopK = 5
	}
	if c.Threshold == 0 {
		c.Threshold = 0.15
	}
	if c.OllamaHost == "" {
		c.OllamaHost = "http://localhost:11434"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2 * time.Second
	}
}

// Validate rejects values outside their working ranges
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("DOCENT_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("DOCENT_CHUNK_OVERLAP must be 0-%d, got %d", c.ChunkSize-1, c.ChunkOverlap)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("DOCENT_VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	switch c.EmbeddingProvider {
	case "hashing", "openai", "ollama":
	default:
		return fmt.Errorf("DOCENT_EMBEDDING_PROVIDER must be hashing, openai, or ollama, got %q", c.EmbeddingProvider)
	}
	switch c.GenerationProvider {
	case "local", "openai", "ollama":
	default:
		return fmt.Errorf("DOCENT_GENERATION_PROVIDER must be local, openai, or ollama, got %q", c.GenerationProvider)
	}
	if c.Temperature <= 0 || c.Temperature > 2 {
		return fmt.Errorf("DOCENT_TEMPERATURE must be in (0, 2], got %f", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("DOCENT_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("DOCENT_TOP_K must be positive, got %d", c.TopK)
	}
	if c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("DOCENT_THRESHOLD must be -1 to 1, got %f", c.Threshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("DOCENT_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
