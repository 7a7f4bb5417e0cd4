// Package config loads crmdex configuration. Precedence, lowest to
// highest: hardcoded defaults, user config (~/.config/crmdex/config.yaml),
// project config (.crmdex.yaml), environment variables. A .env file in
// the working directory is loaded into the environment first.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete crmdex configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" json:"source"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Reindex    ReindexConfig    `yaml:"reindex" json:"reindex"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// SourceConfig configures the CRM source connection.
type SourceConfig struct {
	// BaseURL is the CRM API endpoint. Empty selects the built-in
	// fixture source (offline mode).
	BaseURL string `yaml:"base_url" json:"base_url"`

	// TokenEnv names the environment variable holding the API token.
	// The token itself never appears in config files.
	TokenEnv string `yaml:"token_env" json:"token_env"`

	// PageSize is the page size requested from the source.
	PageSize int `yaml:"page_size" json:"page_size"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "ollama", "static", or empty for
	// auto-detection (ollama with static fallback).
	Provider string `yaml:"provider" json:"provider"`

	// Model is the embedding model name for the ollama provider.
	Model string `yaml:"model" json:"model"`

	// Host is the Ollama API endpoint.
	Host string `yaml:"host" json:"host"`

	// CacheSize bounds the query-embedding LRU cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// ReindexConfig configures rebuild jobs.
type ReindexConfig struct {
	// Timeout bounds one whole rebuild. Types still in flight when it
	// expires are counted as failed. Zero means the built-in default;
	// negative disables the bound.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// SearchConfig configures query behavior.
type SearchConfig struct {
	// DefaultK is the result count when the caller does not pass one.
	DefaultK int `yaml:"default_k" json:"default_k"`

	// MaxK caps the requested result count.
	MaxK int `yaml:"max_k" json:"max_k"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Source: SourceConfig{
			TokenEnv: "CRMDEX_SOURCE_TOKEN",
			PageSize: 100,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "", // auto-detect
			Model:     "nomic-embed-text",
			Host:      "http://localhost:11434",
			CacheSize: 1000,
		},
		Reindex: ReindexConfig{
			Timeout: 10 * time.Minute,
		},
		Search: SearchConfig{
			DefaultK: 10,
			MaxK:     100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetUserConfigPath returns the user-level config file location.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "crmdex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "crmdex", "config.yaml")
}

// Load loads configuration for the given project directory.
func Load(dir string) (*Config, error) {
	// A .env file supplies environment variables (notably the source
	// token) without putting secrets in config files.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := NewConfig()

	if userPath := GetUserConfigPath(); userPath != "" {
		if err := cfg.loadYAMLIfExists(userPath); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadProjectConfig(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadProjectConfig tries .crmdex.yaml then .crmdex.yml.
func (c *Config) loadProjectConfig(dir string) error {
	for _, name := range []string{".crmdex.yaml", ".crmdex.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAMLIfExists(path)
		}
	}
	return nil
}

// loadYAMLIfExists merges a YAML file's non-zero values over c.
func (c *Config) loadYAMLIfExists(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Source.BaseURL != "" {
		c.Source.BaseURL = other.Source.BaseURL
	}
	if other.Source.TokenEnv != "" {
		c.Source.TokenEnv = other.Source.TokenEnv
	}
	if other.Source.PageSize != 0 {
		c.Source.PageSize = other.Source.PageSize
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Host != "" {
		c.Embeddings.Host = other.Embeddings.Host
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.Reindex.Timeout != 0 {
		c.Reindex.Timeout = other.Reindex.Timeout
	}

	if other.Search.DefaultK != 0 {
		c.Search.DefaultK = other.Search.DefaultK
	}
	if other.Search.MaxK != 0 {
		c.Search.MaxK = other.Search.MaxK
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// applyEnvOverrides applies CRMDEX_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CRMDEX_SOURCE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("CRMDEX_SOURCE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Source.PageSize = n
		}
	}
	if v := os.Getenv("CRMDEX_EMBEDDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("CRMDEX_OLLAMA_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("CRMDEX_OLLAMA_HOST"); v != "" {
		c.Embeddings.Host = v
	}
	if v := os.Getenv("CRMDEX_REINDEX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Reindex.Timeout = d
		}
	}
	if v := os.Getenv("CRMDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.Source.PageSize < 0 {
		return fmt.Errorf("source.page_size must be non-negative, got %d", c.Source.PageSize)
	}

	if c.Embeddings.Provider != "" { // empty triggers auto-detection
		validProviders := map[string]bool{"ollama": true, "static": true}
		if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
			return fmt.Errorf("embeddings.provider must be 'ollama', 'static', or empty (auto-detect), got %s", c.Embeddings.Provider)
		}
	}
	if c.Embeddings.CacheSize < 0 {
		return fmt.Errorf("embeddings.cache_size must be non-negative, got %d", c.Embeddings.CacheSize)
	}

	if c.Search.DefaultK <= 0 {
		return fmt.Errorf("search.default_k must be positive, got %d", c.Search.DefaultK)
	}
	if c.Search.MaxK < c.Search.DefaultK {
		return fmt.Errorf("search.max_k (%d) must be at least search.default_k (%d)", c.Search.MaxK, c.Search.DefaultK)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// SourceToken resolves the API token from the configured environment
// variable. Empty when unset.
func (c *Config) SourceToken() string {
	return os.Getenv(c.Source.TokenEnv)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
