// Package config provides configuration loading and structs for the kioku
// assistant.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Search    SearchConfig    `yaml:"search"`
	Router    RouterConfig    `yaml:"router"`
	Advice    AdviceConfig    `yaml:"advice"`
	Terms     TermsConfig     `yaml:"terms"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the databases and indices.
type StorageConfig struct {
	RecordDatabasePath    string `yaml:"record_database_path"`
	EmbeddingDatabasePath string `yaml:"embedding_database_path"`
	KeywordIndexPath      string `yaml:"keyword_index_path"`
}

// EmbeddingConfig holds embedding backend settings.
type EmbeddingConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CacheSize      int    `yaml:"cache_size"`
}

// ChatConfig holds chat model backend settings.
type ChatConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Temperature    float64 `yaml:"temperature"`
}

// SearchConfig holds chunking and retrieval settings.
type SearchConfig struct {
	ChunkSize     int     `yaml:"chunk_size"`
	ChunkOverlap  int     `yaml:"chunk_overlap"`
	DefaultLimit  int     `yaml:"default_limit"`
	MaxLimit      int     `yaml:"max_limit"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// RouterConfig holds classifier settings.
type RouterConfig struct {
	// ExemplarThreshold is the minimum cosine similarity for the semantic
	// stage to accept an exemplar's intent.
	ExemplarThreshold float64 `yaml:"exemplar_threshold"`
}

// AdviceConfig holds advice generation settings.
type AdviceConfig struct {
	// Style is one of conservative, balanced, aggressive, datadriven, concise.
	Style          string `yaml:"style"`
	MaxActionItems int    `yaml:"max_action_items"`
}

// TermsConfig points at the externalized term lists.
type TermsConfig struct {
	Path string `yaml:"path"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.RecordDatabasePath = expandPath(cfg.Storage.RecordDatabasePath, configDir)
	cfg.Storage.EmbeddingDatabasePath = expandPath(cfg.Storage.EmbeddingDatabasePath, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	if cfg.Terms.Path != "" {
		cfg.Terms.Path = expandPath(cfg.Terms.Path, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
