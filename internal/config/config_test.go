package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  port: 9090
storage:
  embedding_database_path: ./data/embeddings.db
embedding:
  dimensions: 384
advice:
  style: concise
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host default = %q", cfg.Server.Host)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Advice.Style != "concise" {
		t.Errorf("style = %q", cfg.Advice.Style)
	}
	// "./" paths resolve relative to the config directory.
	want := filepath.Join(dir, "data/embeddings.db")
	if cfg.Storage.EmbeddingDatabasePath != want {
		t.Errorf("embedding db path = %q, want %q", cfg.Storage.EmbeddingDatabasePath, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Search.ChunkSize != 512 || cfg.Search.ChunkOverlap != 50 {
		t.Errorf("chunking defaults = %d/%d", cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)
	}
	if cfg.Search.ChunkOverlap >= cfg.Search.ChunkSize {
		t.Error("default overlap must be smaller than chunk size")
	}
	if cfg.Router.ExemplarThreshold != 0.78 {
		t.Errorf("exemplar threshold default = %v", cfg.Router.ExemplarThreshold)
	}
	if cfg.Advice.MaxActionItems != 5 {
		t.Errorf("max action items default = %d", cfg.Advice.MaxActionItems)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("dimensions default = %d", cfg.Embedding.Dimensions)
	}
}
