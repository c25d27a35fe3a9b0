package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/bookgraph/export"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.Path != "books.csv" {
		t.Errorf("expected default source books.csv, got %s", cfg.Source.Path)
	}
	if cfg.Graph.Namespace != "https://schema.org/" {
		t.Errorf("expected default namespace https://schema.org/, got %s", cfg.Graph.Namespace)
	}
	if cfg.Ontology.Timeout != 30*time.Second {
		t.Errorf("expected default ontology timeout 30s, got %v", cfg.Ontology.Timeout)
	}
	if cfg.Ontology.URI != "" {
		t.Errorf("expected no default ontology, got %s", cfg.Ontology.URI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing source path",
			modify:  func(c *Config) { c.Source.Path = "" },
			wantErr: true,
		},
		{
			name:    "tab delimiter",
			modify:  func(c *Config) { c.Source.Delimiter = "tab" },
			wantErr: false,
		},
		{
			name:    "multi-character delimiter",
			modify:  func(c *Config) { c.Source.Delimiter = ";;" },
			wantErr: true,
		},
		{
			name:    "quote delimiter",
			modify:  func(c *Config) { c.Source.Delimiter = `"` },
			wantErr: true,
		},
		{
			name:    "unknown ontology format",
			modify:  func(c *Config) { c.Ontology.Format = "turtle" },
			wantErr: true,
		},
		{
			name:    "negative ontology timeout",
			modify:  func(c *Config) { c.Ontology.Timeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "relative namespace",
			modify:  func(c *Config) { c.Graph.Namespace = "books/" },
			wantErr: true,
		},
		{
			name:    "namespace without separator",
			modify:  func(c *Config) { c.Graph.Namespace = "http://example.org/books" },
			wantErr: true,
		},
		{
			name:    "hash namespace",
			modify:  func(c *Config) { c.Graph.Namespace = "http://example.org/books#" },
			wantErr: false,
		},
		{
			name:    "missing output path",
			modify:  func(c *Config) { c.Output.Path = "" },
			wantErr: true,
		},
		{
			name:    "unknown output format",
			modify:  func(c *Config) { c.Output.Format = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "negative enrich timeout",
			modify:  func(c *Config) { c.Enrich.Timeout = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"", 0},
		{",", ','},
		{";", ';'},
		{"tab", '\t'},
		{`\t`, '\t'},
		{"|", '|'},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Source.Delimiter = tt.in
		got, err := cfg.DelimiterRune()
		if err != nil {
			t.Errorf("DelimiterRune(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DelimiterRune(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path   string
		format string
		want   export.Format
	}{
		{"books.ttl", "", export.FormatTurtle},
		{"books.nt", "", export.FormatNTriples},
		{"books.jsonld", "", export.FormatJSONLD},
		{"books.out", "", export.FormatTurtle},
		{"books.ttl", "ntriples", export.FormatNTriples},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Output.Path = tt.path
		cfg.Output.Format = tt.format
		got, err := cfg.OutputFormat()
		if err != nil {
			t.Errorf("OutputFormat(%s, %q) error = %v", tt.path, tt.format, err)
			continue
		}
		if got != tt.want {
			t.Errorf("OutputFormat(%s, %q) = %s, want %s", tt.path, tt.format, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
source:
  path: "data/**/*.csv"
  delimiter: ";"
ontology:
  uri: "https://example.org/books.owl"
  format: rdfxml
  timeout: 10s
  max_bytes: 1048576
graph:
  namespace: "http://example.org/books/"
output:
  path: "out/books.nt"
  normalized_csv: "out/books_normalized.csv"
store:
  path: "out/books.db"
metrics:
  textfile: "out/bookgraph.prom"
enrich:
  endpoint: "http://localhost:3030/sparql"
  timeout: 5s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Source.Path != "data/**/*.csv" {
		t.Errorf("expected source path data/**/*.csv, got %s", cfg.Source.Path)
	}
	if cfg.Source.Delimiter != ";" {
		t.Errorf("expected delimiter ;, got %s", cfg.Source.Delimiter)
	}
	if cfg.Ontology.URI != "https://example.org/books.owl" {
		t.Errorf("expected ontology uri, got %s", cfg.Ontology.URI)
	}
	if cfg.Ontology.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Ontology.Timeout)
	}
	if cfg.Ontology.MaxBytes != 1048576 {
		t.Errorf("expected max_bytes 1048576, got %d", cfg.Ontology.MaxBytes)
	}
	if cfg.Graph.Namespace != "http://example.org/books/" {
		t.Errorf("expected namespace http://example.org/books/, got %s", cfg.Graph.Namespace)
	}
	if cfg.Output.NormalizedCSV != "out/books_normalized.csv" {
		t.Errorf("expected normalized csv path, got %s", cfg.Output.NormalizedCSV)
	}
	if cfg.Store.Path != "out/books.db" {
		t.Errorf("expected store path out/books.db, got %s", cfg.Store.Path)
	}
	if cfg.Metrics.Textfile != "out/bookgraph.prom" {
		t.Errorf("expected metrics textfile, got %s", cfg.Metrics.Textfile)
	}
	if cfg.Enrich.Timeout != 5*time.Second {
		t.Errorf("expected enrich timeout 5s, got %v", cfg.Enrich.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should be valid: %v", err)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("source: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Source: SourceConfig{
			Path: "other.csv",
		},
		Ontology: OntologyConfig{
			URI: "base.owl",
		},
		Store: StoreConfig{
			Path: "books.db",
		},
	}

	base.Merge(override)

	if base.Source.Path != "other.csv" {
		t.Errorf("expected source other.csv, got %s", base.Source.Path)
	}
	if base.Ontology.URI != "base.owl" {
		t.Errorf("expected ontology base.owl, got %s", base.Ontology.URI)
	}
	// Timeout should remain from base since override didn't set it
	if base.Ontology.Timeout != 30*time.Second {
		t.Errorf("expected timeout to remain default, got %v", base.Ontology.Timeout)
	}
	if base.Output.Path != "books.ttl" {
		t.Errorf("expected output path to remain default, got %s", base.Output.Path)
	}
	if base.Store.Path != "books.db" {
		t.Errorf("expected store path books.db, got %s", base.Store.Path)
	}

	base.Merge(nil)
	if base.Source.Path != "other.csv" {
		t.Error("merging nil should not change the config")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Graph.Namespace = "http://example.org/saved/"
	cfg.Ontology.Timeout = 2 * time.Minute

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Graph.Namespace != "http://example.org/saved/" {
		t.Errorf("expected saved namespace, got %s", loaded.Graph.Namespace)
	}
	if loaded.Ontology.Timeout != 2*time.Minute {
		t.Errorf("expected timeout 2m, got %v", loaded.Ontology.Timeout)
	}
}
