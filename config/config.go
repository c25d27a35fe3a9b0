// Package config provides configuration loading and management for bookgraph.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/bookgraph/enrich"
	"github.com/c360studio/bookgraph/export"
	"github.com/c360studio/bookgraph/ontology"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

// Config represents the complete bookgraph configuration
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Ontology OntologyConfig `yaml:"ontology"`
	Graph    GraphConfig    `yaml:"graph"`
	Output   OutputConfig   `yaml:"output"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Enrich   EnrichConfig   `yaml:"enrich"`
}

// SourceConfig configures the catalog table
type SourceConfig struct {
	// Path is a file path or doublestar glob (e.g., "data/**/*.csv")
	Path string `yaml:"path"`
	// Delimiter is a single character or "tab" (empty = detect from header)
	Delimiter string `yaml:"delimiter"`
}

// OntologyConfig configures the base ontology import
type OntologyConfig struct {
	// URI is a local path, file:// URI or http(s) URL (empty = no import)
	URI string `yaml:"uri"`
	// Format forces rdfxml or ntriples (empty = infer)
	Format string `yaml:"format"`
	// Timeout bounds remote fetches
	Timeout time.Duration `yaml:"timeout"`
	// MaxBytes bounds the document size
	MaxBytes int64 `yaml:"max_bytes"`
}

// GraphConfig configures graph construction
type GraphConfig struct {
	// Namespace is the base IRI for book, author, publisher and series entities
	Namespace string `yaml:"namespace"`
}

// OutputConfig configures serialization
type OutputConfig struct {
	// Path is the serialized graph file
	Path string `yaml:"path"`
	// Format is turtle, ntriples or jsonld (empty = infer from Path)
	Format string `yaml:"format"`
	// NormalizedCSV optionally writes the normalized table
	NormalizedCSV string `yaml:"normalized_csv"`
}

// StoreConfig configures the SQLite snapshot
type StoreConfig struct {
	// Path is the database file (empty = no snapshot)
	Path string `yaml:"path"`
}

// MetricsConfig configures run metrics
type MetricsConfig struct {
	// Textfile is a node-exporter textfile written after a run (empty = skip)
	Textfile string `yaml:"textfile"`
}

// EnrichConfig configures the supplementary fact endpoint
type EnrichConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Path: "books.csv",
		},
		Ontology: OntologyConfig{
			Timeout:  ontology.DefaultTimeout,
			MaxBytes: ontology.DefaultMaxBytes,
		},
		Graph: GraphConfig{
			Namespace: book.DefaultEntityNamespace,
		},
		Output: OutputConfig{
			Path: "books.ttl",
		},
		Enrich: EnrichConfig{
			Endpoint: enrich.DefaultEndpoint,
			Timeout:  enrich.DefaultTimeout,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if _, err := ontology.ParseFormat(c.Ontology.Format); err != nil {
		return fmt.Errorf("ontology.format: %w", err)
	}
	if c.Ontology.Timeout < 0 {
		return fmt.Errorf("ontology.timeout must not be negative")
	}
	if c.Ontology.MaxBytes < 0 {
		return fmt.Errorf("ontology.max_bytes must not be negative")
	}
	if err := validateNamespace(c.Graph.Namespace); err != nil {
		return err
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if c.Enrich.Timeout < 0 {
		return fmt.Errorf("enrich.timeout must not be negative")
	}
	return nil
}

// DelimiterRune returns the configured field separator, or zero to detect it.
func (c *Config) DelimiterRune() (rune, error) {
	switch c.Source.Delimiter {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(c.Source.Delimiter)
	if size != len(c.Source.Delimiter) || r == '\n' || r == '\r' || r == '"' {
		return 0, fmt.Errorf("source.delimiter must be a single character, got %q", c.Source.Delimiter)
	}
	return r, nil
}

// OutputFormat resolves the serialization, inferring it from the output
// path when no format is set.
func (c *Config) OutputFormat() (export.Format, error) {
	if c.Output.Format != "" {
		f, err := export.ParseFormat(c.Output.Format)
		if err != nil {
			return "", fmt.Errorf("output.format: %w", err)
		}
		return f, nil
	}
	if f, ok := export.FormatForPath(c.Output.Path); ok {
		return f, nil
	}
	return export.FormatTurtle, nil
}

func validateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("graph.namespace is required")
	}
	u, err := url.Parse(ns)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("graph.namespace must be an absolute IRI, got %q", ns)
	}
	last := ns[len(ns)-1]
	if last != '/' && last != '#' {
		return fmt.Errorf("graph.namespace must end with '/' or '#', got %q", ns)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Source
	if other.Source.Path != "" {
		c.Source.Path = other.Source.Path
	}
	if other.Source.Delimiter != "" {
		c.Source.Delimiter = other.Source.Delimiter
	}

	// Ontology
	if other.Ontology.URI != "" {
		c.Ontology.URI = other.Ontology.URI
	}
	if other.Ontology.Format != "" {
		c.Ontology.Format = other.Ontology.Format
	}
	if other.Ontology.Timeout != 0 {
		c.Ontology.Timeout = other.Ontology.Timeout
	}
	if other.Ontology.MaxBytes != 0 {
		c.Ontology.MaxBytes = other.Ontology.MaxBytes
	}

	// Graph
	if other.Graph.Namespace != "" {
		c.Graph.Namespace = other.Graph.Namespace
	}

	// Output
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.NormalizedCSV != "" {
		c.Output.NormalizedCSV = other.Output.NormalizedCSV
	}

	// Store, metrics
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	// Enrich
	if other.Enrich.Endpoint != "" {
		c.Enrich.Endpoint = other.Enrich.Endpoint
	}
	if other.Enrich.Timeout != 0 {
		c.Enrich.Timeout = other.Enrich.Timeout
	}
}
