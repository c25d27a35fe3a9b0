// Package pipeline runs one batch lift: read the catalog, normalize it, build
// the graph over the base ontology and write every configured artifact.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/bookgraph/catalog"
	"github.com/c360studio/bookgraph/config"
	"github.com/c360studio/bookgraph/export"
	"github.com/c360studio/bookgraph/graph"
	"github.com/c360studio/bookgraph/metrics"
	"github.com/c360studio/bookgraph/ontology"
	"github.com/c360studio/bookgraph/storage"
)

// Summary reports what a run read, dropped and wrote.
type Summary struct {
	RunID    string         `json:"run_id"`
	Sources  []string       `json:"sources"`
	RowsRead int            `json:"rows_read"`
	Skipped  map[string]int `json:"skipped"`
	Books    int            `json:"books"`
	Graph    graph.Stats    `json:"graph"`

	Output        string        `json:"output"`
	Format        export.Format `json:"format"`
	Bytes         int           `json:"bytes"`
	NormalizedCSV string        `json:"normalized_csv,omitempty"`
	Store         string        `json:"store,omitempty"`
	MetricsFile   string        `json:"metrics_file,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// SkippedTotal returns the number of rows dropped for any reason.
func (s *Summary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Runner executes pipeline runs.
type Runner struct {
	logger   *slog.Logger
	recorder *metrics.Recorder
	loader   graph.OntologyLoader
	newID    func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder. Without one each run gets a fresh
// recorder.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithOntologyLoader replaces the loader built from the ontology config.
func WithOntologyLoader(l graph.OntologyLoader) Option {
	return func(r *Runner) {
		r.loader = l
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one lift with cfg. Source and ontology failures abort before
// anything is written.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (*Summary, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return nil, err
	}

	runID := r.newID()
	logger := r.logger.With("run_id", runID)
	rec := r.recorder
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	logger.Info("Starting lift", "source", cfg.Source.Path, "ontology", cfg.Ontology.URI)

	table, result, err := readCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:    runID,
		Sources:  table.Sources,
		RowsRead: len(table.Rows) + table.Skipped,
		Skipped:  skippedCounts(table, result),
		Books:    len(result.Books),
		Output:   cfg.Output.Path,
		Format:   format,
	}
	rec.AddRowsRead(summary.RowsRead)
	for reason, n := range summary.Skipped {
		rec.AddRowsSkipped(reason, n)
	}
	rec.AddBooksNormalized(summary.Books)

	builder := graph.NewBuilder(
		graph.WithNamespace(cfg.Graph.Namespace),
		graph.WithLoader(r.ontologyLoader(cfg, logger)),
		graph.WithLogger(logger),
	)
	g, stats, err := builder.Build(ctx, result.Books, cfg.Ontology.URI)
	if err != nil {
		return nil, err
	}
	summary.Graph = stats
	rec.AddTriplesEmitted(stats.Emitted)
	rec.AddTriplesScrubbed(stats.Scrubbed)

	n, err := export.WriteFile(cfg.Output.Path, g, format)
	if err != nil {
		return nil, err
	}
	summary.Bytes = n
	rec.AddTriplesWritten(g.Len())
	logger.Info("Wrote graph", "path", cfg.Output.Path, "format", string(format), "triples", g.Len(), "bytes", n)

	if path := cfg.Output.NormalizedCSV; path != "" {
		if err := catalog.WriteCSVFile(path, result.Books); err != nil {
			return nil, fmt.Errorf("write normalized table %s: %w", path, err)
		}
		summary.NormalizedCSV = path
		logger.Info("Wrote normalized table", "path", path, "books", len(result.Books))
	}

	if path := cfg.Store.Path; path != "" {
		if err := saveSnapshot(ctx, path, runID, result.Books); err != nil {
			return nil, err
		}
		summary.Store = path
		logger.Info("Saved snapshot", "path", path, "books", len(result.Books))
	}

	if path := cfg.Metrics.Textfile; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			return nil, err
		}
		summary.MetricsFile = path
	}

	summary.Duration = time.Since(start)
	logger.Info("Lift complete",
		"rows", summary.RowsRead,
		"skipped", summary.SkippedTotal(),
		"books", summary.Books,
		"triples", stats.Final,
		"duration", summary.Duration)
	return summary, nil
}

// ReadBooks reads and normalizes the configured source.
func ReadBooks(cfg *config.Config, logger *slog.Logger) ([]catalog.Book, error) {
	if logger == nil {
		logger = slog.Default()
	}
	_, result, err := readCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}
	return result.Books, nil
}

func readCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Table, catalog.Result, error) {
	delim, err := cfg.DelimiterRune()
	if err != nil {
		return nil, catalog.Result{}, err
	}
	table, err := catalog.ReadSources(cfg.Source.Path, catalog.ReadOptions{
		Delimiter: delim,
		Logger:    logger,
	})
	if err != nil {
		return nil, catalog.Result{}, err
	}

	result := catalog.Normalize(table.Rows)
	for _, rowErr := range result.Errors {
		logger.Debug("Dropped malformed row", "error", rowErr.Error())
	}
	logger.Debug("Normalized catalog",
		"rows", len(table.Rows),
		"books", len(result.Books),
		"skipped", result.SkippedTotal()+table.Skipped)
	return table, result, nil
}

func (r *Runner) ontologyLoader(cfg *config.Config, logger *slog.Logger) graph.OntologyLoader {
	if r.loader != nil {
		return r.loader
	}
	// Validate has already accepted the format.
	format, _ := ontology.ParseFormat(cfg.Ontology.Format)
	return ontology.NewLoader(
		ontology.WithTimeout(cfg.Ontology.Timeout),
		ontology.WithMaxBytes(cfg.Ontology.MaxBytes),
		ontology.WithFormat(format),
		ontology.WithLogger(logger),
	)
}

func skippedCounts(table *catalog.Table, result catalog.Result) map[string]int {
	counts := make(map[string]int, len(result.Skipped)+1)
	for reason, n := range result.Skipped {
		if n > 0 {
			counts[string(reason)] = n
		}
	}
	if table.Skipped > 0 {
		counts[string(catalog.SkipStructural)] = table.Skipped
	}
	return counts
}

func saveSnapshot(ctx context.Context, path, runID string, books []catalog.Book) error {
	store, err := storage.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer store.Close()

	if err := store.Save(ctx, runID, books); err != nil {
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}
	return nil
}
