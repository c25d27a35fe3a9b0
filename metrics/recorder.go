// Package metrics counts what a pipeline run read, dropped and produced.
// Counters live on a private registry and can be dumped in node-exporter
// textfile format after a batch run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookgraph"

// Recorder holds the run counters.
type Recorder struct {
	registry *prometheus.Registry

	rowsRead        prometheus.Counter
	rowsSkipped     *prometheus.CounterVec
	booksNormalized prometheus.Counter
	triplesEmitted  prometheus.Counter
	triplesScrubbed prometheus.Counter
	triplesWritten  prometheus.Counter
}

// NewRecorder creates a recorder with all counters registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Source rows read, including rows later skipped.",
		}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Source rows excluded from the normalized set.",
		}, []string{"reason"}),
		booksNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_normalized_total",
			Help:      "Books that survived normalization.",
		}),
		triplesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_emitted_total",
			Help:      "Triples emitted from book facts before scrubbing.",
		}),
		triplesScrubbed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_scrubbed_total",
			Help:      "Triples removed because their object was the placeholder.",
		}),
		triplesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_written_total",
			Help:      "Triples in the serialized graph.",
		}),
	}
	r.registry.MustRegister(
		r.rowsRead,
		r.rowsSkipped,
		r.booksNormalized,
		r.triplesEmitted,
		r.triplesScrubbed,
		r.triplesWritten,
	)
	return r
}

// Registry returns the registry the counters are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// AddRowsRead counts rows read from the source.
func (r *Recorder) AddRowsRead(n int) {
	add(r.rowsRead, n)
}

// AddRowsSkipped counts rows dropped for reason.
func (r *Recorder) AddRowsSkipped(reason string, n int) {
	add(r.rowsSkipped.WithLabelValues(reason), n)
}

// AddBooksNormalized counts books in the normalized set.
func (r *Recorder) AddBooksNormalized(n int) {
	add(r.booksNormalized, n)
}

// AddTriplesEmitted counts triples produced by the emit phase.
func (r *Recorder) AddTriplesEmitted(n int) {
	add(r.triplesEmitted, n)
}

// AddTriplesScrubbed counts placeholder triples removed.
func (r *Recorder) AddTriplesScrubbed(n int) {
	add(r.triplesScrubbed, n)
}

// AddTriplesWritten counts triples written to the serialized graph.
func (r *Recorder) AddTriplesWritten(n int) {
	add(r.triplesWritten, n)
}

// WriteTextfile writes every counter to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// add ignores non-positive deltas; counters panic on negative values.
func add(c prometheus.Counter, n int) {
	if n > 0 {
		c.Add(float64(n))
	}
}
