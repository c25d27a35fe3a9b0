package export

import (
	"strings"

	"github.com/c360studio/bookgraph/rdf"
)

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple.
func (w *NTriplesWriter) WriteTriple(t rdf.Triple) {
	w.sb.WriteString(t.String())
	w.sb.WriteString("\n")
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

// NTriples serializes a graph as sorted N-Triples. Prefix bindings are not
// part of the format and are dropped.
func NTriples(g *rdf.Graph) []byte {
	w := NewNTriplesWriter()
	for _, t := range g.Triples() {
		w.WriteTriple(t)
	}
	return []byte(w.String())
}
