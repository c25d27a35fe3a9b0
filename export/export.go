// Package export serializes book graphs to Turtle, N-Triples and JSON-LD.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/c360studio/bookgraph/rdf"
)

// Serialize renders a graph in the given format. It has no side effects and
// returns identical bytes for identical graphs.
func Serialize(g *rdf.Graph, format Format) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("serialize: nil graph")
	}
	switch format {
	case FormatTurtle, "":
		return Turtle(g), nil
	case FormatNTriples:
		return NTriples(g), nil
	case FormatJSONLD:
		return JSONLD(g)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// WriteFile serializes g to path, creating parent directories and replacing
// any existing file. Every failure is a *SerializationError. It returns the
// number of bytes written.
func WriteFile(path string, g *rdf.Graph, format Format) (int, error) {
	data, err := Serialize(g, format)
	if err != nil {
		return 0, &SerializationError{Path: path, Err: err}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, &SerializationError{Path: path, Err: fmt.Errorf("create directory: %w", err)}
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, &SerializationError{Path: path, Err: err}
	}
	return len(data), nil
}
