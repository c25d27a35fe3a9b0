package ontology

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/c360studio/bookgraph/rdf"
)

// Format names an ontology serialization.
type Format string

const (
	// FormatAuto selects the parser from the source extension or Content-Type.
	FormatAuto Format = ""

	// FormatRDFXML is RDF/XML, the usual OWL exchange syntax.
	FormatRDFXML Format = "rdfxml"

	// FormatNTriples is line-based N-Triples.
	FormatNTriples Format = "ntriples"
)

// ParseFormat converts a configuration value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "rdfxml", "rdf/xml", "xml", "owl":
		return FormatRDFXML, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	}
	return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Parser decodes one ontology serialization into a graph.
type Parser interface {
	// Parse reads a document. base resolves relative IRIs.
	Parse(r io.Reader, base string) (*rdf.Graph, error)

	// Format returns the serialization this parser handles.
	Format() Format

	// Extensions returns the file extensions (with dot) this parser handles.
	Extensions() []string

	// CanParse returns true if this parser handles the given MIME type.
	CanParse(mimeType string) bool
}

// Registry manages ontology parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[Format]Parser
}

// DefaultRegistry is the registry with the built-in parsers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the RDF/XML and N-Triples parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[Format]Parser),
	}
	r.Register(NewRDFXMLParser())
	r.Register(NewNTriplesParser())
	return r
}

// Register adds a parser, replacing any parser for the same format.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.Format()] = p
}

// Get returns the parser for a format, or nil.
func (r *Registry) Get(f Format) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parsers[f]
}

// GetByExtension returns a parser for a path based on its extension.
func (r *Registry) GetByExtension(path string) Parser {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		for _, e := range p.Extensions() {
			if e == ext {
				return p
			}
		}
	}
	return nil
}

// GetByContentType returns a parser for an HTTP Content-Type value.
func (r *Registry) GetByContentType(contentType string) Parser {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		if p.CanParse(mediaType) {
			return p
		}
	}
	return nil
}

// Resolve picks the parser for a source. An explicit format wins, then the
// extension, then the Content-Type.
func (r *Registry) Resolve(f Format, path, contentType string) (Parser, error) {
	if f != FormatAuto {
		if p := r.Get(f); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if p := r.GetByExtension(path); p != nil {
		return p, nil
	}
	if contentType != "" {
		if p := r.GetByContentType(contentType); p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, path)
}
