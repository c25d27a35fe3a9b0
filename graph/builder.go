// Package graph lifts normalized books into an RDF graph on top of a base
// ontology.
//
// Building runs in two phases. Every book is first emitted as a fixed set of
// dotted-predicate facts with empty fields replaced by Placeholder; the facts
// are then lifted to RDF terms through the book vocabulary and any triple
// whose object is the placeholder is scrubbed.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/bookgraph/catalog"
	"github.com/c360studio/bookgraph/rdf"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

// OntologyLoader fetches the base ontology a graph is built on.
type OntologyLoader interface {
	Load(ctx context.Context, uri string) (*rdf.Graph, error)
}

// Stats summarizes one build.
type Stats struct {
	Books    int `json:"books"`
	Imported int `json:"imported"`
	Emitted  int `json:"emitted"`
	Scrubbed int `json:"scrubbed"`
	Final    int `json:"final"`
}

// Builder constructs book graphs.
type Builder struct {
	namespace string
	loader    OntologyLoader
	logger    *slog.Logger
	now       func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNamespace sets the entity namespace for book, author, publisher and
// series IRIs.
func WithNamespace(ns string) BuilderOption {
	return func(b *Builder) {
		if ns != "" {
			b.namespace = ns
		}
	}
}

// WithLoader sets the base ontology loader.
func WithLoader(l OntologyLoader) BuilderOption {
	return func(b *Builder) {
		b.loader = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a builder using the schema.org entity namespace.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		namespace: book.DefaultEntityNamespace,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Namespace returns the entity namespace.
func (b *Builder) Namespace() string {
	return b.namespace
}

// Entity returns the IRI of a named entity in the builder's namespace.
func (b *Builder) Entity(name string) rdf.Term {
	return rdf.IRI(b.namespace + rdf.EscapeIRI(name))
}

// Build imports the base ontology and adds the triples of every book. A
// failed import returns the loader's error and no graph. An empty
// baseOntologyURI skips the import.
func (b *Builder) Build(ctx context.Context, books []catalog.Book, baseOntologyURI string) (*rdf.Graph, Stats, error) {
	stats := Stats{Books: len(books)}

	g := rdf.NewGraph()
	for prefix, ns := range book.Prefixes() {
		g.Bind(prefix, ns)
	}
	if b.namespace != book.Namespace {
		g.Bind("books", b.namespace)
	}

	if baseOntologyURI != "" {
		if b.loader == nil {
			return nil, stats, fmt.Errorf("no ontology loader configured for %s", baseOntologyURI)
		}
		base, err := b.loader.Load(ctx, baseOntologyURI)
		if err != nil {
			return nil, stats, err
		}
		g.Merge(base)
		stats.Imported = g.Len()
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	now := b.now()
	for _, bk := range books {
		b.emit(g, bk, now)
	}
	stats.Emitted = g.Len() - stats.Imported

	stats.Scrubbed = g.RemoveFunc(b.isPlaceholder)
	stats.Final = g.Len()

	b.logger.Debug("Built book graph",
		"books", stats.Books,
		"imported", stats.Imported,
		"emitted", stats.Emitted,
		"scrubbed", stats.Scrubbed,
		"triples", stats.Final)
	return g, stats, nil
}

// emit adds the type markers and lifted facts of one book.
func (b *Builder) emit(g *rdf.Graph, bk catalog.Book, now time.Time) {
	facts := Facts(bk, now)
	if len(facts) == 0 {
		return
	}
	subject := b.Entity(facts[0].Subject)
	rdfType := rdf.IRI(book.RDFType)

	g.Add(rdf.NewTriple(subject, rdfType, rdf.IRI(book.ClassBook)))
	if !bk.IsStandalone() {
		g.Add(rdf.NewTriple(subject, rdfType, rdf.IRI(book.ClassListItem)))
	}
	for _, f := range facts {
		g.Add(rdf.NewTriple(subject, rdf.IRI(book.PredicateIRI(f.Predicate)), b.object(f)))
	}
}

// object lifts a fact's lexical value to a term using the registered
// datatype of its predicate.
func (b *Builder) object(f message.Triple) rdf.Term {
	value := fmt.Sprint(f.Object)

	switch f.Predicate {
	case book.WorkLanguage:
		if languageTag.MatchString(value) {
			return rdf.LangLiteral(value, value)
		}
		return rdf.Literal(value)
	case book.SeriesPosition:
		if integer.MatchString(value) {
			return rdf.TypedLiteral(value, book.XSDInteger)
		}
		return rdf.Literal(value)
	}

	dataType := ""
	if meta := vocabulary.GetPredicateMetadata(f.Predicate); meta != nil {
		dataType = meta.DataType
	}
	switch dataType {
	case "entity_id":
		return b.Entity(value)
	case "int":
		return rdf.TypedLiteral(value, book.XSDInteger)
	case "float":
		return rdf.TypedLiteral(value, book.XSDFloat)
	case "datetime":
		return rdf.TypedLiteral(value, book.XSDDate)
	}
	return rdf.Literal(value)
}

// isPlaceholder matches triples whose object is the placeholder entity or a
// placeholder literal.
func (b *Builder) isPlaceholder(t rdf.Triple) bool {
	switch t.Object.Kind {
	case rdf.KindIRI:
		return t.Object.Value == b.namespace+Placeholder
	case rdf.KindLiteral:
		return t.Object.Value == Placeholder
	}
	return false
}

var (
	languageTag = regexp.MustCompile(`^[A-Za-z]{1,8}(-[A-Za-z0-9]{1,8})*$`)
	integer     = regexp.MustCompile(`^[0-9]+$`)
)
