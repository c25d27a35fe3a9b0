package export

import (
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/bookgraph/rdf"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

// localName is the conservative subset of Turtle PN_LOCAL that can follow a
// prefix without escaping.
var localName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	// namespaces is sorted longest first so the most specific prefix wins.
	namespaces []string
	byNS       map[string]string
	sb         strings.Builder
}

// NewTurtleWriter creates a Turtle writer with the given prefix bindings.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	w := &TurtleWriter{
		prefixes: make(map[string]string, len(prefixes)),
		byNS:     make(map[string]string, len(prefixes)),
	}
	for prefix, iri := range prefixes {
		w.SetPrefix(prefix, iri)
	}
	return w
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri

	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w.byNS = make(map[string]string, len(keys))
	w.namespaces = w.namespaces[:0]
	for _, k := range keys {
		ns := w.prefixes[k]
		if _, ok := w.byNS[ns]; ok {
			continue
		}
		w.byNS[ns] = k
		w.namespaces = append(w.namespaces, ns)
	}
	sort.SliceStable(w.namespaces, func(i, j int) bool {
		return len(w.namespaces[i]) > len(w.namespaces[j])
	})
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString("@prefix " + prefix + ": <" + rdf.EscapeIRI(w.prefixes[prefix]) + "> .\n")
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(subject rdf.Term) {
	w.sb.WriteString(w.term(subject))
	w.sb.WriteString("\n")
}

// WritePredicate writes a predicate-object pair of the current subject.
func (w *TurtleWriter) WritePredicate(predicate, object rdf.Term, last bool) {
	terminator := " ;"
	if last {
		terminator = " ."
	}
	pred := "a"
	if predicate.Value != book.RDFType {
		pred = w.term(predicate)
	}
	w.sb.WriteString("    " + pred + " " + w.term(object) + terminator + "\n")
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

func (w *TurtleWriter) term(t rdf.Term) string {
	switch t.Kind {
	case rdf.KindIRI:
		return w.iri(t.Value)
	case rdf.KindLiteral:
		s := `"` + rdf.EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^" + w.iri(t.Datatype)
		}
		return s
	default:
		return t.String()
	}
}

// iri compacts an IRI to a prefixed name when a bound namespace covers it.
func (w *TurtleWriter) iri(value string) string {
	for _, ns := range w.namespaces {
		if local, ok := strings.CutPrefix(value, ns); ok && localName.MatchString(local) {
			return w.byNS[ns] + ":" + local
		}
	}
	return "<" + rdf.EscapeIRI(value) + ">"
}

// Turtle serializes a graph as Turtle with one block per subject. Output is
// deterministic for a given graph.
func Turtle(g *rdf.Graph) []byte {
	w := NewTurtleWriter(g.Prefixes())
	w.WritePrefixes()

	triples := g.Triples()
	for i := 0; i < len(triples); {
		subject := triples[i].Subject
		j := i
		for j < len(triples) && triples[j].Subject == subject {
			j++
		}

		w.WriteSubject(subject)
		for k := i; k < j; k++ {
			w.WritePredicate(triples[k].Predicate, triples[k].Object, k == j-1)
		}
		if j < len(triples) {
			w.WriteBlank()
		}
		i = j
	}
	return []byte(w.String())
}
