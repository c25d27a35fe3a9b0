// Package rdf provides the term, triple and graph value types shared by the
// ontology parsers, the graph builder and the serializers.
package rdf

import "strings"

// TermKind distinguishes IRIs, blank nodes and literals.
type TermKind uint8

const (
	// KindIRI is an absolute IRI reference.
	KindIRI TermKind = iota + 1

	// KindBlank is a blank node; Value holds the label without "_:".
	KindBlank

	// KindLiteral is a literal with an optional datatype or language tag.
	KindLiteral
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a node or value in a triple. Terms are comparable and can be used
// as map keys.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI creates an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank creates a blank node term.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(label, "_:")}
}

// Literal creates a plain literal.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// TypedLiteral creates a literal with a datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangLiteral creates a language-tagged literal.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsZero reports whether the term is unset.
func (t Term) IsZero() bool { return t.Kind == 0 }

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + EscapeIRI(t.Value) + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + EscapeIRI(t.Datatype) + ">"
		}
		return s
	default:
		return ""
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple creates a triple.
func NewTriple(subject, predicate, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// String renders the triple as an N-Triples statement.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// EscapeLiteral escapes special characters in a literal's lexical form.
func EscapeLiteral(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// iriUnsafe lists characters that may not appear unescaped inside <...>.
const iriUnsafe = "<>\"{}|^`\\ "

// EscapeIRI percent-encodes characters that are not allowed in an IRI
// reference. Already valid IRIs are returned unchanged.
func EscapeIRI(s string) string {
	if !strings.ContainsAny(s, iriUnsafe) && !hasControl(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c == 0x7f || strings.IndexByte(iriUnsafe, c) >= 0 {
			sb.WriteByte('%')
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0x0f])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

const hexDigits = "0123456789ABCDEF"

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] <= 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}
