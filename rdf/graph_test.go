package rdf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

const ns = "https://schema.org/"

func TestGraph_AddIsSetUnion(t *testing.T) {
	g := NewGraph()
	tr := NewTriple(IRI(ns+"The_Hobbit"), IRI(ns+"numberOfPages"), TypedLiteral("310", "http://www.w3.org/2001/XMLSchema#integer"))

	g.Add(tr, tr)
	g.Add(tr)

	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has(tr))
}

func TestGraph_TriplesDeterministic(t *testing.T) {
	g := NewGraph()
	s1 := IRI(ns + "B")
	s2 := IRI(ns + "A")
	g.Add(
		NewTriple(s1, IRI(ns+"author"), IRI(ns+"X")),
		NewTriple(s1, IRI(rdfType), IRI(ns+"Book")),
		NewTriple(s2, IRI(ns+"position"), Literal("1")),
	)

	want := []Triple{
		NewTriple(s2, IRI(ns+"position"), Literal("1")),
		NewTriple(s1, IRI(rdfType), IRI(ns+"Book")),
		NewTriple(s1, IRI(ns+"author"), IRI(ns+"X")),
	}
	if diff := cmp.Diff(want, g.Triples()); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
}

func TestGraph_RemoveFunc(t *testing.T) {
	g := NewGraph()
	s := IRI(ns + "Book")
	g.Add(
		NewTriple(s, IRI(ns+"author"), IRI(ns+"unknown")),
		NewTriple(s, IRI(ns+"publisher"), IRI(ns+"Scholastic")),
	)

	removed := g.RemoveFunc(func(t Triple) bool { return t.Object == IRI(ns+"unknown") })

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, g.Len())
}

func TestGraph_MatchWildcards(t *testing.T) {
	g := NewGraph()
	s := IRI(ns + "Book")
	g.Add(
		NewTriple(s, IRI(ns+"author"), IRI(ns+"A")),
		NewTriple(s, IRI(ns+"author"), IRI(ns+"B")),
		NewTriple(IRI(ns+"Other"), IRI(ns+"author"), IRI(ns+"A")),
	)

	assert.Len(t, g.Match(s, Term{}, Term{}), 2)
	assert.Len(t, g.Match(Term{}, IRI(ns+"author"), IRI(ns+"A")), 2)
	assert.Len(t, g.Match(Term{}, Term{}, Term{}), 3)
}

func TestGraph_MergeKeepsExistingPrefixes(t *testing.T) {
	a := NewGraph()
	a.Bind("schema", ns)
	b := NewGraph()
	b.Bind("schema", "http://schema.org/")
	b.Bind("foaf", "http://xmlns.com/foaf/0.1/")
	b.Add(NewTriple(IRI(ns+"x"), IRI(ns+"y"), Literal("z")))

	a.Merge(b)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, ns, a.Prefixes()["schema"])
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", a.Prefixes()["foaf"])
}

func TestTerm_String(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"iri", IRI(ns + "Book"), "<https://schema.org/Book>"},
		{"iri with space", IRI(ns + "A B"), "<https://schema.org/A%20B>"},
		{"blank", Blank("_:b0"), "_:b0"},
		{"plain", Literal(`say "hi"`), `"say \"hi\""`},
		{"lang", LangLiteral("eng", "eng"), `"eng"@eng`},
		{"typed", TypedLiteral("2", "http://www.w3.org/2001/XMLSchema#integer"), `"2"^^<http://www.w3.org/2001/XMLSchema#integer>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}
