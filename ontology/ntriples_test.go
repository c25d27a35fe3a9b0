package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/bookgraph/rdf"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

func TestNTriplesParser_Terms(t *testing.T) {
	doc := strings.Join([]string{
		`# comment`,
		``,
		`<http://ex.org/s> <http://ex.org/p> <http://ex.org/o> .`,
		`<http://ex.org/s> <http://ex.org/label> "Hello"@en-GB .`,
		`<http://ex.org/s> <http://ex.org/pages> "310"^^<http://www.w3.org/2001/XMLSchema#integer> .`,
		`_:b1 <http://ex.org/p> _:b2.`,
		`<http://ex.org/s> <http://ex.org/quote> "say \"hi\"\né" . # trailing comment`,
	}, "\n")

	g, err := NewNTriplesParser().Parse(strings.NewReader(doc), "")
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())

	s := rdf.IRI("http://ex.org/s")
	assert.True(t, g.Has(rdf.NewTriple(s, rdf.IRI("http://ex.org/p"), rdf.IRI("http://ex.org/o"))))
	assert.True(t, g.Has(rdf.NewTriple(s, rdf.IRI("http://ex.org/label"), rdf.LangLiteral("Hello", "en-GB"))))
	assert.True(t, g.Has(rdf.NewTriple(s, rdf.IRI("http://ex.org/pages"), rdf.TypedLiteral("310", book.XSDInteger))))
	assert.True(t, g.Has(rdf.NewTriple(rdf.Blank("b1"), rdf.IRI("http://ex.org/p"), rdf.Blank("b2"))))
	assert.True(t, g.Has(rdf.NewTriple(s, rdf.IRI("http://ex.org/quote"), rdf.Literal("say \"hi\"\né"))))
}

func TestNTriplesParser_RoundTrip(t *testing.T) {
	g := rdf.NewGraph()
	g.Add(
		rdf.NewTriple(rdf.IRI("http://ex.org/a b"), rdf.IRI("http://ex.org/p"), rdf.Literal("tab\there")),
		rdf.NewTriple(rdf.IRI("http://ex.org/a"), rdf.IRI("http://ex.org/p"), rdf.LangLiteral("x", "en")),
	)

	lines := make([]string, 0, g.Len())
	for _, tr := range g.Triples() {
		lines = append(lines, tr.String())
	}

	parsed, err := NewNTriplesParser().Parse(strings.NewReader(strings.Join(lines, "\n")), "")
	require.NoError(t, err)
	require.Equal(t, 2, parsed.Len())
	assert.True(t, parsed.Has(rdf.NewTriple(rdf.IRI("http://ex.org/a"), rdf.IRI("http://ex.org/p"), rdf.LangLiteral("x", "en"))))
	assert.True(t, parsed.Has(rdf.NewTriple(rdf.IRI("http://ex.org/a%20b"), rdf.IRI("http://ex.org/p"), rdf.Literal("tab\there"))))
}

func TestNTriplesParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"missing dot", `<http://ex.org/s> <http://ex.org/p> <http://ex.org/o>`, "expected '.'"},
		{"literal subject", `"s" <http://ex.org/p> <http://ex.org/o> .`, "literal not allowed"},
		{"blank predicate", `<http://ex.org/s> _:p <http://ex.org/o> .`, "must be an IRI"},
		{"unterminated iri", `<http://ex.org/s <http://ex.org/p> "o" .`, ""},
		{"unterminated literal", `<http://ex.org/s> <http://ex.org/p> "open .`, "unterminated literal"},
		{"bad escape", `<http://ex.org/s> <http://ex.org/p> "\q" .`, "unknown escape"},
		{"short unicode", `<http://ex.org/s> <http://ex.org/p> "\u00" .`, "short unicode escape"},
		{"trailing garbage", `<http://ex.org/s> <http://ex.org/p> "o" . extra`, "after statement"},
		{"empty language", `<http://ex.org/s> <http://ex.org/p> "o"@ .`, "empty language tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNTriplesParser().Parse(strings.NewReader(tt.line), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}
