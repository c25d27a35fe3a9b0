package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/bookgraph/export"
	"github.com/c360studio/bookgraph/ontology"
	"github.com/c360studio/bookgraph/rdf"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

func hobbitGraph() *rdf.Graph {
	g := rdf.NewGraph()
	for prefix, ns := range book.Prefixes() {
		g.Bind(prefix, ns)
	}
	s := rdf.IRI(book.Namespace + "The_Hobbit")
	g.Add(
		rdf.NewTriple(s, rdf.IRI(book.RDFType), rdf.IRI(book.ClassBook)),
		rdf.NewTriple(s, rdf.IRI(book.PropAuthor), rdf.IRI(book.Namespace+"J.R.R._Tolkien")),
		rdf.NewTriple(s, rdf.IRI(book.PropNumberOfPages), rdf.TypedLiteral("310", book.XSDInteger)),
		rdf.NewTriple(s, rdf.IRI(book.PropInLanguage), rdf.LangLiteral("en-US", "en-US")),
	)
	return g
}

func TestTurtle(t *testing.T) {
	want := `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix schema: <https://schema.org/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

schema:The_Hobbit
    a schema:Book ;
    schema:author <https://schema.org/J.R.R._Tolkien> ;
    schema:inLanguage "en-US"@en-US ;
    schema:numberOfPages "310"^^xsd:integer .
`
	assert.Equal(t, want, string(export.Turtle(hobbitGraph())))
}

func TestTurtle_MultipleSubjectsAndEscaping(t *testing.T) {
	g := hobbitGraph()
	other := rdf.IRI(book.Namespace + `Say_"Hi"`)
	g.Add(
		rdf.NewTriple(other, rdf.IRI(book.PropPosition), rdf.Literal("line\nbreak")),
		rdf.NewTriple(rdf.Blank("b1"), rdf.IRI("http://example.org/p"), other),
	)

	out := string(export.Turtle(g))

	assert.Contains(t, out, "<https://schema.org/Say_%22Hi%22>\n    schema:position \"line\\nbreak\" .\n")
	assert.Contains(t, out, "_:b1\n    <http://example.org/p> <https://schema.org/Say_%22Hi%22> .\n")
	assert.Equal(t, 3, strings.Count(out, " .\n")-5, "one block terminator per subject")
	assert.Contains(t, out, ".\n\n", "subject blocks are separated")
}

func TestTurtle_LongestPrefixWins(t *testing.T) {
	g := rdf.NewGraph()
	g.Bind("ex", "http://example.org/")
	g.Bind("books", "http://example.org/books/")
	g.Add(rdf.NewTriple(
		rdf.IRI("http://example.org/books/Dune"),
		rdf.IRI("http://example.org/title"),
		rdf.Literal("Dune")))

	out := string(export.Turtle(g))
	assert.Contains(t, out, "books:Dune\n    ex:title \"Dune\" .\n")
}

func TestTurtle_Deterministic(t *testing.T) {
	first := export.Turtle(hobbitGraph())
	for i := 0; i < 5; i++ {
		assert.True(t, bytes.Equal(first, export.Turtle(hobbitGraph())))
	}
}

func TestNTriples_RoundTrip(t *testing.T) {
	g := hobbitGraph()
	data := export.NTriples(g)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "<https://schema.org/The_Hobbit> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <https://schema.org/Book> .", lines[0])

	parsed, err := ontology.NewNTriplesParser().Parse(bytes.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, g.Triples(), parsed.Triples())
}

func TestJSONLD(t *testing.T) {
	data, err := export.JSONLD(hobbitGraph())
	require.NoError(t, err)

	var doc export.JSONLDDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, book.Namespace, doc.Context["schema"])
	require.Len(t, doc.Graph, 1)

	node := doc.Graph[0]
	assert.Equal(t, book.Namespace+"The_Hobbit", node.ID)
	assert.Equal(t, []string{book.ClassBook}, node.Type)
	assert.Equal(t, []export.JSONLDObject{{ID: book.Namespace + "J.R.R._Tolkien"}}, node.Properties[book.PropAuthor])
	assert.Equal(t, []export.JSONLDObject{{Value: "310", Type: book.XSDInteger}}, node.Properties[book.PropNumberOfPages])
	assert.Equal(t, []export.JSONLDObject{{Value: "en-US", Language: "en-US"}}, node.Properties[book.PropInLanguage])
}

func TestJSONLD_EmptyLiteralKeepsValue(t *testing.T) {
	g := rdf.NewGraph()
	g.Add(rdf.NewTriple(rdf.IRI("http://example.org/s"), rdf.IRI("http://example.org/p"), rdf.Literal("")))

	data, err := export.JSONLD(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"@value": ""`)
}

func TestSerialize(t *testing.T) {
	g := hobbitGraph()

	for _, format := range []export.Format{export.FormatTurtle, export.FormatNTriples, export.FormatJSONLD} {
		t.Run(string(format), func(t *testing.T) {
			data, err := export.Serialize(g, format)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}

	_, err := export.Serialize(g, export.Format("rdfxml"))
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)

	_, err = export.Serialize(nil, export.FormatTurtle)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "books.ttl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	n, err := export.WriteFile(path, hobbitGraph(), export.FormatTurtle)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, export.Turtle(hobbitGraph()), data, "existing file is overwritten")
}

func TestWriteFile_Errors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	tests := []struct {
		name   string
		path   string
		format export.Format
	}{
		{"parent is a file", filepath.Join(blocker, "books.ttl"), export.FormatTurtle},
		{"path is a directory", dir, export.FormatTurtle},
		{"unsupported format", filepath.Join(dir, "books.xml"), export.Format("rdfxml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := export.WriteFile(tt.path, hobbitGraph(), tt.format)
			require.Error(t, err)

			var serr *export.SerializationError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.path, serr.Path)
			assert.True(t, export.IsSerializationError(err))
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]export.Format{
		"turtle":   export.FormatTurtle,
		"TTL":      export.FormatTurtle,
		"nt":       export.FormatNTriples,
		"json-ld":  export.FormatJSONLD,
		" jsonld ": export.FormatJSONLD,
	}
	for in, want := range tests {
		got, err := export.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := export.ParseFormat("xml")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestFormatForPath(t *testing.T) {
	f, ok := export.FormatForPath("out/books.NT")
	assert.True(t, ok)
	assert.Equal(t, export.FormatNTriples, f)

	_, ok = export.FormatForPath("out/books")
	assert.False(t, ok)

	info, ok := export.GetFormatInfo(export.FormatJSONLD)
	require.True(t, ok)
	assert.Equal(t, "application/ld+json", info.MIMEType)
}
