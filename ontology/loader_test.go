package ontology

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/bookgraph/rdf"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

func TestLoader_LocalSources(t *testing.T) {
	abs, err := filepath.Abs("testdata/books.owl")
	require.NoError(t, err)

	tests := []struct {
		name    string
		uri     string
		triples int
	}{
		{"plain path", "testdata/books.owl", 20},
		{"file uri", "file://" + filepath.ToSlash(abs), 20},
		{"ntriples by extension", "testdata/books.nt", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewLoader().Load(context.Background(), tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.triples, g.Len())
		})
	}
}

func TestLoader_ForcedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	data, err := os.ReadFile("testdata/books.nt")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	g, err := NewLoader(WithFormat(FormatNTriples)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
}

func TestLoader_Remote(t *testing.T) {
	owl, err := os.ReadFile("testdata/books.owl")
	require.NoError(t, err)

	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ontology":
			gotAccept = r.Header.Get("Accept")
			w.Header().Set("Content-Type", "application/rdf+xml; charset=utf-8")
			_, _ = w.Write(owl)
		case "/vocab.nt":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = fmt.Fprintln(w, `<https://schema.org/Book> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .`)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write(owl)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Run("content type selects parser", func(t *testing.T) {
		g, err := NewLoader(WithHTTPClient(server.Client())).Load(context.Background(), server.URL+"/ontology")
		require.NoError(t, err)
		assert.Equal(t, 20, g.Len())
		assert.Contains(t, gotAccept, "application/rdf+xml")
	})

	t.Run("extension wins over content type", func(t *testing.T) {
		g, err := NewLoader(WithHTTPClient(server.Client())).Load(context.Background(), server.URL+"/vocab.nt")
		require.NoError(t, err)
		assert.True(t, g.Has(rdf.NewTriple(rdf.IRI(book.ClassBook), rdf.IRI(book.RDFType), rdf.IRI(owlClass))))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), server.URL+"/missing.owl")
		require.Error(t, err)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, server.URL+"/missing.owl", loadErr.URI)
		assert.Contains(t, err.Error(), "HTTP 404")
	})

	t.Run("size limit", func(t *testing.T) {
		_, err := NewLoader(WithMaxBytes(64)).Load(context.Background(), server.URL+"/ontology")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content too large")
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := NewLoader(WithTimeout(20*time.Millisecond)).Load(context.Background(), server.URL+"/slow")
		require.Error(t, err)
		assert.True(t, IsLoadError(err))
	})
}

func TestLoader_Failures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.owl")
	require.NoError(t, os.WriteFile(broken, []byte(`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">`), 0644))

	tests := []struct {
		name string
		uri  string
		ctx  func() context.Context
	}{
		{"missing file", filepath.Join(dir, "absent.owl"), context.Background},
		{"unparseable", broken, context.Background},
		{"cancelled", "testdata/books.owl", func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewLoader().Load(tt.ctx(), tt.uri)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, IsLoadError(err))
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"RDFXML", FormatRDFXML},
		{"owl", FormatRDFXML},
		{"nt", FormatNTriples},
		{"n-triples", FormatNTriples},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("turtle")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()

	p, err := r.Resolve(FormatAuto, "/x/Books.OWL", "")
	require.NoError(t, err)
	assert.Equal(t, FormatRDFXML, p.Format())

	p, err = r.Resolve(FormatAuto, "/x/vocab", "application/n-triples")
	require.NoError(t, err)
	assert.Equal(t, FormatNTriples, p.Format())

	p, err = r.Resolve(FormatNTriples, "/x/vocab.owl", "application/rdf+xml")
	require.NoError(t, err)
	assert.Equal(t, FormatNTriples, p.Format(), "explicit format wins")

	_, err = r.Resolve(FormatAuto, "/x/vocab", "text/html")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = r.Resolve(Format("turtle"), "/x/vocab.ttl", "")
	assert.True(t, strings.Contains(err.Error(), "turtle"))
}
