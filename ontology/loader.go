// Package ontology loads the base ontology a book graph is built on top of.
// Sources are local paths, file:// URIs or http(s) URLs serialized as
// RDF/XML or N-Triples.
package ontology

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360studio/bookgraph/rdf"
)

// Defaults for remote fetches.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 32 * 1024 * 1024
	userAgent       = "bookgraph/1.0"
)

// Loader resolves and parses base ontologies.
type Loader struct {
	client   *http.Client
	maxBytes int64
	format   Format
	registry *Registry
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets a custom HTTP client for remote sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.client = &http.Client{Timeout: d}
		}
	}
}

// WithMaxBytes bounds the size of a fetched or read document.
func WithMaxBytes(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithFormat forces a serialization instead of inferring it.
func WithFormat(f Format) LoaderOption {
	return func(l *Loader) {
		l.format = f
	}
}

// WithRegistry sets the parser registry.
func WithRegistry(r *Registry) LoaderOption {
	return func(l *Loader) {
		l.registry = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		registry: DefaultRegistry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and parses the ontology at uri. Every failure is a *LoadError.
func (l *Loader) Load(ctx context.Context, uri string) (*rdf.Graph, error) {
	start := time.Now()

	body, contentType, base, err := l.fetch(ctx, uri)
	if err != nil {
		return nil, &LoadError{URI: uri, Err: err}
	}

	parser, err := l.registry.Resolve(l.format, sourcePath(uri), contentType)
	if err != nil {
		return nil, &LoadError{URI: uri, Err: err}
	}

	g, err := parser.Parse(bytes.NewReader(body), base)
	if err != nil {
		return nil, &LoadError{URI: uri, Err: fmt.Errorf("parse %s: %w", parser.Format(), err)}
	}

	l.logger.Debug("Loaded ontology",
		"uri", uri,
		"format", string(parser.Format()),
		"bytes", len(body),
		"triples", g.Len(),
		"duration", time.Since(start))
	return g, nil
}

// fetch returns the document body, its Content-Type (remote only) and the
// base IRI relative references resolve against.
func (l *Loader) fetch(ctx context.Context, uri string) ([]byte, string, string, error) {
	u, err := url.Parse(uri)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			body, contentType, err := l.fetchRemote(ctx, uri)
			return body, contentType, uri, err
		case "file":
			path := u.Path
			if path == "" {
				path = u.Opaque
			}
			body, err := l.readFile(ctx, path)
			return body, "", uri, err
		}
	}

	body, err := l.readFile(ctx, uri)
	if err != nil {
		return nil, "", "", err
	}
	return body, "", fileURI(uri), nil
}

func (l *Loader) fetchRemote(ctx context.Context, uri string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rdf+xml, application/n-triples;q=0.9, application/xml;q=0.8, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (l *Loader) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > l.maxBytes {
		return nil, fmt.Errorf("content too large (exceeds %d bytes)", l.maxBytes)
	}
	return body, nil
}

// sourcePath returns the path component used for extension matching.
func sourcePath(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return u.Path
	}
	return uri
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
