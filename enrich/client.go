// Package enrich fetches supplementary facts about books from a remote
// SPARQL endpoint. Results are returned to callers and never folded into the
// lifted graph.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the public Wikidata query service.
	DefaultEndpoint = "https://query.wikidata.org/sparql"

	// DefaultTimeout bounds a single query.
	DefaultTimeout = 30 * time.Second

	// maxErrorBodySize limits the size of error response bodies.
	maxErrorBodySize = 4096

	resultsMediaType = "application/sparql-results+json"
	userAgent        = "bookgraph/1.0"
)

// Fact is one row of a supplementary query: an entity IRI and its label.
type Fact struct {
	Entity string `json:"entity"`
	Label  string `json:"label"`
}

// Client queries a SPARQL endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a client for endpoint. An empty endpoint selects
// DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// sparqlResponse is the SPARQL 1.1 JSON results envelope.
type sparqlResponse struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Query runs a SELECT query and maps each binding to a Fact. The first
// projected variable is the entity and the second, when present, its label.
func (c *Client) Query(ctx context.Context, query string) ([]Fact, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	params := u.Query()
	params.Set("query", query)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("sparql endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Head.Vars) == 0 {
		return nil, nil
	}
	entityVar := result.Head.Vars[0]
	labelVar := ""
	if len(result.Head.Vars) > 1 {
		labelVar = result.Head.Vars[1]
	}

	facts := make([]Fact, 0, len(result.Results.Bindings))
	for _, binding := range result.Results.Bindings {
		entity, ok := binding[entityVar]
		if !ok {
			continue
		}
		fact := Fact{Entity: entity.Value}
		if label, ok := binding[labelVar]; ok {
			fact.Label = label.Value
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

// GenreQuery builds a query for the genres of works titled title.
func GenreQuery(title string) string {
	return fmt.Sprintf(`SELECT DISTINCT ?genre ?genreLabel WHERE {
  ?work rdfs:label "%s"@en ;
        wdt:P136 ?genre .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 50`, escapeString(title))
}

// escapeString escapes a value for a double-quoted SPARQL string literal.
func escapeString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
