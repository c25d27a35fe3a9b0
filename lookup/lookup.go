// Package lookup answers queries over a normalized book set: a uniform random
// pick, author search and title search. Results are plain maps of string
// tuples so callers never depend on catalog types.
package lookup

import (
	"errors"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"

	"github.com/c360studio/bookgraph/catalog"
)

// ErrEmptyCatalog is returned by RandomBook when the set has no books.
var ErrEmptyCatalog = errors.New("catalog is empty")

// Results maps a book ID to its public fields in catalog.PublicFieldNames
// order.
type Results map[string][]string

// Service is a read-only query surface over a normalized book set. It is not
// safe for concurrent use because RandomBook advances a shared source.
type Service struct {
	books []catalog.Book
	rng   *rand.Rand

	// foldedAuthors caches the case-folded author field of each book.
	foldedAuthors []string
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the random source used by RandomBook.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		if r != nil {
			s.rng = r
		}
	}
}

// NewService creates a service over books. The slice is copied.
func NewService(books []catalog.Book, opts ...Option) *Service {
	s := &Service{
		books: append([]catalog.Book(nil), books...),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.foldedAuthors = make([]string, len(s.books))
	for i, b := range s.books {
		s.foldedAuthors[i] = foldCase(b.Authors)
	}
	return s
}

// Len returns the number of books.
func (s *Service) Len() int {
	return len(s.books)
}

// Books returns a copy of the book set in its original order.
func (s *Service) Books() []catalog.Book {
	return append([]catalog.Book(nil), s.books...)
}

// RandomBook returns a book chosen uniformly from the set.
func (s *Service) RandomBook() (catalog.Book, error) {
	if len(s.books) == 0 {
		return catalog.Book{}, ErrEmptyCatalog
	}
	return s.books[s.rng.IntN(len(s.books))], nil
}

// AuthorSearch returns every book whose authors field contains query, using
// Unicode case folding. The query is canonicalized like stored text, so
// "J.K. Rowling" matches "J.K._Rowling".
func (s *Service) AuthorSearch(query string) Results {
	q := foldCase(canonicalQuery(query))
	if q == "" {
		return Results{}
	}

	out := Results{}
	for i, b := range s.books {
		if strings.Contains(s.foldedAuthors[i], q) {
			out[b.ID] = b.PublicFields()
		}
	}
	return out
}

// TitleSearch returns every book whose title contains query. Matching is
// case-sensitive.
func (s *Service) TitleSearch(query string) Results {
	q := canonicalQuery(query)
	if q == "" {
		return Results{}
	}

	out := Results{}
	for _, b := range s.books {
		if strings.Contains(b.Title, q) {
			out[b.ID] = b.PublicFields()
		}
	}
	return out
}

// canonicalQuery applies the stored-text canonicalization and drops padding.
func canonicalQuery(query string) string {
	return strings.Trim(catalog.CanonicalizeText(query), catalog.JoinChar)
}

func foldCase(s string) string {
	return cases.Fold().String(s)
}
