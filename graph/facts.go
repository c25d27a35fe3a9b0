package graph

import (
	"strconv"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/bookgraph/catalog"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

// Placeholder stands in for any field that is empty at emission time.
// Triples pointing at it are scrubbed before the graph is returned.
const Placeholder = "unknown"

// FactSource is recorded on every emitted fact.
const FactSource = "bookgraph.lift"

// Facts returns the dotted-predicate facts for one book with every empty
// field replaced by Placeholder. The book itself is not modified. subject is
// the entity name (the title) and object values are lexical forms.
func Facts(b catalog.Book, now time.Time) []message.Triple {
	subject := orPlaceholder(b.Title)

	fact := func(predicate, object string) message.Triple {
		return message.Triple{
			Subject:    subject,
			Predicate:  predicate,
			Object:     orPlaceholder(object),
			Source:     FactSource,
			Timestamp:  now,
			Confidence: 1.0,
		}
	}

	pages := ""
	if b.Pages > 0 {
		pages = strconv.Itoa(b.Pages)
	}

	triples := []message.Triple{
		fact(book.WorkIdentifier, b.ISBN13),
		fact(book.WorkAuthor, b.Authors),
		fact(book.WorkRating, b.RatingString()),
		fact(book.WorkLanguage, b.LanguageCode),
		fact(book.WorkPages, pages),
		fact(book.WorkPublished, b.PublicationDate),
		fact(book.WorkPublisher, b.Publisher),
		fact(book.SeriesPosition, b.Position()),
	}

	if !b.IsStandalone() {
		triples = append(triples, fact(book.SeriesMemberOf, b.Series))
	}
	return triples
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
