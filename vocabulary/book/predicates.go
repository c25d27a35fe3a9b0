package book

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"
)

// Work predicates describe a single catalog entry.
const (
	// WorkIdentifier is the ISBN-13 of the edition.
	WorkIdentifier = "book.work.identifier"

	// WorkAuthor links a book to its author entity.
	WorkAuthor = "book.work.author"

	// WorkRating is the average reader rating.
	WorkRating = "book.work.rating"

	// WorkLanguage is the language code of the edition.
	WorkLanguage = "book.work.language"

	// WorkPages is the page count.
	WorkPages = "book.work.pages"

	// WorkPublished is the publication date.
	WorkPublished = "book.work.published"

	// WorkPublisher links a book to its publisher entity.
	WorkPublisher = "book.work.publisher"
)

// Series predicates describe membership in an ordered series.
const (
	// SeriesPosition is the book's position in its series.
	// Values: integer or free text ("1-3"); standalone works are always 1.
	SeriesPosition = "book.series.position"

	// SeriesMemberOf links a book to its series entity.
	SeriesMemberOf = "book.series.member_of"
)

// PredicateIRI resolves a dotted predicate to its registered standard IRI.
// Unregistered predicates fall back to the schema.org namespace plus the last
// segment of the dotted name.
func PredicateIRI(predicate string) string {
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	if i := strings.LastIndex(predicate, "."); i >= 0 {
		return Namespace + predicate[i+1:]
	}
	return Namespace + predicate
}

func init() {
	vocabulary.Register(WorkIdentifier,
		vocabulary.WithDescription("ISBN-13 of the edition"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropIdentifier))

	vocabulary.Register(WorkAuthor,
		vocabulary.WithDescription("Author entity of the book"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropAuthor))

	vocabulary.Register(WorkRating,
		vocabulary.WithDescription("Average reader rating"),
		vocabulary.WithDataType("float"),
		vocabulary.WithIRI(PropAggregateRating))

	vocabulary.Register(WorkLanguage,
		vocabulary.WithDescription("Language code of the edition"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropInLanguage))

	vocabulary.Register(WorkPages,
		vocabulary.WithDescription("Number of pages"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropNumberOfPages))

	vocabulary.Register(WorkPublished,
		vocabulary.WithDescription("Publication date (YYYY-MM-DD)"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(PropDatePublished))

	vocabulary.Register(WorkPublisher,
		vocabulary.WithDescription("Publisher entity of the edition"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropPublisher))

	vocabulary.Register(SeriesPosition,
		vocabulary.WithDescription("Position of the book within its series"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropPosition))

	vocabulary.Register(SeriesMemberOf,
		vocabulary.WithDescription("Series entity the book belongs to"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropPartOfSeries))
}
