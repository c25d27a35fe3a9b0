// Package book provides vocabulary predicates for lifted book catalog entities.
//
// # Semstreams Integration
//
// This package follows semstreams vocabulary patterns:
//   - Predicates use three-level dotted notation (domain.category.property)
//   - Predicates are registered in init() using vocabulary.Register()
//   - IRI mappings use vocabulary.WithIRI() so the graph builder can resolve
//     every dotted predicate to its schema.org property
//
// # Entities
//
// A lifted book is a schema:Book whose subject IRI is the entity namespace
// followed by the normalized title. Authors, publishers and series are linked
// entities under the same namespace:
//
//	<ns:Harry_Potter_and_the_Chamber_of_Secrets>
//	    a schema:Book, schema:ListItem ;
//	    schema:author <ns:J.K._Rowling> ;
//	    schema:partOfSeries <ns:Harry_Potter> ;
//	    schema:position 2 .
//
// # Usage
//
//	iri := book.PredicateIRI(book.WorkAuthor) // https://schema.org/author
package book
