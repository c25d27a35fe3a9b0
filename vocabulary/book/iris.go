package book

// Namespace is the schema.org vocabulary namespace used for all book predicates.
const Namespace = "https://schema.org/"

// DefaultEntityNamespace is the base IRI for book, author, publisher and
// series instances when no namespace is configured.
const DefaultEntityNamespace = Namespace

// Standard ontology namespaces bound as prefixes in serialized graphs.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// RDFType is the rdf:type property.
const RDFType = RDFNamespace + "type"

// Class IRIs.
const (
	// ClassBook marks a lifted catalog row.
	ClassBook = Namespace + "Book"

	// ClassListItem marks a book as a member of an ordered series.
	ClassListItem = Namespace + "ListItem"
)

// Property IRIs.
const (
	PropIdentifier      = Namespace + "identifier"
	PropAuthor          = Namespace + "author"
	PropAggregateRating = Namespace + "aggregateRating"
	PropInLanguage      = Namespace + "inLanguage"
	PropNumberOfPages   = Namespace + "numberOfPages"
	PropDatePublished   = Namespace + "datePublished"
	PropPublisher       = Namespace + "publisher"
	PropPosition        = Namespace + "position"
	PropPartOfSeries    = Namespace + "partOfSeries"
)

// XSD datatype IRIs used for typed literals.
const (
	XSDInteger = XSDNamespace + "integer"
	XSDFloat   = XSDNamespace + "float"
	XSDDate    = XSDNamespace + "date"
	XSDString  = XSDNamespace + "string"
)

// Prefixes returns the prefix bindings every serialized book graph carries.
func Prefixes() map[string]string {
	return map[string]string{
		"schema": Namespace,
		"rdf":    RDFNamespace,
		"rdfs":   RDFSNamespace,
		"owl":    OWLNamespace,
		"xsd":    XSDNamespace,
	}
}
