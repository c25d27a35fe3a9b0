package ontology

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/c360studio/bookgraph/rdf"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

// xmlNamespace is the namespace encoding/xml assigns to xml:* attributes.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

const (
	rdfXMLLiteral = book.RDFNamespace + "XMLLiteral"
	rdfFirst      = book.RDFNamespace + "first"
	rdfRest       = book.RDFNamespace + "rest"
	rdfNil        = book.RDFNamespace + "nil"
)

// RDFXMLParser parses RDF/XML documents such as OWL ontologies.
type RDFXMLParser struct{}

// NewRDFXMLParser creates an RDF/XML parser.
func NewRDFXMLParser() *RDFXMLParser {
	return &RDFXMLParser{}
}

// Format returns FormatRDFXML.
func (p *RDFXMLParser) Format() Format {
	return FormatRDFXML
}

// Extensions returns the file extensions handled by this parser.
func (p *RDFXMLParser) Extensions() []string {
	return []string{".owl", ".rdf", ".xml"}
}

// CanParse returns true for RDF/XML and generic XML media types.
func (p *RDFXMLParser) CanParse(mimeType string) bool {
	switch mimeType {
	case "application/rdf+xml", "application/xml", "text/xml":
		return true
	}
	return false
}

// Parse reads an RDF/XML document. Non-UTF-8 documents are decoded using the
// encoding named in the XML declaration.
func (p *RDFXMLParser) Parse(r io.Reader, base string) (*rdf.Graph, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	x := &xmlReader{
		dec:   dec,
		graph: rdf.NewGraph(),
	}
	if err := x.document(base); err != nil {
		line, _ := dec.InputPos()
		return nil, fmt.Errorf("rdf/xml line %d: %w", line, err)
	}
	return x.graph, nil
}

// xmlReader holds the state of one RDF/XML document walk.
type xmlReader struct {
	dec    *xml.Decoder
	graph  *rdf.Graph
	blanks int
}

// scope carries inherited xml:base and xml:lang values.
type scope struct {
	base string
	lang string
}

func (s scope) with(el xml.StartElement) scope {
	for _, a := range el.Attr {
		if a.Name.Space != xmlNamespace {
			continue
		}
		switch a.Name.Local {
		case "base":
			s.base = s.resolve(a.Value)
		case "lang":
			s.lang = a.Value
		}
	}
	return s
}

func (s scope) resolve(ref string) string {
	if s.base == "" {
		return ref
	}
	b, err := url.Parse(s.base)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}

func (s scope) fragment(id string) string {
	base, _, _ := strings.Cut(s.base, "#")
	return base + "#" + id
}

func (x *xmlReader) document(base string) error {
	for {
		tok, err := x.dec.Token()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("no root element")
		}
		if err != nil {
			return err
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		x.bindPrefixes(el)
		sc := scope{base: base}.with(el)
		if isRDF(el.Name, "RDF") {
			return x.nodeList(sc)
		}
		_, err = x.node(el, sc)
		return err
	}
}

// bindPrefixes records xmlns declarations so serializers can reuse them.
func (x *xmlReader) bindPrefixes(el xml.StartElement) {
	for _, a := range el.Attr {
		if a.Name.Space == "xmlns" && a.Value != "" {
			x.graph.Bind(a.Name.Local, a.Value)
		}
	}
}

// nodeList reads sibling node elements until the enclosing end tag.
func (x *xmlReader) nodeList(sc scope) error {
	for {
		tok, err := x.dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			x.bindPrefixes(t)
			if _, err := x.node(t, sc.with(t)); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// node reads a node element and its property elements, returning its subject.
func (x *xmlReader) node(el xml.StartElement, sc scope) (rdf.Term, error) {
	if el.Name.Space == "" {
		return rdf.Term{}, fmt.Errorf("element %q has no namespace", el.Name.Local)
	}

	subject := x.subject(el, sc)
	if !isRDF(el.Name, "Description") {
		x.graph.Add(rdf.NewTriple(subject, rdf.IRI(book.RDFType), rdf.IRI(el.Name.Space+el.Name.Local)))
	}
	x.propertyAttrs(subject, el, sc)

	if err := x.propertyList(subject, sc); err != nil {
		return rdf.Term{}, err
	}
	return subject, nil
}

func (x *xmlReader) subject(el xml.StartElement, sc scope) rdf.Term {
	if v, ok := rdfAttr(el, "about"); ok {
		return rdf.IRI(sc.resolve(v))
	}
	if v, ok := rdfAttr(el, "ID"); ok {
		return rdf.IRI(sc.fragment(v))
	}
	if v, ok := rdfAttr(el, "nodeID"); ok {
		return rdf.Blank(v)
	}
	return x.newBlank()
}

func (x *xmlReader) newBlank() rdf.Term {
	x.blanks++
	return rdf.Blank("genid" + strconv.Itoa(x.blanks))
}

// propertyAttrs turns non-syntax attributes into literal-valued triples.
func (x *xmlReader) propertyAttrs(subject rdf.Term, el xml.StartElement, sc scope) {
	for _, a := range el.Attr {
		if isSyntaxAttr(a.Name) {
			continue
		}
		predicate := a.Name.Space + a.Name.Local
		if isRDF(a.Name, "type") {
			x.graph.Add(rdf.NewTriple(subject, rdf.IRI(book.RDFType), rdf.IRI(sc.resolve(a.Value))))
			continue
		}
		x.graph.Add(rdf.NewTriple(subject, rdf.IRI(predicate), literal(a.Value, "", sc.lang)))
	}
}

// propertyList reads property elements of subject until the enclosing end tag.
func (x *xmlReader) propertyList(subject rdf.Term, sc scope) error {
	li := 0
	for {
		tok, err := x.dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			x.bindPrefixes(t)
			if err := x.property(subject, t, sc.with(t), &li); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (x *xmlReader) property(subject rdf.Term, el xml.StartElement, sc scope, li *int) error {
	if el.Name.Space == "" {
		return fmt.Errorf("property %q has no namespace", el.Name.Local)
	}
	predicate := rdf.IRI(el.Name.Space + el.Name.Local)
	if isRDF(el.Name, "li") {
		*li++
		predicate = rdf.IRI(book.RDFNamespace + "_" + strconv.Itoa(*li))
	}

	parseType, _ := rdfAttr(el, "parseType")
	switch parseType {
	case "Resource":
		object := x.newBlank()
		x.graph.Add(rdf.NewTriple(subject, predicate, object))
		return x.propertyList(object, sc)
	case "Literal":
		content, err := x.innerXML()
		if err != nil {
			return err
		}
		x.graph.Add(rdf.NewTriple(subject, predicate, rdf.TypedLiteral(content, rdfXMLLiteral)))
		return nil
	case "Collection":
		object, err := x.collection(sc)
		if err != nil {
			return err
		}
		x.graph.Add(rdf.NewTriple(subject, predicate, object))
		return nil
	}

	var object rdf.Term
	if v, ok := rdfAttr(el, "resource"); ok {
		object = rdf.IRI(sc.resolve(v))
	} else if v, ok := rdfAttr(el, "nodeID"); ok {
		object = rdf.Blank(v)
	}
	if object.IsZero() && hasPropertyAttrs(el) {
		object = x.newBlank()
	}
	if !object.IsZero() {
		x.graph.Add(rdf.NewTriple(subject, predicate, object))
		x.propertyAttrs(object, el, sc)
		return x.skip()
	}

	datatype, _ := rdfAttr(el, "datatype")
	var text strings.Builder
	for {
		tok, err := x.dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			x.bindPrefixes(t)
			node, err := x.node(t, sc.with(t))
			if err != nil {
				return err
			}
			x.graph.Add(rdf.NewTriple(subject, predicate, node))
			return x.skip()
		case xml.EndElement:
			x.graph.Add(rdf.NewTriple(subject, predicate, literal(text.String(), sc.resolveDatatype(datatype), sc.lang)))
			return nil
		}
	}
}

func (s scope) resolveDatatype(datatype string) string {
	if datatype == "" {
		return ""
	}
	return s.resolve(datatype)
}

// collection reads node elements into an rdf:first/rdf:rest list.
func (x *xmlReader) collection(sc scope) (rdf.Term, error) {
	var items []rdf.Term
	for {
		tok, err := x.dec.Token()
		if err != nil {
			return rdf.Term{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			x.bindPrefixes(t)
			item, err := x.node(t, sc.with(t))
			if err != nil {
				return rdf.Term{}, err
			}
			items = append(items, item)
		case xml.EndElement:
			head := rdf.IRI(rdfNil)
			for i := len(items) - 1; i >= 0; i-- {
				cell := x.newBlank()
				x.graph.Add(
					rdf.NewTriple(cell, rdf.IRI(rdfFirst), items[i]),
					rdf.NewTriple(cell, rdf.IRI(rdfRest), head),
				)
				head = cell
			}
			return head, nil
		}
	}
}

// innerXML re-encodes the content of the current element.
func (x *xmlReader) innerXML() (string, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 0
	for {
		tok, err := x.dec.Token()
		if err != nil {
			return "", err
		}
		if _, ok := tok.(xml.EndElement); ok && depth == 0 {
			if err := enc.Flush(); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			tok = withoutNamespaceDecls(t)
		case xml.EndElement:
			depth--
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", err
		}
	}
}

// withoutNamespaceDecls drops xmlns attributes. The encoder declares the
// namespaces it needs from the resolved element names.
func withoutNamespaceDecls(el xml.StartElement) xml.StartElement {
	attrs := make([]xml.Attr, 0, len(el.Attr))
	for _, a := range el.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		attrs = append(attrs, a)
	}
	el.Attr = attrs
	return el
}

// skip consumes tokens up to and including the current element's end tag.
func (x *xmlReader) skip() error {
	return x.dec.Skip()
}

func literal(value, datatype, lang string) rdf.Term {
	if datatype != "" {
		return rdf.TypedLiteral(value, datatype)
	}
	if lang != "" {
		return rdf.LangLiteral(value, lang)
	}
	return rdf.Literal(value)
}

func isRDF(name xml.Name, local string) bool {
	return name.Space == book.RDFNamespace && name.Local == local
}

func rdfAttr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if isRDF(a.Name, local) {
			return a.Value, true
		}
	}
	return "", false
}

// isSyntaxAttr reports attributes that never become property triples.
func isSyntaxAttr(name xml.Name) bool {
	switch name.Space {
	case "", "xmlns", xmlNamespace:
		return true
	case book.RDFNamespace:
		switch name.Local {
		case "about", "ID", "nodeID", "resource", "datatype", "parseType", "RDF", "Description", "li", "aboutEach", "bagID":
			return true
		}
	}
	return false
}

func hasPropertyAttrs(el xml.StartElement) bool {
	for _, a := range el.Attr {
		if !isSyntaxAttr(a.Name) {
			return true
		}
	}
	return false
}
