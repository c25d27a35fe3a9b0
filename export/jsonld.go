package export

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/bookgraph/rdf"
	"github.com/c360studio/bookgraph/vocabulary/book"
)

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph. Properties are keyed by
// full predicate IRI.
type JSONLDNode struct {
	ID         string                    `json:"@id"`
	Type       []string                  `json:"@type,omitempty"`
	Properties map[string][]JSONLDObject `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements custom JSON unmarshaling for JSONLDNode.
func (n *JSONLDNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = JSONLDNode{Properties: make(map[string][]JSONLDObject)}
	for k, v := range raw {
		var err error
		switch k {
		case "@id":
			err = json.Unmarshal(v, &n.ID)
		case "@type":
			err = json.Unmarshal(v, &n.Type)
		default:
			var objs []JSONLDObject
			err = json.Unmarshal(v, &objs)
			n.Properties[k] = objs
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", k, err)
		}
	}
	return nil
}

// JSONLDObject is an expanded JSON-LD value: a node reference or a literal.
type JSONLDObject struct {
	ID       string `json:"@id,omitempty"`
	Value    string `json:"@value,omitempty"`
	Type     string `json:"@type,omitempty"`
	Language string `json:"@language,omitempty"`
}

// MarshalJSON writes a node reference as {"@id"} and a literal as {"@value"}
// even when the lexical form is empty.
func (o JSONLDObject) MarshalJSON() ([]byte, error) {
	if o.ID != "" {
		return json.Marshal(map[string]string{"@id": o.ID})
	}
	m := map[string]string{"@value": o.Value}
	if o.Type != "" {
		m["@type"] = o.Type
	}
	if o.Language != "" {
		m["@language"] = o.Language
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	doc JSONLDDocument
}

// NewJSONLDWriter creates a new JSON-LD writer.
func NewJSONLDWriter() *JSONLDWriter {
	return &JSONLDWriter{
		doc: JSONLDDocument{
			Context: make(map[string]any),
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// SetContext sets the @context with prefixes.
func (w *JSONLDWriter) SetContext(prefixes map[string]string) {
	for k, v := range prefixes {
		w.doc.Context[k] = v
	}
}

// AddNode adds a node to the graph.
func (w *JSONLDWriter) AddNode(node JSONLDNode) {
	w.doc.Graph = append(w.doc.Graph, node)
}

// Bytes returns the indented JSON-LD output.
func (w *JSONLDWriter) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json-ld: %w", err)
	}
	return append(data, '\n'), nil
}

// JSONLD serializes a graph as expanded JSON-LD with one node per subject.
// rdf:type IRI objects become @type entries.
func JSONLD(g *rdf.Graph) ([]byte, error) {
	w := NewJSONLDWriter()
	w.SetContext(g.Prefixes())

	triples := g.Triples()
	for i := 0; i < len(triples); {
		subject := triples[i].Subject
		node := JSONLDNode{
			ID:         nodeID(subject),
			Properties: make(map[string][]JSONLDObject),
		}
		for ; i < len(triples) && triples[i].Subject == subject; i++ {
			t := triples[i]
			if t.Predicate.Value == book.RDFType && t.Object.IsIRI() {
				node.Type = append(node.Type, t.Object.Value)
				continue
			}
			node.Properties[t.Predicate.Value] = append(node.Properties[t.Predicate.Value], jsonldObject(t.Object))
		}
		w.AddNode(node)
	}
	return w.Bytes()
}

func nodeID(t rdf.Term) string {
	if t.IsBlank() {
		return "_:" + t.Value
	}
	return t.Value
}

func jsonldObject(t rdf.Term) JSONLDObject {
	switch t.Kind {
	case rdf.KindIRI, rdf.KindBlank:
		return JSONLDObject{ID: nodeID(t)}
	default:
		return JSONLDObject{Value: t.Value, Type: t.Datatype, Language: t.Lang}
	}
}
