package rdf

import (
	"sort"
	"strings"
)

// Graph is an unordered set of triples plus namespace prefix bindings.
// Adding a triple that is already present is a no-op.
type Graph struct {
	triples  map[Triple]struct{}
	prefixes map[string]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		triples:  make(map[Triple]struct{}),
		prefixes: make(map[string]string),
	}
}

// Bind associates a prefix with a namespace IRI, replacing any previous binding.
func (g *Graph) Bind(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the prefix bindings.
func (g *Graph) Prefixes() map[string]string {
	out := make(map[string]string, len(g.prefixes))
	for k, v := range g.prefixes {
		out[k] = v
	}
	return out
}

// Add inserts triples into the set.
func (g *Graph) Add(triples ...Triple) {
	for _, t := range triples {
		g.triples[t] = struct{}{}
	}
}

// Has reports whether the triple is in the set.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.triples[t]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Merge adds every triple and prefix of other into g. Existing prefixes win.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for t := range other.triples {
		g.triples[t] = struct{}{}
	}
	for k, v := range other.prefixes {
		if _, ok := g.prefixes[k]; !ok {
			g.prefixes[k] = v
		}
	}
}

// RemoveFunc deletes every triple for which match returns true and reports
// how many were removed.
func (g *Graph) RemoveFunc(match func(Triple) bool) int {
	removed := 0
	for t := range g.triples {
		if match(t) {
			delete(g.triples, t)
			removed++
		}
	}
	return removed
}

// Match returns the triples matching the pattern, sorted. Zero terms in the
// pattern act as wildcards.
func (g *Graph) Match(subject, predicate, object Term) []Triple {
	var out []Triple
	for t := range g.triples {
		if !subject.IsZero() && t.Subject != subject {
			continue
		}
		if !predicate.IsZero() && t.Predicate != predicate {
			continue
		}
		if !object.IsZero() && t.Object != object {
			continue
		}
		out = append(out, t)
	}
	SortTriples(out)
	return out
}

// Triples returns every triple in deterministic order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, 0, len(g.triples))
	for t := range g.triples {
		out = append(out, t)
	}
	SortTriples(out)
	return out
}

// SortTriples orders triples by subject, predicate, then object. rdf:type
// sorts before every other predicate so type assertions lead each subject.
func SortTriples(triples []Triple) {
	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if c := compareTerm(a.Subject, b.Subject); c != 0 {
			return c < 0
		}
		if c := comparePredicate(a.Predicate, b.Predicate); c != 0 {
			return c < 0
		}
		return compareTerm(a.Object, b.Object) < 0
	})
}

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

func comparePredicate(a, b Term) int {
	aType, bType := a.Value == rdfType, b.Value == rdfType
	switch {
	case aType && !bType:
		return -1
	case bType && !aType:
		return 1
	}
	return compareTerm(a, b)
}

func compareTerm(a, b Term) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Datatype, b.Datatype); c != 0 {
		return c
	}
	return strings.Compare(a.Lang, b.Lang)
}
