package ontology

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/c360studio/bookgraph/rdf"
)

// maxNTriplesLine bounds a single statement.
const maxNTriplesLine = 1024 * 1024

// NTriplesParser parses line-based N-Triples documents.
type NTriplesParser struct{}

// NewNTriplesParser creates an N-Triples parser.
func NewNTriplesParser() *NTriplesParser {
	return &NTriplesParser{}
}

// Format returns FormatNTriples.
func (p *NTriplesParser) Format() Format {
	return FormatNTriples
}

// Extensions returns the file extensions handled by this parser.
func (p *NTriplesParser) Extensions() []string {
	return []string{".nt"}
}

// CanParse returns true for the N-Triples media type.
func (p *NTriplesParser) CanParse(mimeType string) bool {
	return mimeType == "application/n-triples"
}

// Parse reads one statement per line. Blank lines and '#' comments are
// ignored. base is unused: N-Triples IRIs are absolute.
func (p *NTriplesParser) Parse(r io.Reader, _ string) (*rdf.Graph, error) {
	g := rdf.NewGraph()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxNTriplesLine)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := parseStatement(text)
		if err != nil {
			return nil, fmt.Errorf("n-triples line %d: %w", line, err)
		}
		g.Add(t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("n-triples line %d: %w", line+1, err)
	}
	return g, nil
}

// statementLexer walks a single N-Triples statement.
type statementLexer struct {
	s   string
	pos int
}

func parseStatement(s string) (rdf.Triple, error) {
	lx := &statementLexer{s: s}

	subject, err := lx.term()
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("subject: %w", err)
	}
	if subject.IsLiteral() {
		return rdf.Triple{}, fmt.Errorf("subject: literal not allowed")
	}
	predicate, err := lx.term()
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("predicate: %w", err)
	}
	if !predicate.IsIRI() {
		return rdf.Triple{}, fmt.Errorf("predicate: must be an IRI")
	}
	object, err := lx.term()
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("object: %w", err)
	}

	lx.space()
	if !lx.consume('.') {
		return rdf.Triple{}, fmt.Errorf("expected '.' at column %d", lx.pos+1)
	}
	lx.space()
	if lx.pos < len(lx.s) && lx.s[lx.pos] != '#' {
		return rdf.Triple{}, fmt.Errorf("unexpected %q after statement", lx.s[lx.pos:])
	}
	return rdf.NewTriple(subject, predicate, object), nil
}

func (lx *statementLexer) space() {
	for lx.pos < len(lx.s) && (lx.s[lx.pos] == ' ' || lx.s[lx.pos] == '\t') {
		lx.pos++
	}
}

func (lx *statementLexer) consume(c byte) bool {
	if lx.pos < len(lx.s) && lx.s[lx.pos] == c {
		lx.pos++
		return true
	}
	return false
}

func (lx *statementLexer) term() (rdf.Term, error) {
	lx.space()
	if lx.pos >= len(lx.s) {
		return rdf.Term{}, fmt.Errorf("unexpected end of statement")
	}
	switch lx.s[lx.pos] {
	case '<':
		iri, err := lx.iri()
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.IRI(iri), nil
	case '_':
		return lx.blank()
	case '"':
		return lx.literal()
	}
	return rdf.Term{}, fmt.Errorf("unexpected %q at column %d", lx.s[lx.pos], lx.pos+1)
}

func (lx *statementLexer) iri() (string, error) {
	lx.pos++ // '<'
	end := strings.IndexByte(lx.s[lx.pos:], '>')
	if end < 0 {
		return "", fmt.Errorf("unterminated IRI")
	}
	raw := lx.s[lx.pos : lx.pos+end]
	lx.pos += end + 1
	return unescape(raw)
}

func (lx *statementLexer) blank() (rdf.Term, error) {
	if !strings.HasPrefix(lx.s[lx.pos:], "_:") {
		return rdf.Term{}, fmt.Errorf("malformed blank node at column %d", lx.pos+1)
	}
	lx.pos += 2
	start := lx.pos
	for lx.pos < len(lx.s) && !strings.ContainsRune(" \t", rune(lx.s[lx.pos])) {
		lx.pos++
	}
	label := strings.TrimSuffix(lx.s[start:lx.pos], ".")
	lx.pos = start + len(label)
	if label == "" {
		return rdf.Term{}, fmt.Errorf("empty blank node label")
	}
	return rdf.Blank(label), nil
}

func (lx *statementLexer) literal() (rdf.Term, error) {
	lx.pos++ // opening quote
	start := lx.pos
	for lx.pos < len(lx.s) {
		switch lx.s[lx.pos] {
		case '\\':
			lx.pos += 2
			continue
		case '"':
			value, err := unescape(lx.s[start:lx.pos])
			if err != nil {
				return rdf.Term{}, err
			}
			lx.pos++
			return lx.literalSuffix(value)
		}
		lx.pos++
	}
	return rdf.Term{}, fmt.Errorf("unterminated literal")
}

func (lx *statementLexer) literalSuffix(value string) (rdf.Term, error) {
	if lx.consume('@') {
		start := lx.pos
		for lx.pos < len(lx.s) && (isAlnum(lx.s[lx.pos]) || lx.s[lx.pos] == '-') {
			lx.pos++
		}
		if lx.pos == start {
			return rdf.Term{}, fmt.Errorf("empty language tag")
		}
		return rdf.LangLiteral(value, lx.s[start:lx.pos]), nil
	}
	if strings.HasPrefix(lx.s[lx.pos:], "^^") {
		lx.pos += 2
		if lx.pos >= len(lx.s) || lx.s[lx.pos] != '<' {
			return rdf.Term{}, fmt.Errorf("datatype must be an IRI")
		}
		dt, err := lx.iri()
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.TypedLiteral(value, dt), nil
	}
	return rdf.Literal(value), nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// unescape decodes ECHAR and UCHAR escapes.
func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i] {
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 'f':
			sb.WriteByte('\f')
		case '"', '\'', '\\':
			sb.WriteByte(s[i])
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+1+width > len(s) {
				return "", fmt.Errorf("short unicode escape")
			}
			code, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad unicode escape: %w", err)
			}
			r := rune(code)
			if !utf8.ValidRune(r) {
				return "", fmt.Errorf("invalid code point U+%X", code)
			}
			sb.WriteRune(r)
			i += width
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return sb.String(), nil
}
