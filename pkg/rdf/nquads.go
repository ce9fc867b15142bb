package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// NQuadsParser parses N-Quads, which extends N-Triples with an optional 4th
// position for the graph.
//
//	<subject> <predicate> <object> [<graph>] .
//
// Statements without a graph are placed in the default graph, so N-Triples
// input parses unchanged. When triplesOnly is set a 4th position is an error.
type NQuadsParser struct {
	input       string
	pos         int
	length      int
	triplesOnly bool
	base        string
}

// NewNQuadsParser creates a parser for N-Quads input
func NewNQuadsParser(input string) *NQuadsParser {
	return &NQuadsParser{input: input, length: len(input)}
}

// NewNTriplesParser creates a parser that rejects graph terms
func NewNTriplesParser(input string) *NQuadsParser {
	return &NQuadsParser{input: input, length: len(input), triplesOnly: true}
}

// WithBase makes relative IRIs resolve against base (see ResolveIRI)
// instead of failing
func (p *NQuadsParser) WithBase(base string) *NQuadsParser {
	p.base = base
	return p
}

// Parse parses the whole document
func (p *NQuadsParser) Parse() ([]*Quad, error) {
	var quads []*Quad

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		quad, err := p.parseQuad()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line(), err)
		}
		quads = append(quads, quad)
	}

	return quads, nil
}

func (p *NQuadsParser) line() int {
	return strings.Count(p.input[:p.pos], "\n") + 1
}

// skipWhitespaceAndComments skips whitespace and comments
func (p *NQuadsParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' && p.input[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		break
	}
}

// skipInlineWhitespace skips spaces and tabs only
func (p *NQuadsParser) skipInlineWhitespace() {
	for p.pos < p.length && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// parseQuad parses: subject predicate object [graph] .
func (p *NQuadsParser) parseQuad() (*Quad, error) {
	subject, err := p.parseSubject()
	if err != nil {
		return nil, fmt.Errorf("error parsing subject: %w", err)
	}
	p.skipInlineWhitespace()

	iri, err := p.parseIRI()
	if err != nil {
		return nil, fmt.Errorf("error parsing predicate: %w", err)
	}
	predicate := NewNamedNode(iri)
	p.skipInlineWhitespace()

	object, err := p.parseObject()
	if err != nil {
		return nil, fmt.Errorf("error parsing object: %w", err)
	}
	p.skipInlineWhitespace()

	var graph Term = NewDefaultGraph()
	if p.pos < p.length && (p.input[p.pos] == '<' || p.input[p.pos] == '_') {
		if p.triplesOnly {
			return nil, fmt.Errorf("graph term not allowed in N-Triples")
		}
		graph, err = p.parseSubject()
		if err != nil {
			return nil, fmt.Errorf("error parsing graph: %w", err)
		}
		p.skipInlineWhitespace()
	}

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, fmt.Errorf("expected '.' at end of statement")
	}
	p.pos++

	// Only a comment may follow on the same line
	p.skipInlineWhitespace()
	if p.pos < p.length {
		ch := p.input[p.pos]
		if ch != '\n' && ch != '\r' && ch != '#' {
			return nil, fmt.Errorf("unexpected content after '.': %q", ch)
		}
	}

	return NewQuad(subject, predicate, object, graph), nil
}

func (p *NQuadsParser) parseSubject() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch p.input[p.pos] {
	case '<':
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case '_':
		return p.parseBlankNode()
	default:
		return nil, fmt.Errorf("unexpected character at position %d: %q", p.pos, p.input[p.pos])
	}
}

func (p *NQuadsParser) parseObject() (Term, error) {
	if p.pos < p.length && p.input[p.pos] == '"' {
		return p.parseLiteral()
	}
	return p.parseSubject()
}

// parseIRI parses an absolute IRI enclosed in < >
func (p *NQuadsParser) parseIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", fmt.Errorf("expected '<' at start of IRI")
	}
	p.pos++

	var result strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]

		if ch == '\\' {
			r, err := p.parseUnicodeEscape()
			if err != nil {
				return "", err
			}
			result.WriteRune(r)
			continue
		}

		// IRIs cannot contain: space, <, ", {, }, |, ^, ` or control characters
		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", fmt.Errorf("invalid character in IRI: %q at position %d", ch, p.pos)
		}

		result.WriteByte(ch)
		p.pos++
	}

	if p.pos >= p.length {
		return "", fmt.Errorf("unclosed IRI")
	}
	p.pos++

	iri := result.String()
	if !hasScheme(iri) {
		if p.base == "" {
			return "", fmt.Errorf("relative IRI not allowed: %s", iri)
		}
		iri = ResolveIRI(p.base, iri)
	}
	return iri, nil
}

// parseBlankNode parses _:label
func (p *NQuadsParser) parseBlankNode() (Term, error) {
	if p.pos+1 >= p.length || p.input[p.pos] != '_' || p.input[p.pos+1] != ':' {
		return nil, fmt.Errorf("expected '_:' at start of blank node")
	}
	p.pos += 2

	start := p.pos
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '<' || ch == '"' {
			break
		}
		p.pos++
	}
	// A trailing '.' terminates the statement, not the label
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}

	if p.pos == start {
		return nil, fmt.Errorf("empty blank node label")
	}
	return NewBlankNode(p.input[start:p.pos]), nil
}

// parseLiteral parses "value" with an optional @lang or ^^<datatype>
func (p *NQuadsParser) parseLiteral() (Term, error) {
	p.pos++ // opening '"'

	var value strings.Builder
	for p.pos < p.length && p.input[p.pos] != '"' {
		ch := p.input[p.pos]
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}

		if p.pos+1 >= p.length {
			return nil, fmt.Errorf("unexpected end of input in escape sequence")
		}
		switch esc := p.input[p.pos+1]; esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case 'b':
			value.WriteByte('\b')
		case 'f':
			value.WriteByte('\f')
		case '"':
			value.WriteByte('"')
		case '\'':
			value.WriteByte('\'')
		case '\\':
			value.WriteByte('\\')
		case 'u', 'U':
			r, err := p.parseUnicodeEscape()
			if err != nil {
				return nil, err
			}
			value.WriteRune(r)
			continue
		default:
			return nil, fmt.Errorf("invalid escape sequence \\%c at position %d", esc, p.pos)
		}
		p.pos += 2
	}

	if p.pos >= p.length {
		return nil, fmt.Errorf("unclosed string literal")
	}
	p.pos++ // closing '"'

	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < p.length && isLangChar(p.input[p.pos]) {
			p.pos++
		}
		lang := p.input[start:p.pos]
		if lang == "" || !isLetter(lang[0]) {
			return nil, fmt.Errorf("invalid language tag at position %d", start)
		}
		return NewLiteralWithLanguage(value.String(), lang), nil
	}

	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		datatype, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("error parsing datatype: %w", err)
		}
		return NewLiteralWithDatatype(value.String(), NewNamedNode(datatype)), nil
	}

	return NewLiteral(value.String()), nil
}

// parseUnicodeEscape parses \uXXXX or \UXXXXXXXX at the current position
func (p *NQuadsParser) parseUnicodeEscape() (rune, error) {
	if p.pos+1 >= p.length || p.input[p.pos] != '\\' {
		return 0, fmt.Errorf("expected escape sequence at position %d", p.pos)
	}

	var digits int
	switch p.input[p.pos+1] {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return 0, fmt.Errorf("invalid escape sequence in IRI at position %d", p.pos)
	}

	start := p.pos + 2
	if start+digits > p.length {
		return 0, fmt.Errorf("incomplete Unicode escape sequence")
	}
	hexStr := p.input[start : start+digits]
	codePoint, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex digits in Unicode escape: %s", hexStr)
	}

	p.pos = start + digits
	return rune(codePoint), nil
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isLangChar(ch byte) bool {
	return isLetter(ch) || (ch >= '0' && ch <= '9') || ch == '-'
}
