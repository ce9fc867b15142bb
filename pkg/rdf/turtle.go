package rdf

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	rdfNS    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xsdNS    = "http://www.w3.org/2001/XMLSchema#"
	rdfFirst = rdfNS + "first"
	rdfRest  = rdfNS + "rest"
	rdfNil   = rdfNS + "nil"
)

// TurtleParser parses Turtle. In TriG mode it also accepts graph blocks
// ({ ... }, <g> { ... } and GRAPH <g> { ... }). Statements outside a named
// graph block land in the default graph.
//
// The parser covers Turtle 1.1: directives in both the @prefix and the
// SPARQL style, predicate and object lists, blank node property lists,
// collections, numeric and boolean shorthands and long strings. RDF-star
// syntax is rejected.
type TurtleParser struct {
	input    string
	pos      int
	length   int
	prefixes map[string]string
	base     string
	trig     bool
	graph    Term
	bnodes   int
	quads    []*Quad
}

// NewTurtleParser creates a parser for a Turtle document
func NewTurtleParser(input string) *TurtleParser {
	return &TurtleParser{input: input, length: len(input), prefixes: make(map[string]string)}
}

// NewTriGParser creates a parser for a TriG document
func NewTriGParser(input string) *TurtleParser {
	p := NewTurtleParser(input)
	p.trig = true
	return p
}

// WithBase sets the document base used until an @base/BASE directive
// replaces it
func (p *TurtleParser) WithBase(base string) *TurtleParser {
	p.base = base
	return p
}

// Prefixes returns the prefix declarations seen so far. A label declared
// twice keeps its last namespace.
func (p *TurtleParser) Prefixes() map[string]string {
	return maps.Clone(p.prefixes)
}

// Parse parses the whole document
func (p *TurtleParser) Parse() ([]*Quad, error) {
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}
		if err := p.parseStatement(); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line(), err)
		}
	}
	return p.quads, nil
}

func (p *TurtleParser) line() int {
	return strings.Count(p.input[:p.pos], "\n") + 1
}

func (p *TurtleParser) parseStatement() error {
	if ok, err := p.parseDirective(); ok || err != nil {
		return err
	}
	if p.trig {
		if ok, err := p.parseGraphBlock(); ok || err != nil {
			return err
		}
	}
	if err := p.parseTriples(); err != nil {
		return err
	}
	p.skipWhitespaceAndComments()
	if !p.consume('.') {
		return fmt.Errorf("expected '.' at end of statement")
	}
	return nil
}

// parseDirective handles @prefix, @base and their SPARQL-style forms. The
// @ forms are case-sensitive and end with '.', the SPARQL forms are not and
// do not.
func (p *TurtleParser) parseDirective() (bool, error) {
	var prefix, turtleStyle bool
	switch {
	case p.matchKeyword("@prefix", true):
		prefix, turtleStyle = true, true
	case p.matchKeyword("@base", true):
		turtleStyle = true
	case p.matchKeyword("PREFIX", false):
		prefix = true
	case p.matchKeyword("BASE", false):
	default:
		return false, nil
	}

	p.skipWhitespaceAndComments()
	if prefix {
		start := p.pos
		for p.pos < p.length && p.input[p.pos] != ':' && !isSpace(p.input[p.pos]) {
			p.pos++
		}
		label := p.input[start:p.pos]
		if !p.consume(':') {
			return true, fmt.Errorf("expected ':' after prefix label %q", label)
		}
		p.skipWhitespaceAndComments()
		iri, err := p.parseIRI()
		if err != nil {
			return true, fmt.Errorf("prefix %q: %w", label, err)
		}
		p.prefixes[label] = iri
	} else {
		iri, err := p.parseIRI()
		if err != nil {
			return true, fmt.Errorf("base: %w", err)
		}
		p.base = iri
	}

	if turtleStyle {
		p.skipWhitespaceAndComments()
		if !p.consume('.') {
			return true, fmt.Errorf("expected '.' after directive")
		}
	}
	return true, nil
}

// parseGraphBlock parses a TriG graph block. It reports false, with the
// position restored, when the input at pos is an ordinary statement.
func (p *TurtleParser) parseGraphBlock() (bool, error) {
	start := p.pos
	var graph Term

	switch {
	case p.matchKeyword("GRAPH", false):
		p.skipWhitespaceAndComments()
		g, err := p.parseGraphName()
		if err != nil {
			return true, fmt.Errorf("graph name: %w", err)
		}
		graph = g
	case p.peek('{'):
	default:
		g, err := p.parseGraphName()
		if err != nil {
			p.pos = start
			return false, nil
		}
		p.skipWhitespaceAndComments()
		if !p.peek('{') {
			p.pos = start
			return false, nil
		}
		graph = g
	}

	p.skipWhitespaceAndComments()
	if !p.consume('{') {
		return true, fmt.Errorf("expected '{' to open graph block")
	}
	p.graph = graph
	defer func() { p.graph = nil }()

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			return true, fmt.Errorf("unexpected end of input, expected '}'")
		}
		if p.consume('}') {
			return true, nil
		}
		if err := p.parseTriples(); err != nil {
			return true, err
		}
		p.skipWhitespaceAndComments()
		// The last statement of a block may omit its '.'
		if !p.consume('.') && !p.peek('}') {
			return true, fmt.Errorf("expected '.' or '}' after statement")
		}
	}
}

func (p *TurtleParser) parseGraphName() (Term, error) {
	switch {
	case p.peek('<'):
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case strings.HasPrefix(p.input[p.pos:], "_:"):
		return p.parseBlankNodeLabel()
	case p.peek('['):
		p.pos++
		p.skipWhitespaceAndComments()
		if !p.consume(']') {
			return nil, fmt.Errorf("graph name cannot be a blank node property list")
		}
		return p.newBlankNode(), nil
	default:
		return p.parsePrefixedName()
	}
}

// parseTriples parses a subject with its predicate-object list. A blank
// node property list may stand alone.
func (p *TurtleParser) parseTriples() error {
	var subject Term
	var err error
	standalone := false

	switch {
	case p.peek('['):
		subject, standalone, err = p.parseBlankNodePropertyList()
	case p.peek('('):
		subject, err = p.parseCollection()
	case p.peek('<'):
		if strings.HasPrefix(p.input[p.pos:], "<<") {
			return fmt.Errorf("quoted triples are not supported")
		}
		var iri string
		iri, err = p.parseIRI()
		subject = NewNamedNode(iri)
	case strings.HasPrefix(p.input[p.pos:], "_:"):
		subject, err = p.parseBlankNodeLabel()
	default:
		subject, err = p.parsePrefixedName()
	}
	if err != nil {
		return fmt.Errorf("subject: %w", err)
	}

	p.skipWhitespaceAndComments()
	if standalone && (p.peek('.') || p.peek('}')) {
		return nil
	}
	return p.parsePredicateObjectList(subject)
}

func (p *TurtleParser) parsePredicateObjectList(subject Term) error {
	for {
		p.skipWhitespaceAndComments()
		predicate, err := p.parseVerb()
		if err != nil {
			return fmt.Errorf("predicate: %w", err)
		}

		for {
			p.skipWhitespaceAndComments()
			object, err := p.parseObject()
			if err != nil {
				return fmt.Errorf("object: %w", err)
			}
			p.emit(subject, predicate, object)
			p.skipWhitespaceAndComments()
			if !p.consume(',') {
				break
			}
		}

		if !p.consume(';') {
			return nil
		}
		// Repeated and trailing semicolons are allowed
		for {
			p.skipWhitespaceAndComments()
			if !p.consume(';') {
				break
			}
		}
		if p.pos >= p.length || strings.IndexByte(".]}", p.input[p.pos]) >= 0 {
			return nil
		}
	}
}

func (p *TurtleParser) emit(subject, predicate, object Term) {
	graph := p.graph
	if graph == nil {
		graph = NewDefaultGraph()
	}
	p.quads = append(p.quads, NewQuad(subject, predicate, object, graph))
}

func (p *TurtleParser) parseVerb() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if p.input[p.pos] == 'a' && p.pos+1 < p.length {
		r, _ := utf8.DecodeRuneInString(p.input[p.pos+1:])
		if !isPNChars(r) && r != ':' && r != '.' {
			p.pos++
			return NewNamedNode(rdfType), nil
		}
	}
	if p.peek('<') {
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	}
	return p.parsePrefixedName()
}

func (p *TurtleParser) parseObject() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch ch := p.input[p.pos]; {
	case ch == '<':
		if strings.HasPrefix(p.input[p.pos:], "<<") {
			return nil, fmt.Errorf("quoted triples are not supported")
		}
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case ch == '_' && strings.HasPrefix(p.input[p.pos:], "_:"):
		return p.parseBlankNodeLabel()
	case ch == '[':
		node, _, err := p.parseBlankNodePropertyList()
		return node, err
	case ch == '(':
		return p.parseCollection()
	case ch == '"' || ch == '\'':
		return p.parseLiteral()
	case isDigit(ch) || ch == '+' || ch == '-' || (ch == '.' && p.pos+1 < p.length && isDigit(p.input[p.pos+1])):
		return p.parseNumber()
	case p.matchKeyword("true", true):
		return NewLiteralWithDatatype("true", NewNamedNode(xsdNS+"boolean")), nil
	case p.matchKeyword("false", true):
		return NewLiteralWithDatatype("false", NewNamedNode(xsdNS+"boolean")), nil
	default:
		return p.parsePrefixedName()
	}
}

func (p *TurtleParser) newBlankNode() *BlankNode {
	p.bnodes++
	return NewBlankNode(fmt.Sprintf("genid%d", p.bnodes))
}

// parseBlankNodePropertyList parses [] or [ predicate-object list ]. The
// flag reports whether the list had properties.
func (p *TurtleParser) parseBlankNodePropertyList() (Term, bool, error) {
	p.pos++ // '['
	node := p.newBlankNode()
	p.skipWhitespaceAndComments()
	if p.consume(']') {
		return node, false, nil
	}
	if err := p.parsePredicateObjectList(node); err != nil {
		return nil, false, err
	}
	p.skipWhitespaceAndComments()
	if !p.consume(']') {
		return nil, false, fmt.Errorf("expected ']' at end of blank node property list")
	}
	return node, true, nil
}

// parseCollection parses ( item ... ) into an rdf:first/rdf:rest chain
func (p *TurtleParser) parseCollection() (Term, error) {
	p.pos++ // '('
	var items []Term
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			return nil, fmt.Errorf("unexpected end of input in collection")
		}
		if p.consume(')') {
			break
		}
		item, err := p.parseObject()
		if err != nil {
			return nil, fmt.Errorf("collection item: %w", err)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return NewNamedNode(rdfNil), nil
	}
	head := p.newBlankNode()
	node := head
	for i, item := range items {
		p.emit(node, NewNamedNode(rdfFirst), item)
		if i == len(items)-1 {
			p.emit(node, NewNamedNode(rdfRest), NewNamedNode(rdfNil))
			break
		}
		next := p.newBlankNode()
		p.emit(node, NewNamedNode(rdfRest), next)
		node = next
	}
	return head, nil
}

// parseBlankNodeLabel parses _:label. Labels may contain '.' but not end
// with one.
func (p *TurtleParser) parseBlankNodeLabel() (Term, error) {
	p.pos += 2 // '_:'
	start := p.pos
	r, size := p.peekRune()
	if !isPNCharsU(r) && !(r >= '0' && r <= '9') {
		return nil, fmt.Errorf("invalid blank node label at position %d", p.pos)
	}
	p.pos += size
	for p.pos < p.length {
		r, size := p.peekRune()
		if !isPNChars(r) && r != '.' {
			break
		}
		p.pos += size
	}
	for p.input[p.pos-1] == '.' {
		p.pos--
	}
	return NewBlankNode(p.input[start:p.pos]), nil
}

// parseIRI parses <...>, decoding \u escapes and resolving relative
// references against the current base
func (p *TurtleParser) parseIRI() (string, error) {
	if !p.consume('<') {
		return "", fmt.Errorf("expected '<' at start of IRI")
	}

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
		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", fmt.Errorf("invalid character in IRI: %q at position %d", ch, p.pos)
		}
		result.WriteByte(ch)
		p.pos++
	}
	if !p.consume('>') {
		return "", fmt.Errorf("unclosed IRI")
	}

	iri := result.String()
	if hasScheme(iri) {
		return iri, nil
	}
	if p.base == "" {
		return "", fmt.Errorf("relative IRI without a base: %s", iri)
	}
	return ResolveIRI(p.base, iri), nil
}

// parsePrefixedName parses prefix:local and expands it against the
// declared prefixes
func (p *TurtleParser) parsePrefixedName() (Term, error) {
	start := p.pos
	if !p.peek(':') {
		r, size := p.peekRune()
		if !isPNCharsBase(r) {
			return nil, fmt.Errorf("unexpected character %q at position %d", r, p.pos)
		}
		p.pos += size
		for p.pos < p.length && p.input[p.pos] != ':' {
			r, size := p.peekRune()
			if !isPNChars(r) && r != '.' {
				break
			}
			p.pos += size
		}
	}
	label := p.input[start:p.pos]
	if strings.HasSuffix(label, ".") || !p.consume(':') {
		return nil, fmt.Errorf("expected ':' in prefixed name %q", label)
	}

	var local strings.Builder
	first := true
	escapedEnd := p.pos
scan:
	for p.pos < p.length {
		r, size := p.peekRune()
		switch {
		case r == '%':
			if p.pos+2 >= p.length || !isHexDigit(p.input[p.pos+1]) || !isHexDigit(p.input[p.pos+2]) {
				return nil, fmt.Errorf("invalid percent encoding at position %d", p.pos)
			}
			local.WriteString(p.input[p.pos : p.pos+3])
			p.pos += 3
		case r == '\\':
			if p.pos+1 >= p.length || !strings.ContainsRune(localEscapes, rune(p.input[p.pos+1])) {
				return nil, fmt.Errorf("invalid escape in prefixed name at position %d", p.pos)
			}
			local.WriteByte(p.input[p.pos+1])
			p.pos += 2
			escapedEnd = p.pos
		case first && (isPNCharsU(r) || r == ':' || (r >= '0' && r <= '9')),
			!first && (isPNChars(r) || r == ':' || r == '.'):
			local.WriteRune(r)
			p.pos += size
		default:
			break scan
		}
		first = false
	}
	// A trailing '.' ends the statement
	name := local.String()
	for strings.HasSuffix(name, ".") && p.pos > escapedEnd {
		name = name[:len(name)-1]
		p.pos--
	}

	ns, ok := p.prefixes[label]
	if !ok {
		return nil, fmt.Errorf("undefined prefix %q", label)
	}
	return NewNamedNode(ns + name), nil
}

const localEscapes = "_~.-!$&'()*+,;=/?#@%"

// parseLiteral parses a quoted string with an optional language tag or
// datatype
func (p *TurtleParser) parseLiteral() (Term, error) {
	quote := p.input[p.pos : p.pos+1]
	long := strings.HasPrefix(p.input[p.pos:], strings.Repeat(quote, 3))
	closer := quote
	if long {
		closer = strings.Repeat(quote, 3)
	}
	p.pos += len(closer)

	var value strings.Builder
	for {
		if p.pos >= p.length {
			return nil, fmt.Errorf("unclosed string literal")
		}
		if strings.HasPrefix(p.input[p.pos:], closer) {
			p.pos += len(closer)
			break
		}
		ch := p.input[p.pos]
		if !long && (ch == '\n' || ch == '\r') {
			return nil, fmt.Errorf("line break in short string literal")
		}
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}
		if p.pos+1 >= p.length {
			return nil, fmt.Errorf("unexpected end of input in escape sequence")
		}
		switch esc := p.input[p.pos+1]; esc {
		case 'u', 'U':
			r, err := p.parseUnicodeEscape()
			if err != nil {
				return nil, err
			}
			value.WriteRune(r)
			continue
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
		case '"', '\'', '\\':
			value.WriteByte(esc)
		default:
			return nil, fmt.Errorf("invalid escape sequence \\%c at position %d", esc, p.pos)
		}
		p.pos += 2
	}

	if p.consume('@') {
		start := p.pos
		for p.pos < p.length && (isLetter(p.input[p.pos]) || isDigit(p.input[p.pos]) || p.input[p.pos] == '-') {
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
		var datatype string
		if p.peek('<') {
			iri, err := p.parseIRI()
			if err != nil {
				return nil, fmt.Errorf("datatype: %w", err)
			}
			datatype = iri
		} else {
			dt, err := p.parsePrefixedName()
			if err != nil {
				return nil, fmt.Errorf("datatype: %w", err)
			}
			datatype = dt.(*NamedNode).IRI
		}
		return NewLiteralWithDatatype(value.String(), NewNamedNode(datatype)), nil
	}
	return NewLiteral(value.String()), nil
}

// parseNumber parses the integer, decimal and double shorthands, keeping
// the lexical form
func (p *TurtleParser) parseNumber() (Term, error) {
	start := p.pos
	if p.peek('+') || p.peek('-') {
		p.pos++
	}
	digits := p.skipDigits()

	datatype := "integer"
	if p.peek('.') && p.pos+1 < p.length && (isDigit(p.input[p.pos+1]) || (digits > 0 && strings.IndexByte("eE", p.input[p.pos+1]) >= 0)) {
		p.pos++
		digits += p.skipDigits()
		datatype = "decimal"
	}
	if digits == 0 {
		return nil, fmt.Errorf("expected digits at position %d", start)
	}
	if p.peek('e') || p.peek('E') {
		p.pos++
		if p.peek('+') || p.peek('-') {
			p.pos++
		}
		if p.skipDigits() == 0 {
			return nil, fmt.Errorf("expected exponent digits at position %d", p.pos)
		}
		datatype = "double"
	}

	return NewLiteralWithDatatype(p.input[start:p.pos], NewNamedNode(xsdNS+datatype)), nil
}

func (p *TurtleParser) skipDigits() int {
	start := p.pos
	for p.pos < p.length && isDigit(p.input[p.pos]) {
		p.pos++
	}
	return p.pos - start
}

// parseUnicodeEscape parses \uXXXX or \UXXXXXXXX at the current position
func (p *TurtleParser) parseUnicodeEscape() (rune, error) {
	if p.pos+1 >= p.length {
		return 0, fmt.Errorf("incomplete escape sequence")
	}
	digits := 4
	switch p.input[p.pos+1] {
	case 'u':
	case 'U':
		digits = 8
	default:
		return 0, fmt.Errorf("invalid escape sequence at position %d", p.pos)
	}
	start := p.pos + 2
	if start+digits > p.length {
		return 0, fmt.Errorf("incomplete Unicode escape sequence")
	}
	codePoint, err := strconv.ParseUint(p.input[start:start+digits], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex digits in Unicode escape: %s", p.input[start:start+digits])
	}
	p.pos = start + digits
	return rune(codePoint), nil
}

func (p *TurtleParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if isSpace(ch) {
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

// matchKeyword consumes keyword when it is not followed by a name
// character
func (p *TurtleParser) matchKeyword(keyword string, caseSensitive bool) bool {
	end := p.pos + len(keyword)
	if end > p.length {
		return false
	}
	word := p.input[p.pos:end]
	if caseSensitive && word != keyword || !caseSensitive && !strings.EqualFold(word, keyword) {
		return false
	}
	if end < p.length {
		r, _ := utf8.DecodeRuneInString(p.input[end:])
		if isPNChars(r) || r == ':' {
			return false
		}
	}
	p.pos = end
	return true
}

func (p *TurtleParser) peek(ch byte) bool {
	return p.pos < p.length && p.input[p.pos] == ch
}

func (p *TurtleParser) consume(ch byte) bool {
	if p.peek(ch) {
		p.pos++
		return true
	}
	return false
}

func (p *TurtleParser) peekRune() (rune, int) {
	if p.pos >= p.length {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(p.input[p.pos:])
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// isPNCharsBase implements PN_CHARS_BASE from the Turtle grammar
func isPNCharsBase(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 0x00C0 && r <= 0x00D6) ||
		(r >= 0x00D8 && r <= 0x00F6) ||
		(r >= 0x00F8 && r <= 0x02FF) ||
		(r >= 0x0370 && r <= 0x037D) ||
		(r >= 0x037F && r <= 0x1FFF) ||
		(r >= 0x200C && r <= 0x200D) ||
		(r >= 0x2070 && r <= 0x218F) ||
		(r >= 0x2C00 && r <= 0x2FEF) ||
		(r >= 0x3001 && r <= 0xD7FF) ||
		(r >= 0xF900 && r <= 0xFDCF) ||
		(r >= 0xFDF0 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0xEFFFF)
}

func isPNCharsU(r rune) bool {
	return isPNCharsBase(r) || r == '_'
}

func isPNChars(r rune) bool {
	return isPNCharsU(r) ||
		r == '-' ||
		(r >= '0' && r <= '9') ||
		r == 0x00B7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}
