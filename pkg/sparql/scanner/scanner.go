package scanner

import (
	"iter"
	"strings"
)

// SpanKind classifies a run of SPARQL source text
type SpanKind int

const (
	// SpanPlain is text the scanner does not recognize
	SpanPlain SpanKind = iota
	// SpanComment runs from '#' up to (not including) the line break
	SpanComment
	// SpanString is a '...' or "..." literal, quotes included
	SpanString
	// SpanLongString is a '''...''' or """...""" literal, quotes included
	SpanLongString
	// SpanIRIRef is <...>, brackets included
	SpanIRIRef
	// SpanPrefixedName is prefix:local or :local
	SpanPrefixedName
)

func (k SpanKind) String() string {
	switch k {
	case SpanPlain:
		return "Plain"
	case SpanComment:
		return "Comment"
	case SpanString:
		return "String"
	case SpanLongString:
		return "LongString"
	case SpanIRIRef:
		return "IRIRef"
	case SpanPrefixedName:
		return "PrefixedName"
	default:
		return "Unknown"
	}
}

// Span is a classified slice of the input. Concatenating the Text of every
// span produced for an input reproduces the input exactly.
type Span struct {
	Kind SpanKind
	// Text is the exact source text of the span
	Text string
	// Value is the trimmed content between the brackets for SpanIRIRef and
	// the name itself for SpanPrefixedName
	Value string
	// Pos is the byte offset of the span in the input
	Pos int
	// DeclarationLine is set when the line the span starts on begins with
	// PREFIX or BASE (after leading whitespace)
	DeclarationLine bool
}

// Scanner splits SPARQL text into spans in a single forward pass.
//
// Only '#' comments, short and long strings, <...> references and prefixed
// names are recognized, and only outside of each other: nothing inside a
// comment, string or IRI reference is ever reported as a token. Text the
// scanner does not understand is reported as SpanPlain, so the scanner never
// fails on malformed input.
type Scanner struct {
	text     string
	pos      int
	declLine bool
	pending  *Span
}

// New creates a scanner positioned at the start of text
func New(text string) *Scanner {
	return &Scanner{text: text, declLine: isDeclarationLine(text)}
}

// Next returns the next span, or false once the input is exhausted
func (s *Scanner) Next() (Span, bool) {
	if s.pending != nil {
		sp := *s.pending
		s.pending = nil
		return sp, true
	}

	start := s.pos
	startDecl := s.declLine
	for s.pos < len(s.text) {
		sp, ok := s.step()
		if !ok {
			continue
		}
		if sp.Pos > start {
			s.pending = &sp
			return Span{Kind: SpanPlain, Text: s.text[start:sp.Pos], Pos: start, DeclarationLine: startDecl}, true
		}
		return sp, true
	}

	if s.pos > start {
		return Span{Kind: SpanPlain, Text: s.text[start:s.pos], Pos: start, DeclarationLine: startDecl}, true
	}
	return Span{}, false
}

// All iterates over the remaining spans
func (s *Scanner) All() iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for {
			sp, ok := s.Next()
			if !ok || !yield(sp) {
				return
			}
		}
	}
}

// Spans iterates over every span of text
func Spans(text string) iter.Seq[Span] {
	return New(text).All()
}

// step consumes input at the current position. It returns a span when a
// comment, string, IRI reference or prefixed name starts here; otherwise it
// advances over plain text and returns false.
func (s *Scanner) step() (Span, bool) {
	i := s.pos
	c := s.text[i]
	decl := s.declLine

	switch {
	case c == '#':
		end := indexLineBreak(s.text, i)
		return s.emit(SpanComment, i, end, "", decl), true

	// String bodies follow SPARQL escapes: a backslash consumes the next
	// character, so "\\" closes after the escaped backslash. Looking only at
	// the character before a quote would get that case wrong.
	case strings.HasPrefix(s.text[i:], `'''`) || strings.HasPrefix(s.text[i:], `"""`):
		end := closeString(s.text, i+3, s.text[i:i+3])
		return s.emit(SpanLongString, i, end, "", decl), true

	case c == '\'' || c == '"':
		end := closeString(s.text, i+1, s.text[i:i+1])
		return s.emit(SpanString, i, end, "", decl), true

	case c == '<':
		if j := strings.IndexByte(s.text[i+1:], '>'); j >= 0 {
			end := i + 1 + j + 1
			value := strings.TrimSpace(s.text[i+1 : end-1])
			return s.emit(SpanIRIRef, i, end, value, decl), true
		}
		// Unterminated: '<' is an ordinary character
		s.advance(i + 1)
		return Span{}, false

	case isNameStart(c) || c == ':':
		end, resume, ok := matchPrefixedName(s.text, i)
		if !ok {
			s.advance(resume)
			return Span{}, false
		}
		name := s.text[i:end]
		if strings.HasPrefix(name, "http:") || strings.HasPrefix(name, "https:") {
			s.advance(end)
			return Span{}, false
		}
		return s.emit(SpanPrefixedName, i, end, name, decl), true
	}

	s.advance(i + 1)
	return Span{}, false
}

func (s *Scanner) emit(kind SpanKind, start, end int, value string, decl bool) Span {
	s.advance(end)
	return Span{Kind: kind, Text: s.text[start:end], Value: value, Pos: start, DeclarationLine: decl}
}

// advance moves to end, recomputing the declaration-line flag if a line
// break was crossed
func (s *Scanner) advance(end int) {
	if k := strings.LastIndexAny(s.text[s.pos:end], "\r\n"); k >= 0 {
		s.declLine = isDeclarationLine(s.text[s.pos+k+1:])
	}
	s.pos = end
}

// closeString returns the end offset of a string whose body starts at from
// and which is closed by quote. A backslash escapes the next character.
// Unterminated strings run to the end of the input.
func closeString(text string, from int, quote string) int {
	for j := from; j < len(text); j++ {
		if text[j] == '\\' {
			j++
			continue
		}
		if strings.HasPrefix(text[j:], quote) {
			return j + len(quote)
		}
	}
	return len(text)
}

func indexLineBreak(text string, from int) int {
	if k := strings.IndexAny(text[from:], "\r\n"); k >= 0 {
		return from + k
	}
	return len(text)
}

// matchPrefixedName matches (NAME_START NAME_CHAR*)? ':' LOCAL_START LOCAL_CHAR*
// at i. Trailing dots are not part of the local name. On failure resume is
// the offset to continue scanning from.
func matchPrefixedName(text string, i int) (end, resume int, ok bool) {
	p := i
	if text[p] != ':' {
		p++
		for p < len(text) && isNameChar(text[p]) {
			p++
		}
		if p >= len(text) || text[p] != ':' {
			return 0, p, false
		}
	}

	colon := p
	p++
	if p >= len(text) || !isLocalStart(text[p]) {
		return 0, colon + 1, false
	}
	p++
	for p < len(text) && isLocalChar(text[p]) {
		p++
	}
	for text[p-1] == '.' {
		p--
	}
	return p, p, true
}

func isNameStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-'
}

func isLocalStart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isLocalChar(c byte) bool {
	return isNameChar(c) || c == '.'
}

// isDeclarationLine reports whether the line at the start of rest begins,
// after spaces and tabs, with the PREFIX or BASE keyword
func isDeclarationLine(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	for _, kw := range [2]string{"PREFIX", "BASE"} {
		if len(rest) < len(kw) || !strings.EqualFold(rest[:len(kw)], kw) {
			continue
		}
		if len(rest) == len(kw) || !isWordChar(rest[len(kw)]) {
			return true
		}
	}
	return false
}

func isWordChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}
