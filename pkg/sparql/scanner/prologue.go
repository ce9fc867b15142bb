package scanner

import (
	"regexp"
	"strings"
)

var (
	prefixDeclRE = regexp.MustCompile(`(?i)^\s*PREFIX\s+([A-Za-z_][\w-]*)?:\s*<([^>]+)>\s*$`)
	baseDeclRE   = regexp.MustCompile(`(?i)^\s*BASE\s+<([^>]+)>\s*$`)
)

// Prologue holds the PREFIX and BASE declarations of a query
type Prologue struct {
	// Prefixes maps a prefix label ("" for the default prefix) to its namespace
	Prefixes map[string]string `json:"prefixes" yaml:"prefixes"`
	BaseIRI  string            `json:"baseIri,omitempty" yaml:"baseIri,omitempty"`
}

// Line is one line of text together with the line break that ended it
type Line struct {
	Text  string
	Break string
}

// SplitLines splits text on \r\n, \n and \r. Joining Text+Break of every
// line reproduces text.
func SplitLines(text string) []Line {
	var lines []Line
	for len(text) > 0 {
		k := strings.IndexAny(text, "\r\n")
		if k < 0 {
			lines = append(lines, Line{Text: text})
			break
		}
		brk := 1
		if text[k] == '\r' && k+1 < len(text) && text[k+1] == '\n' {
			brk = 2
		}
		lines = append(lines, Line{Text: text[:k], Break: text[k : k+brk]})
		text = text[k+brk:]
	}
	return lines
}

// DeclarationMatch locates a PREFIX or BASE declaration on a single line
type DeclarationMatch struct {
	// Base is true for BASE, false for PREFIX
	Base  bool
	Label string
	IRI   string
	// Start and End delimit the text between the angle brackets
	Start, End int
}

// MatchDeclaration matches a line consisting solely of a PREFIX or BASE
// declaration. Keywords are case-insensitive.
func MatchDeclaration(line string) (DeclarationMatch, bool) {
	if m := prefixDeclRE.FindStringSubmatchIndex(line); m != nil {
		d := DeclarationMatch{IRI: strings.TrimSpace(line[m[4]:m[5]]), Start: m[4], End: m[5]}
		if m[2] >= 0 {
			d.Label = line[m[2]:m[3]]
		}
		return d, true
	}
	if m := baseDeclRE.FindStringSubmatchIndex(line); m != nil {
		return DeclarationMatch{Base: true, IRI: strings.TrimSpace(line[m[2]:m[3]]), Start: m[2], End: m[3]}, true
	}
	return DeclarationMatch{}, false
}

// ExtractDeclarations collects the prefix bindings and base IRI declared in
// text. A later PREFIX for the same label overrides an earlier one; the first
// BASE declaration wins.
func ExtractDeclarations(text string) Prologue {
	p := Prologue{Prefixes: make(map[string]string)}
	seenBase := false
	for _, line := range SplitLines(text) {
		d, ok := MatchDeclaration(line.Text)
		if !ok {
			continue
		}
		if d.Base {
			if !seenBase {
				p.BaseIRI = d.IRI
				seenBase = true
			}
			continue
		}
		p.Prefixes[d.Label] = d.IRI
	}
	return p
}

// Expand resolves a prefixed name against prefixes. It returns "" when the
// token has no colon or its label is unknown or bound to an empty namespace.
func Expand(token string, prefixes map[string]string) string {
	label, local, ok := strings.Cut(token, ":")
	if !ok {
		return ""
	}
	ns := prefixes[label]
	if ns == "" {
		return ""
	}
	return ns + local
}

// Expand resolves token against the prologue's prefixes
func (p Prologue) Expand(token string) string {
	return Expand(token, p.Prefixes)
}
