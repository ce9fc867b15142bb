package scanner

import (
	"cmp"
	"slices"
)

// TokenKind classifies a staged token
type TokenKind string

const (
	PrefixDecl   TokenKind = "PrefixDecl"
	BaseDecl     TokenKind = "BaseDecl"
	IRIRef       TokenKind = "IRIRef"
	PrefixedName TokenKind = "PrefixedName"
)

// Token is a classified lexical unit of a query together with the absolute
// IRI it denotes
type Token struct {
	Text        string    `json:"text" yaml:"text"`
	Kind        TokenKind `json:"kind" yaml:"kind"`
	ExpandedIRI string    `json:"expandedIri" yaml:"expandedIri"`
}

// Result is the set-mode output of Scan. Both lists hold distinct values in
// order of first occurrence.
type Result struct {
	IRIRefs       []string `json:"iriRefs" yaml:"iriRefs"`
	PrefixedNames []string `json:"prefixedNames" yaml:"prefixedNames"`
}

// Scan collects the distinct IRI references and prefixed names of text.
// Empty references (<>) are not collected.
func Scan(text string) Result {
	var r Result
	seenIRI := make(map[string]struct{})
	seenName := make(map[string]struct{})
	for sp := range Spans(text) {
		switch sp.Kind {
		case SpanIRIRef:
			if sp.Value == "" {
				continue
			}
			if _, ok := seenIRI[sp.Value]; !ok {
				seenIRI[sp.Value] = struct{}{}
				r.IRIRefs = append(r.IRIRefs, sp.Value)
			}
		case SpanPrefixedName:
			if _, ok := seenName[sp.Value]; !ok {
				seenName[sp.Value] = struct{}{}
				r.PrefixedNames = append(r.PrefixedNames, sp.Value)
			}
		}
	}
	return r
}

// ExtractTokens stages the tokens of a query: one per declared prefix, one
// for the base, one per IRI reference and one per prefixed name that expands
// under prologue. Tokens are unique by kind, text and expansion, and sorted
// by expanded IRI.
func ExtractTokens(text string, prologue Prologue) []Token {
	var tokens []Token
	seen := make(map[Token]struct{})
	add := func(tok Token) {
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	for label, ns := range prologue.Prefixes {
		add(Token{Text: "PREFIX " + label + ":", Kind: PrefixDecl, ExpandedIRI: ns})
	}
	if prologue.BaseIRI != "" {
		add(Token{Text: "BASE", Kind: BaseDecl, ExpandedIRI: prologue.BaseIRI})
	}

	found := Scan(text)
	for _, iri := range found.IRIRefs {
		add(Token{Text: "<" + iri + ">", Kind: IRIRef, ExpandedIRI: iri})
	}
	for _, name := range found.PrefixedNames {
		if expanded := prologue.Expand(name); expanded != "" {
			add(Token{Text: name, Kind: PrefixedName, ExpandedIRI: expanded})
		}
	}

	slices.SortFunc(tokens, func(a, b Token) int {
		return cmp.Or(
			cmp.Compare(a.ExpandedIRI, b.ExpandedIRI),
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Text, b.Text),
		)
	})
	return tokens
}
