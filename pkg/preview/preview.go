// Package preview builds the before/after tables shown prior to a rewrite.
package preview

import (
	"math"
	"slices"
	"strings"

	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/rdf"
	"github.com/aleksaelezovic/myna/pkg/sparql/scanner"
)

const (
	StatusChange   = "Change"
	StatusNoChange = "No change"
)

// RDFRow describes one distinct named node of a statement set
type RDFRow struct {
	IRI         string `json:"iri" yaml:"iri"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	ProposedNew string `json:"proposedNew,omitempty" yaml:"proposedNew,omitempty"`
	Changed     bool   `json:"changed" yaml:"changed"`
}

func (r RDFRow) Status() string { return status(r.Changed) }

// SPARQLRow describes one staged query token
type SPARQLRow struct {
	Token       string            `json:"token" yaml:"token"`
	Kind        scanner.TokenKind `json:"kind" yaml:"kind"`
	Expanded    string            `json:"expanded" yaml:"expanded"`
	ProposedNew string            `json:"proposedNew,omitempty" yaml:"proposedNew,omitempty"`
	Changed     bool              `json:"changed" yaml:"changed"`
}

func (r SPARQLRow) Status() string { return status(r.Changed) }

func status(changed bool) string {
	if changed {
		return StatusChange
	}
	return StatusNoChange
}

// Summary is the headline count of a preview
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Proposed int `json:"proposed" yaml:"proposed"`
	// Percent is 100*Proposed/Total rounded to the nearest integer
	Percent int `json:"percent" yaml:"percent"`
}

func summarize(total, proposed int) Summary {
	s := Summary{Total: total, Proposed: proposed}
	if total > 0 {
		s.Percent = int(math.Round(100 * float64(proposed) / float64(total)))
	}
	return s
}

// RDFPreview is the preview of a statement set
type RDFPreview struct {
	Rows    []RDFRow `json:"rows" yaml:"rows"`
	Summary Summary  `json:"summary" yaml:"summary"`
}

// ForQuads lists every distinct named node of quads, sorted by IRI, with its
// display label and proposed replacement
func ForQuads(quads []*rdf.Quad, table *mapping.Table) RDFPreview {
	iris := rdf.NamedNodeIRIs(quads)
	slices.Sort(iris)
	labels := rdf.Labels(quads)

	p := RDFPreview{Rows: make([]RDFRow, 0, len(iris))}
	proposed := 0
	for _, iri := range iris {
		row := RDFRow{IRI: iri, Label: labels[iri].Value}
		if next, ok := table.Replacement(iri); ok {
			row.ProposedNew = next
			row.Changed = true
			proposed++
		}
		p.Rows = append(p.Rows, row)
	}
	p.Summary = summarize(len(p.Rows), proposed)
	return p
}

// SPARQLPreview is the preview of a query's tokens
type SPARQLPreview struct {
	Rows    []SPARQLRow `json:"rows" yaml:"rows"`
	Summary Summary     `json:"summary" yaml:"summary"`
}

// ForTokens proposes a replacement for every token, keeping token order.
// A prefixed name without a direct mapping still changes when its prefix's
// namespace is remapped: the proposal is then the new namespace followed by
// the token's local part.
func ForTokens(tokens []scanner.Token, prologue scanner.Prologue, table *mapping.Table) SPARQLPreview {
	newNamespaces := make(map[string]string)
	for label, ns := range prologue.Prefixes {
		if next, ok := table.Replacement(ns); ok {
			newNamespaces[label] = next
		}
	}

	p := SPARQLPreview{Rows: make([]SPARQLRow, 0, len(tokens))}
	proposed := 0
	for _, tok := range tokens {
		row := SPARQLRow{Token: tok.Text, Kind: tok.Kind, Expanded: tok.ExpandedIRI}
		if next, ok := table.Replacement(tok.ExpandedIRI); ok {
			row.ProposedNew = next
		} else if tok.Kind == scanner.PrefixedName {
			label, local, _ := strings.Cut(tok.Text, ":")
			if ns, ok := newNamespaces[label]; ok && ns+local != tok.ExpandedIRI {
				row.ProposedNew = ns + local
			}
		}
		if row.ProposedNew != "" {
			row.Changed = true
			proposed++
		}
		p.Rows = append(p.Rows, row)
	}
	p.Summary = summarize(len(p.Rows), proposed)
	return p
}
