// Package remap substitutes mapped IRIs in already-parsed RDF statements.
//
// The substitution rule itself lives on mapping.Table (Replacement); this
// package applies it to typed terms and aggregates change statistics. The
// same Apply driver is used by the SPARQL rewriter for token streams.
package remap

import (
	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/rdf"
)

// ChangeStats summarizes one rewrite.
//
// TotalUnits is the statement (or token) count, UnitsTouched counts units
// with at least one changed component and Replacements counts every changed
// component, so a statement with two remapped terms contributes 2.
type ChangeStats struct {
	TotalUnits   int `json:"totalUnits" yaml:"totalUnits"`
	UnitsTouched int `json:"unitsTouched" yaml:"unitsTouched"`
	Replacements int `json:"replacements" yaml:"replacements"`
}

// Add records one unit with the given number of changed components
func (s *ChangeStats) Add(changed int) {
	s.TotalUnits++
	if changed > 0 {
		s.UnitsTouched++
		s.Replacements += changed
	}
}

// UnitRewriter rewrites a single unit and reports how many of its components
// changed. It must not mutate unit.
type UnitRewriter[U any] func(unit U, table *mapping.Table) (U, int)

// Apply runs rewrite over every unit in order and returns the new sequence
// together with aggregated statistics. The input slice is not modified.
func Apply[U any](units []U, table *mapping.Table, rewrite UnitRewriter[U]) ([]U, ChangeStats) {
	out := make([]U, len(units))
	var stats ChangeStats
	for i, u := range units {
		next, changed := rewrite(u, table)
		out[i] = next
		stats.Add(changed)
	}
	return out, stats
}

// RewriteTerm substitutes a named node when the table maps it to a different
// non-empty IRI. Any other term, or an unmapped named node, is returned as
// the same value so callers can detect "no change" by identity.
func RewriteTerm(term rdf.Term, table *mapping.Table) rdf.Term {
	node, ok := term.(*rdf.NamedNode)
	if !ok {
		return term
	}
	next, ok := table.Replacement(node.IRI)
	if !ok {
		return term
	}
	return rdf.NewNamedNode(next)
}

// QuadRewriter returns a UnitRewriter that rewrites subject, predicate and
// object and re-homes every statement into graph
func QuadRewriter(graph rdf.Term) UnitRewriter[*rdf.Quad] {
	return func(q *rdf.Quad, table *mapping.Table) (*rdf.Quad, int) {
		s := RewriteTerm(q.Subject, table)
		p := RewriteTerm(q.Predicate, table)
		o := RewriteTerm(q.Object, table)

		changed := 0
		for _, pair := range [3][2]rdf.Term{{s, q.Subject}, {p, q.Predicate}, {o, q.Object}} {
			if pair[0] != pair[1] {
				changed++
			}
		}
		return rdf.NewQuad(s, p, o, graph), changed
	}
}

// RewriteQuads rewrites every statement and places the results in
// outputGraph. Order is preserved and nothing is deduplicated.
func RewriteQuads(quads []*rdf.Quad, table *mapping.Table, outputGraph rdf.Term) ([]*rdf.Quad, ChangeStats) {
	return Apply(quads, table, QuadRewriter(outputGraph))
}

// Rehome copies quads into graph without rewriting any term
func Rehome(quads []*rdf.Quad, graph rdf.Term) []*rdf.Quad {
	out := make([]*rdf.Quad, len(quads))
	for i, q := range quads {
		out[i] = rdf.NewQuad(q.Subject, q.Predicate, q.Object, graph)
	}
	return out
}
