// Package rewriter substitutes mapped IRIs in SPARQL query text.
//
// Rewriting happens in two phases. PREFIX and BASE declaration lines are
// rewritten first, in place. The body is then re-emitted span by span from
// the scanner: IRI references and prefixed names with a mapping hit are
// replaced and everything else, comments and strings included, is copied
// byte for byte.
package rewriter

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/remap"
	"github.com/aleksaelezovic/myna/pkg/sparql/scanner"
)

var qnameLocalRE = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)

// Options controls how replacements are written
type Options struct {
	// CompactQNames writes a replaced prefixed name as prefix:local when some
	// declared namespace covers the new IRI. Otherwise <iri> is written.
	CompactQNames bool
}

// Result is the outcome of RewriteDetailed
type Result struct {
	Text string `json:"text" yaml:"text"`
	// Prologue holds the declarations of the rewritten text
	Prologue scanner.Prologue  `json:"prologue" yaml:"prologue"`
	Stats    remap.ChangeStats `json:"stats" yaml:"stats"`
}

// Rewrite returns text with every mapped IRI replaced. prefixes are the
// bindings declared by text and are used to expand its prefixed names.
func Rewrite(text string, prefixes map[string]string, table *mapping.Table, compact bool) string {
	return RewriteDetailed(text, prefixes, table, Options{CompactQNames: compact}).Text
}

// RewriteDetailed is Rewrite with the updated declarations and change
// statistics. Every declaration line and every IRI reference or prefixed
// name of the body counts as one unit.
func RewriteDetailed(text string, prefixes map[string]string, table *mapping.Table, opts Options) Result {
	updatedText, handled, declStats := rewriteDeclarations(text, table)
	updated := scanner.ExtractDeclarations(updatedText)

	var spans []scanner.Span
	var units []int
	for sp := range scanner.Spans(updatedText) {
		if isSubstitutable(sp, handled) {
			units = append(units, len(spans))
		}
		spans = append(spans, sp)
	}

	tokens := make([]scanner.Span, len(units))
	for i, idx := range units {
		tokens[i] = spans[idx]
	}
	rewritten, stats := remap.Apply(tokens, table, spanRewriter(prefixes, updated.Prefixes, opts))
	for i, idx := range units {
		spans[idx] = rewritten[i]
	}

	var b strings.Builder
	b.Grow(len(updatedText))
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}

	stats.TotalUnits += declStats.TotalUnits
	stats.UnitsTouched += declStats.UnitsTouched
	stats.Replacements += declStats.Replacements
	return Result{Text: b.String(), Prologue: updated, Stats: stats}
}

// isSubstitutable reports whether the body phase may replace sp. Prefixed
// names on declaration lines and IRIs already handled as declarations are
// left alone.
func isSubstitutable(sp scanner.Span, handled map[int]struct{}) bool {
	switch sp.Kind {
	case scanner.SpanIRIRef:
		_, done := handled[sp.Pos]
		return !done
	case scanner.SpanPrefixedName:
		return !sp.DeclarationLine
	}
	return false
}

// rewriteDeclarations replaces the namespace of every PREFIX and BASE line
// that the table maps. It returns the new text and the offsets of the
// declarations' '<' in it.
func rewriteDeclarations(text string, table *mapping.Table) (string, map[int]struct{}, remap.ChangeStats) {
	var b strings.Builder
	b.Grow(len(text))
	handled := make(map[int]struct{})
	var stats remap.ChangeStats

	for _, line := range scanner.SplitLines(text) {
		out := line.Text
		if d, ok := scanner.MatchDeclaration(line.Text); ok {
			changed := 0
			if next, ok := table.Replacement(d.IRI); ok {
				out = spliceIRI(line.Text, d.Start, d.IRI, next)
				changed = 1
			}
			handled[b.Len()+d.Start-1] = struct{}{}
			stats.Add(changed)
		}
		b.WriteString(out)
		b.WriteString(line.Break)
	}
	return b.String(), handled, stats
}

// spliceIRI replaces the first iri in text at or after from with next. Space
// padding inside the angle brackets is kept.
func spliceIRI(text string, from int, iri, next string) string {
	k := from + strings.Index(text[from:], iri)
	return text[:k] + next + text[k+len(iri):]
}

func spanRewriter(original, updated map[string]string, opts Options) remap.UnitRewriter[scanner.Span] {
	return func(sp scanner.Span, table *mapping.Table) (scanner.Span, int) {
		switch sp.Kind {
		case scanner.SpanIRIRef:
			if next, ok := table.Replacement(sp.Value); ok {
				sp.Text = spliceIRI(sp.Text, 1, sp.Value, next)
				sp.Value = next
				return sp, 1
			}
		case scanner.SpanPrefixedName:
			expanded := scanner.Expand(sp.Value, original)
			if expanded == "" {
				return sp, 0
			}
			if next, ok := table.Replacement(expanded); ok {
				if opts.CompactQNames {
					sp.Text = ChooseQNameOrIRI(next, updated)
				} else {
					sp.Text = "<" + next + ">"
				}
				sp.Value = sp.Text
				return sp, 1
			}
		}
		return sp, 0
	}
}

// ChooseQNameOrIRI writes iri as prefix:local when a non-default prefix in
// prefixes covers it with a simple local name, and as <iri> otherwise. The
// longest matching namespace wins.
func ChooseQNameOrIRI(iri string, prefixes map[string]string) string {
	labels := make([]string, 0, len(prefixes))
	for label, ns := range prefixes {
		if label != "" && ns != "" {
			labels = append(labels, label)
		}
	}
	slices.SortFunc(labels, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(prefixes[b]), len(prefixes[a])), cmp.Compare(a, b))
	})

	for _, label := range labels {
		local, ok := strings.CutPrefix(iri, prefixes[label])
		if ok && qnameLocalRE.MatchString(local) {
			return label + ":" + local
		}
	}
	return "<" + iri + ">"
}

// CountAppliedChanges counts the mapping pairs that took effect between
// before and after: pairs with distinct non-empty values whose old IRI
// occurs in before and whose new IRI occurs in after.
func CountAppliedChanges(table *mapping.Table, before, after string) int {
	n := 0
	for _, e := range table.Entries() {
		if e.Old == "" || e.New == "" || e.Old == e.New {
			continue
		}
		if strings.Contains(before, e.Old) && strings.Contains(after, e.New) {
			n++
		}
	}
	return n
}
