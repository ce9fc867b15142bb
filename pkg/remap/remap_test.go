package remap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/rdf"
)

func TestRewriteTerm(t *testing.T) {
	table := mapping.NewTable(
		mapping.Entry{Old: "urn:a", New: "urn:a2"},
		mapping.Entry{Old: "urn:same", New: "urn:same"},
		mapping.Entry{Old: "urn:empty", New: ""},
	)

	t.Run("mapped named node", func(t *testing.T) {
		got := RewriteTerm(rdf.NewNamedNode("urn:a"), table)
		assert.Equal(t, rdf.NewNamedNode("urn:a2"), got)
	})

	identity := []rdf.Term{
		rdf.NewNamedNode("urn:unmapped"),
		rdf.NewNamedNode("urn:same"),
		rdf.NewNamedNode("urn:empty"),
		rdf.NewBlankNode("urn:a"),
		rdf.NewLiteral("urn:a"),
		rdf.NewLiteralWithDatatype("x", rdf.NewNamedNode("urn:a")),
	}
	for _, term := range identity {
		t.Run("identity "+term.String(), func(t *testing.T) {
			assert.Same(t, term, RewriteTerm(term, table))
		})
	}
}

func TestRewriteQuads_Scenario(t *testing.T) {
	in := []*rdf.Quad{
		rdf.NewQuad(rdf.NewNamedNode("urn:a"), rdf.NewNamedNode("urn:p"), rdf.NewNamedNode("urn:b"), rdf.NewDefaultGraph()),
	}
	table := mapping.NewTable(mapping.Entry{Old: "urn:a", New: "urn:a2"})
	out, stats := RewriteQuads(in, table, rdf.NewNamedNode("urn:out"))

	require.Len(t, out, 1)
	expected := rdf.NewQuad(rdf.NewNamedNode("urn:a2"), rdf.NewNamedNode("urn:p"), rdf.NewNamedNode("urn:b"), rdf.NewNamedNode("urn:out"))
	assert.True(t, expected.Equals(out[0]), "got %s", out[0])
	assert.Equal(t, ChangeStats{TotalUnits: 1, UnitsTouched: 1, Replacements: 1}, stats)

	// input untouched
	assert.Equal(t, "urn:a", in[0].Subject.(*rdf.NamedNode).IRI)
	assert.True(t, in[0].InDefaultGraph())
}

func TestRewriteQuads_StatsConsistency(t *testing.T) {
	a, b, p := rdf.NewNamedNode("urn:a"), rdf.NewNamedNode("urn:b"), rdf.NewNamedNode("urn:p")
	in := []*rdf.Quad{
		rdf.NewQuad(a, p, b, nil),                  // 3 changes
		rdf.NewQuad(a, p, rdf.NewLiteral("x"), nil), // 2 changes
		rdf.NewQuad(rdf.NewBlankNode("x"), rdf.NewNamedNode("urn:q"), rdf.NewLiteral("urn:a"), nil), // none
		rdf.NewQuad(a, p, b, nil),                  // duplicates are kept
	}
	table := mapping.NewTable(
		mapping.Entry{Old: "urn:a", New: "urn:A"},
		mapping.Entry{Old: "urn:b", New: "urn:B"},
		mapping.Entry{Old: "urn:p", New: "urn:P"},
	)

	out, stats := RewriteQuads(in, table, rdf.NewNamedNode("urn:out"))
	require.Len(t, out, 4)

	perStatement := []int{3, 2, 0, 3}
	total, touched := 0, 0
	for _, n := range perStatement {
		total += n
		if n > 0 {
			touched++
		}
	}
	assert.Equal(t, total, stats.Replacements)
	assert.Equal(t, touched, stats.UnitsTouched)
	assert.Equal(t, 4, stats.TotalUnits)

	for i, q := range out {
		assert.Equal(t, "urn:out", q.Graph.(*rdf.NamedNode).IRI, "statement %d", i)
	}
	assert.Same(t, in[2].Object, out[2].Object)
}

func TestRewriteQuads_EmptyTableIsIdentity(t *testing.T) {
	in := []*rdf.Quad{
		rdf.NewQuad(rdf.NewNamedNode("urn:a"), rdf.NewNamedNode("urn:p"), rdf.NewLiteral("v"), rdf.NewNamedNode("urn:g")),
		rdf.NewQuad(rdf.NewBlankNode("b"), rdf.NewNamedNode("urn:p"), rdf.NewNamedNode("urn:c"), rdf.NewNamedNode("urn:g")),
	}
	graph := rdf.NewNamedNode("urn:g")

	out, stats := RewriteQuads(in, mapping.Empty(), graph)
	for i := range in {
		assert.True(t, in[i].Equals(out[i]))
	}
	assert.Equal(t, 0, stats.Replacements)
	assert.Equal(t, 0, stats.UnitsTouched)
	assert.Equal(t, 2, stats.TotalUnits)
}

func TestApply_Generic(t *testing.T) {
	words := []string{"a", "b", "c"}
	upper := func(w string, table *mapping.Table) (string, int) {
		if next, ok := table.Replacement(w); ok {
			return next, 1
		}
		return w, 0
	}

	out, stats := Apply(words, mapping.NewTable(mapping.Entry{Old: "b", New: "B"}), upper)
	assert.Equal(t, []string{"a", "B", "c"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, words)
	assert.Equal(t, ChangeStats{TotalUnits: 3, UnitsTouched: 1, Replacements: 1}, stats)
}

func TestRehome(t *testing.T) {
	in := []*rdf.Quad{rdf.NewQuad(rdf.NewNamedNode("urn:s"), rdf.NewNamedNode("urn:p"), rdf.NewNamedNode("urn:o"), nil)}
	out := Rehome(in, rdf.NewNamedNode("urn:run"))
	assert.Equal(t, "urn:run", out[0].Graph.(*rdf.NamedNode).IRI)
	assert.Nil(t, in[0].Graph)
}
