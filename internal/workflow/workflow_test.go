package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/myna/internal/storage"
	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/rdf"
	"github.com/aleksaelezovic/myna/pkg/store"
)

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	s, err := storage.NewInMemoryBadgerStorage()
	require.NoError(t, err)
	runs := store.NewRunStore(s)
	t.Cleanup(func() { _ = runs.Close() })

	svc := New(runs, cfg, nil)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func TestMakeRunID(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 500_000_000, time.FixedZone("CET", 3600))
	assert.Equal(t, "urn:myna:input:my_onto_v1_.nt:2024-05-01T11:00:00.5Z",
		MakeRunID(store.DomainRDF, store.RunInput, "my onto (v1).nt", at))
	assert.Equal(t, "urn:myna:sparql:output:q.rq:2024-05-01T11:00:00.5Z",
		MakeRunID(store.DomainSPARQL, store.RunOutput, "q.rq", at))
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		in       string
		domain   store.Domain
		expected string
	}{
		{"onto.nt", store.DomainRDF, "onto.mapped.nt"},
		{"archive.tar.nq", store.DomainRDF, "archive.tar.mapped.nq"},
		{"noext", store.DomainRDF, "noext.mapped"},
		{".hidden", store.DomainRDF, ".hidden.mapped"},
		{"query", store.DomainSPARQL, "query.mapped.rq"},
		{"query.sparql", store.DomainSPARQL, "query.mapped.sparql"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, OutputFileName(tt.in, tt.domain), tt.in)
	}
}

func TestEnsureQueryExtension(t *testing.T) {
	assert.Equal(t, "a.rq", EnsureQueryExtension("a.rq"))
	assert.Equal(t, "a.SPARQL", EnsureQueryExtension("a.SPARQL"))
	assert.Equal(t, "a.txt.rq", EnsureQueryExtension("a.txt"))
}

func TestSPARQLFlow(t *testing.T) {
	svc := newTestService(t, Config{CompactQNames: true})
	ctx := context.Background()

	query := "PREFIX ex: <urn:ex:>\nSELECT * WHERE { ?s a ex:Old ; ex:p <urn:x> } # ex:Old"
	input, err := svc.IngestSPARQL(ctx, "query.rq", query)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(input.ID, "urn:myna:sparql:input:query.rq:"))
	assert.Equal(t, map[string]string{"ex": "urn:ex:"}, input.Prefixes)
	assert.Len(t, input.Tokens, 5)

	src := PairsMapping([]mapping.Entry{
		{Old: "urn:ex:Old", New: "urn:ex:New"},
		{Old: "urn:x", New: "urn:y"},
	})
	table, _, err := src.Load(ctx)
	require.NoError(t, err)

	p, err := svc.PreviewSPARQL(input.ID, table)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Summary.Proposed)

	out, err := svc.ApplySPARQL(ctx, input.ID, src)
	require.NoError(t, err)
	assert.Equal(t, "PREFIX ex: <urn:ex:>\nSELECT * WHERE { ?s a ex:New ; ex:p <urn:y> } # ex:Old", out.Payload)
	assert.Equal(t, store.RunOutput, out.Kind)
	assert.Equal(t, input.ID, out.ParentID)
	assert.Equal(t, "query.mapped.rq", out.FileName)
	// only <urn:x> appears verbatim; ex:Old never spells out its IRI
	assert.Equal(t, 1, out.Applied)
	require.NotNil(t, out.Changes)
	assert.Equal(t, 2, out.Changes.Replacements)
	assert.Equal(t, table.Fingerprint(), out.Mapping.Fingerprint)

	stored, err := svc.Runs().Get(out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Payload, stored.Payload)

	exp, err := svc.Export(out.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "query.mapped.rq", exp.FileName)
	assert.Equal(t, out.Payload, string(exp.Data))
}

func TestRDFFlow(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()

	data := `<urn:a> <urn:p> <urn:b> .
<urn:a> <http://www.w3.org/2000/01/rdf-schema#label> "A"@en .
<rel> <urn:p> "urn:a" .
`
	input, err := svc.IngestRDF(ctx, "onto.nt", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, rdf.ContentTypeNTriples, input.SourceFormat)
	assert.Equal(t, &rdf.Stats{TotalQuads: 3, UniqueIRIs: 5, LabelCount: 1}, input.RDFStats)

	quads, err := rdf.NewNQuadsParser(input.Payload).Parse()
	require.NoError(t, err)
	for _, q := range quads {
		assert.Equal(t, input.ID, q.Graph.(*rdf.NamedNode).IRI)
	}
	assert.Equal(t, DefaultBaseIRI+"rel", quads[2].Subject.(*rdf.NamedNode).IRI)

	table := mapping.NewTable(mapping.Entry{Old: "urn:a", New: "urn:a2"})
	p, err := svc.PreviewRDF(input.ID, table)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Summary.Proposed)
	assert.Equal(t, 5, p.Summary.Total)

	out, err := svc.ApplyRDF(ctx, input.ID, StaticMapping(table, mapping.Meta{Rows: 1, UniqueOld: 1}))
	require.NoError(t, err)
	assert.Equal(t, "onto.mapped.nt", out.FileName)
	require.NotNil(t, out.Changes)
	assert.Equal(t, 3, out.Changes.TotalUnits)
	assert.Equal(t, 2, out.Changes.UnitsTouched)
	assert.Equal(t, 2, out.Changes.Replacements)

	outQuads, err := rdf.NewNQuadsParser(out.Payload).Parse()
	require.NoError(t, err)
	assert.Equal(t, "urn:a2", outQuads[0].Subject.(*rdf.NamedNode).IRI)
	assert.Equal(t, out.ID, outQuads[0].Graph.(*rdf.NamedNode).IRI)
	assert.Equal(t, "urn:a", outQuads[2].Object.(*rdf.Literal).Value)

	exp, err := svc.Export(out.ID, rdf.ContentTypeNTriples)
	require.NoError(t, err)
	assert.Equal(t, "onto.mapped.nt", exp.FileName)
	assert.NotContains(t, string(exp.Data), out.ID)
	assert.Contains(t, string(exp.Data), "<urn:a2> <urn:p> <urn:b> .")

	ttl, err := svc.Export(out.ID, rdf.ContentTypeTurtle)
	require.NoError(t, err)
	assert.Equal(t, "onto.mapped.ttl", ttl.FileName)
}

func TestExport_NativePrefixes(t *testing.T) {
	ctx := context.Background()
	data := "<urn:a> <http://www.w3.org/2000/01/rdf-schema#label> \"A\" .\n"

	for _, native := range []bool{false, true} {
		svc := newTestService(t, Config{NativePrefixes: native})
		input, err := svc.IngestRDF(ctx, "onto.nt", strings.NewReader(data))
		require.NoError(t, err)

		ttl, err := svc.Export(input.ID, rdf.ContentTypeTurtle)
		require.NoError(t, err)
		if native {
			assert.Contains(t, string(ttl.Data), "@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .")
			assert.Contains(t, string(ttl.Data), `<urn:a> rdfs:label "A" .`)
		} else {
			assert.Equal(t, "<urn:a> <http://www.w3.org/2000/01/rdf-schema#label> \"A\" .\n", string(ttl.Data))
		}
	}
}

func TestIngestRDF_TurtlePrefixes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{NativePrefixes: true})
	data := "@prefix ex: <urn:ex:> .\nex:a ex:p ex:b .\n"

	input, err := svc.IngestRDF(ctx, "onto.ttl", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, rdf.ContentTypeTurtle, input.SourceFormat)
	assert.Equal(t, map[string]string{"ex": "urn:ex:"}, input.Prefixes)

	table := mapping.NewTable(mapping.Entry{Old: "urn:ex:a", New: "urn:ex:z"})
	out, err := svc.ApplyRDF(ctx, input.ID, StaticMapping(table, mapping.Meta{Rows: 1, UniqueOld: 1}))
	require.NoError(t, err)
	assert.Equal(t, input.Prefixes, out.Prefixes)

	ttl, err := svc.Export(out.ID, rdf.ContentTypeTurtle)
	require.NoError(t, err)
	assert.Equal(t, "onto.mapped.ttl", ttl.FileName)
	assert.Contains(t, string(ttl.Data), "@prefix ex: <urn:ex:> .")
	assert.Contains(t, string(ttl.Data), "ex:z ex:p ex:b .")
}

func TestIngestRDF_Formats(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		data     string
		prefixes map[string]string
	}{
		{"onto.trig", "@prefix ex: <urn:ex:> .\nex:g { ex:a ex:p ex:b }\n", map[string]string{"ex": "urn:ex:"}},
		{"onto.jsonld", `{"@context": {"ex": "urn:ex:"}, "@id": "ex:a", "ex:p": {"@id": "ex:b"}}`, map[string]string{"ex": "urn:ex:"}},
		{"onto.rdf", `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="urn:ex:">
  <rdf:Description rdf:about="urn:ex:a"><ex:p rdf:resource="urn:ex:b"/></rdf:Description>
</rdf:RDF>`, map[string]string{"rdf": "http://www.w3.org/1999/02/22-rdf-syntax-ns#", "ex": "urn:ex:"}},
		{"onto.nt", "<urn:ex:a> <urn:ex:p> <urn:ex:b> .\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, Config{})
			run, err := svc.IngestRDF(ctx, tt.name, strings.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.prefixes, run.Prefixes)

			quads, err := rdf.NewNQuadsParser(run.Payload).Parse()
			require.NoError(t, err)
			require.Len(t, quads, 1)
			assert.Equal(t, "urn:ex:a", quads[0].Subject.(*rdf.NamedNode).IRI)
			assert.Equal(t, run.ID, quads[0].Graph.(*rdf.NamedNode).IRI)
		})
	}
}

func TestApply_Errors(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()

	q, err := svc.IngestSPARQL(ctx, "q.rq", "SELECT * {}")
	require.NoError(t, err)

	_, err = svc.ApplySPARQL(ctx, q.ID, nil)
	assert.ErrorIs(t, err, ErrNoMapping)

	_, err = svc.ApplyRDF(ctx, q.ID, StaticMapping(mapping.Empty(), mapping.Meta{}))
	assert.ErrorIs(t, err, ErrRunKind)

	_, err = svc.ApplySPARQL(ctx, "urn:missing", StaticMapping(mapping.Empty(), mapping.Meta{}))
	assert.ErrorIs(t, err, store.ErrNotFound)

	boom := errors.New("boom")
	_, err = svc.ApplySPARQL(ctx, q.ID, MappingFunc(func(context.Context) (*mapping.Table, mapping.Meta, error) {
		return nil, mapping.Meta{}, boom
	}))
	assert.ErrorIs(t, err, boom)

	_, err = svc.PreviewSPARQL("urn:missing", mapping.Empty())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIngestRDF_UnsupportedFormat(t *testing.T) {
	svc := newTestService(t, Config{})
	_, err := svc.IngestRDF(context.Background(), "onto.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, rdf.ErrUnsupportedContentType)
}

func TestLoadMappingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.csv")
	require.NoError(t, os.WriteFile(path, []byte("Old IRI,New IRI\nurn:a,urn:b\nurn:a,urn:c\n"), 0o600))

	table, meta, err := LoadMappingFile(path)
	require.NoError(t, err)
	assert.Equal(t, mapping.Meta{Rows: 2, UniqueOld: 1, DuplicateOld: 1}, meta)
	got, _ := table.Get("urn:a")
	assert.Equal(t, "urn:c", got)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Foo,Bar\n"), 0o600))
	_, _, err = LoadMappingFile(bad)
	assert.ErrorIs(t, err, mapping.ErrMissingHeaders)
}

func TestPairsMapping(t *testing.T) {
	table, meta, err := PairsMapping([]mapping.Entry{{Old: "a", New: "b"}, {Old: "a", New: "c"}, {Old: " ", New: "x"}}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mapping.Meta{Rows: 3, UniqueOld: 1, DuplicateOld: 1}, meta)
	assert.Equal(t, 1, table.Len())

}
