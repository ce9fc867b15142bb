package mapping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_LastWins(t *testing.T) {
	headers := []string{"Old IRI", "New IRI"}
	rows := []Row{
		{"Old IRI": "urn:a", "New IRI": "urn:x"},
		{"Old IRI": "urn:a", "New IRI": "urn:y"},
	}

	table, meta, err := Build(headers, rows)
	require.NoError(t, err)

	got, ok := table.Get("urn:a")
	assert.True(t, ok)
	assert.Equal(t, "urn:y", got)
	assert.Equal(t, Meta{Rows: 2, UniqueOld: 1, DuplicateOld: 1}, meta)
}

func TestBuild_DuplicateCountsEveryRepeatRow(t *testing.T) {
	headers := []string{"old iri", "new iri"}
	rows := []Row{
		{"old iri": "urn:a", "new iri": "urn:x"},
		{"old iri": "urn:a", "new iri": "urn:x"},
		{"old iri": "urn:a", "new iri": "urn:x"},
		{"old iri": "urn:b", "new iri": "urn:z"},
		{"old iri": "urn:b", "new iri": "urn:z"},
	}

	_, meta, err := Build(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.DuplicateOld)
	assert.Equal(t, 2, meta.UniqueOld)
	assert.Equal(t, 5, meta.Rows)
}

func TestBuild_TrimsAndSkipsEmptyOld(t *testing.T) {
	headers := []string{"Old IRI", "New IRI"}
	rows := []Row{
		{"Old IRI": "  urn:a  ", "New IRI": "\turn:b "},
		{"Old IRI": "   ", "New IRI": "urn:ignored"},
		{"New IRI": "urn:missing-old"},
		{"Old IRI": "urn:c", "New IRI": ""},
	}

	table, meta, err := Build(headers, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	got, _ := table.Get("urn:a")
	assert.Equal(t, "urn:b", got)

	empty, ok := table.Get("urn:c")
	assert.True(t, ok, "empty new value is still an entry")
	assert.Equal(t, "", empty)
	_, replace := table.Replacement("urn:c")
	assert.False(t, replace, "empty new value never replaces")

	assert.Equal(t, 4, meta.Rows)
	assert.Equal(t, 0, meta.DuplicateOld)
}

func TestBuild_FuzzyHeaders(t *testing.T) {
	headers := []string{"Label", "Old_IRI", "New_IRI"}
	rows := []Row{{"Label": "thing", "Old_IRI": "urn:a", "New_IRI": "urn:b"}}

	table, _, err := Build(headers, rows)
	require.NoError(t, err)
	got, ok := table.Replacement("urn:a")
	assert.True(t, ok)
	assert.Equal(t, "urn:b", got)
}

func TestBuild_HeadersFromFirstRow(t *testing.T) {
	rows := []Row{{"OLD IRI ": "urn:a", "new iri": "urn:b"}}

	table, _, err := Build(nil, rows)
	require.NoError(t, err)
	got, _ := table.Get("urn:a")
	assert.Equal(t, "urn:b", got)
}

func TestBuild_MissingHeaders(t *testing.T) {
	_, _, err := Build([]string{"Foo", "Bar"}, []Row{{"Foo": "urn:a", "Bar": "urn:b"}})
	require.Error(t, err)

	var headerErr *MappingHeaderError
	require.True(t, errors.As(err, &headerErr))
	assert.Equal(t, []string{"Foo", "Bar"}, headerErr.Found)
	assert.ErrorIs(t, err, ErrMissingHeaders)
	assert.Contains(t, err.Error(), "Foo, Bar")
}

func TestBuild_OnlyOneColumnResolved(t *testing.T) {
	_, _, err := Build([]string{"Old IRI", "Replacement"}, nil)
	assert.ErrorIs(t, err, ErrMissingHeaders)
}

func TestBuild_NoHeaders(t *testing.T) {
	_, _, err := Build(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(no headers)")
}

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		wantOld string
		wantNew string
		wantOK  bool
	}{
		{"exact", []string{"Old IRI", "New IRI"}, "Old IRI", "New IRI", true},
		{"exact preferred over fuzzy", []string{"old_iri_legacy", "Old IRI", "New IRI"}, "Old IRI", "New IRI", true},
		{"fuzzy first match", []string{"old iri (a)", "old iri (b)", "newIRI"}, "old iri (a)", "newIRI", true},
		{"mixed", []string{"OLD IRI", "Proposed new IRI"}, "OLD IRI", "Proposed new IRI", true},
		{"missing new", []string{"Old IRI", "Target"}, "Old IRI", "", false},
		{"none", []string{"Foo", "Bar"}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldKey, newKey, ok := ResolveColumns(tt.headers)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantOld, oldKey)
				assert.Equal(t, tt.wantNew, newKey)
			}
		})
	}
}
