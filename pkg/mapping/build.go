package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	oldIRIHeader = "old iri"
	newIRIHeader = "new iri"
)

// ErrMissingHeaders is matched by every MappingHeaderError
var ErrMissingHeaders = errors.New("mapping headers not found")

// MappingHeaderError reports that the old or new IRI column could not be
// resolved, along with the headers that were actually present.
type MappingHeaderError struct {
	Found []string
}

func (e *MappingHeaderError) Error() string {
	found := "(no headers)"
	if len(e.Found) > 0 {
		found = strings.Join(e.Found, ", ")
	}
	return fmt.Sprintf(`expected headers like "Old IRI" and "New IRI"; found: %s`, found)
}

func (e *MappingHeaderError) Is(target error) bool {
	return target == ErrMissingHeaders
}

// Row is one decoded tabular row keyed by column header
type Row map[string]string

// Meta describes the rows a table was built from
type Meta struct {
	Rows         int `json:"rows" yaml:"rows"`
	UniqueOld    int `json:"uniqueOld" yaml:"uniqueOld"`
	DuplicateOld int `json:"duplicateOld" yaml:"duplicateOld"`
}

// Build turns decoded rows into a Table.
//
// headers gives the column order used for column resolution; when nil the
// keys of the first row are used in sorted order. Rows with an empty old IRI
// are skipped. The last row for a given old IRI wins, and every row after the
// first for an old IRI counts toward Meta.DuplicateOld.
func Build(headers []string, rows []Row) (*Table, Meta, error) {
	if headers == nil && len(rows) > 0 {
		headers = make([]string, 0, len(rows[0]))
		for k := range rows[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}

	oldKey, newKey, ok := ResolveColumns(headers)
	if !ok {
		return nil, Meta{}, &MappingHeaderError{Found: append([]string(nil), headers...)}
	}

	table := &Table{index: make(map[string]int, len(rows))}
	meta := Meta{Rows: len(rows)}
	for _, r := range rows {
		oldIRI := strings.TrimSpace(r[oldKey])
		if oldIRI == "" {
			continue
		}
		if table.set(oldIRI, strings.TrimSpace(r[newKey])) {
			meta.DuplicateOld++
		}
	}
	meta.UniqueOld = table.Len()

	return table, meta, nil
}

// ResolveColumns locates the old and new IRI columns. An exact
// case-insensitive match on "old iri" / "new iri" is preferred; otherwise the
// first header containing both "old" (or "new") and "iri" is used.
func ResolveColumns(headers []string) (oldKey, newKey string, ok bool) {
	var haveOld, haveNew bool
	for _, h := range headers {
		switch normalizeHeader(h) {
		case oldIRIHeader:
			oldKey, haveOld = h, true
		case newIRIHeader:
			newKey, haveNew = h, true
		}
	}

	for _, h := range headers {
		nh := normalizeHeader(h)
		if !haveOld && strings.Contains(nh, "old") && strings.Contains(nh, "iri") {
			oldKey, haveOld = h, true
		}
		if !haveNew && strings.Contains(nh, "new") && strings.Contains(nh, "iri") {
			newKey, haveNew = h, true
		}
	}

	return oldKey, newKey, haveOld && haveNew
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
