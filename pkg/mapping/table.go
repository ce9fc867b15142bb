package mapping

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Entry is a single old -> new IRI pair
type Entry struct {
	Old string `json:"old" yaml:"old"`
	New string `json:"new" yaml:"new"`
}

// Table is an immutable old -> new IRI lookup preserving first-insertion order.
// A Table is built wholesale by Build or NewTable and never mutated afterwards,
// so it can be shared as a snapshot between concurrent previews and rewrites.
type Table struct {
	index   map[string]int
	entries []Entry
}

// NewTable builds a table from pairs. Later pairs for the same old IRI
// overwrite the value of the earlier one but keep its position.
// Pairs with an empty old IRI are skipped.
func NewTable(pairs ...Entry) *Table {
	t := &Table{index: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		t.set(p.Old, p.New)
	}
	return t
}

// Empty returns a table with no entries
func Empty() *Table {
	return NewTable()
}

func (t *Table) set(oldIRI, newIRI string) bool {
	if oldIRI == "" {
		return false
	}
	if i, ok := t.index[oldIRI]; ok {
		t.entries[i].New = newIRI
		return true
	}
	t.index[oldIRI] = len(t.entries)
	t.entries = append(t.entries, Entry{Old: oldIRI, New: newIRI})
	return false
}

// Get returns the raw mapped value for an IRI, which may be empty
func (t *Table) Get(iri string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.index[iri]
	if !ok {
		return "", false
	}
	return t.entries[i].New, true
}

// Replacement returns the new IRI for iri only when the table has a non-empty
// value that differs from iri. This is the single substitution rule shared by
// the RDF and SPARQL rewriters.
func (t *Table) Replacement(iri string) (string, bool) {
	mapped, ok := t.Get(iri)
	if !ok || mapped == "" || mapped == iri {
		return "", false
	}
	return mapped, true
}

// Len returns the number of distinct old IRIs
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the pairs in insertion order
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Fingerprint identifies the table contents (order-sensitive) with a
// 128-bit xxh3 hash, hex encoded. Two tables with the same pairs in the same
// order share a fingerprint.
func (t *Table) Fingerprint() string {
	var buf []byte
	for _, e := range t.Entries() {
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(e.Old)))
		buf = append(buf, e.Old...)
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(e.New)))
		buf = append(buf, e.New...)
	}
	return Hash128Hex(buf)
}

// Hash128Hex returns the hex encoded 128-bit xxh3 hash of data
func Hash128Hex(data []byte) string {
	hash := xxh3.Hash128(data)
	var sum [16]byte
	binary.BigEndian.PutUint64(sum[0:8], hash.Hi)
	binary.BigEndian.PutUint64(sum[8:16], hash.Lo)
	return hex.EncodeToString(sum[:])
}
