package store

import (
	"time"

	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/rdf"
	"github.com/aleksaelezovic/myna/pkg/remap"
	"github.com/aleksaelezovic/myna/pkg/sparql/scanner"
)

// RunKind tells an ingested input apart from a rewrite result
type RunKind string

const (
	RunInput  RunKind = "input"
	RunOutput RunKind = "output"
)

// Domain is the representation a run holds
type Domain string

const (
	DomainSPARQL Domain = "sparql"
	DomainRDF    Domain = "rdf"
)

// MappingSnapshot records the mapping table an output run was produced with
type MappingSnapshot struct {
	Fingerprint string          `json:"fingerprint"`
	Meta        mapping.Meta    `json:"meta"`
	Pairs       []mapping.Entry `json:"pairs"`
}

// NewMappingSnapshot captures table and its ingestion metadata
func NewMappingSnapshot(table *mapping.Table, meta mapping.Meta) *MappingSnapshot {
	return &MappingSnapshot{
		Fingerprint: table.Fingerprint(),
		Meta:        meta,
		Pairs:       table.Entries(),
	}
}

// Table rebuilds the mapping table
func (m *MappingSnapshot) Table() *mapping.Table {
	if m == nil {
		return mapping.Empty()
	}
	return mapping.NewTable(m.Pairs...)
}

// Run is one persisted ingestion or rewrite result.
//
// Payload holds the query text for SPARQL runs and N-Quads for RDF runs, in
// which every statement sits in the graph named by the run ID.
type Run struct {
	ID           string    `json:"id"`
	Kind         RunKind   `json:"kind"`
	Domain       Domain    `json:"domain"`
	ParentID     string    `json:"parentId,omitempty"`
	FileName     string    `json:"fileName"`
	CreatedAt    time.Time `json:"createdAt"`
	SourceFormat string    `json:"sourceFormat,omitempty"`
	Payload      string    `json:"payload"`
	Checksum     string    `json:"checksum"`

	// Prefixes declared by the query or by the RDF input document
	Prefixes map[string]string `json:"prefixes,omitempty"`

	// SPARQL runs
	BaseIRI string          `json:"baseIri,omitempty"`
	Tokens  []scanner.Token `json:"tokens,omitempty"`

	// RDF runs
	RDFStats *rdf.Stats `json:"rdfStats,omitempty"`

	// Output runs
	Changes *remap.ChangeStats `json:"changes,omitempty"`
	Applied int                `json:"applied,omitempty"`
	Mapping *MappingSnapshot   `json:"mapping,omitempty"`
}

// PayloadChecksum is the xxh3 checksum stored with a run's payload
func PayloadChecksum(payload string) string {
	return mapping.Hash128Hex([]byte(payload))
}
