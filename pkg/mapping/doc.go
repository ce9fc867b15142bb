// Package mapping builds the old -> new IRI lookup table that drives every
// rewrite.
//
// Tables are built from decoded tabular rows (see Build) and are immutable
// once built. Callers that ingest a new mapping file replace their table
// wholesale, which keeps earlier previews and running rewrites consistent
// with the snapshot they started with.
package mapping
