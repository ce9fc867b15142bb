package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/preview"
	"github.com/aleksaelezovic/myna/pkg/sparql/rewriter"
	"github.com/aleksaelezovic/myna/pkg/sparql/scanner"
	"github.com/aleksaelezovic/myna/pkg/store"
)

// IngestSPARQL stores query text as a new input run with its declarations
// and staged tokens
func (s *Service) IngestSPARQL(ctx context.Context, fileName, query string) (*store.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := newSPARQLRun(store.RunInput, fileName, query, s.now())
	run.ID = MakeRunID(store.DomainSPARQL, store.RunInput, fileName, run.CreatedAt)

	if err := s.putRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

func newSPARQLRun(kind store.RunKind, fileName, query string, createdAt time.Time) *store.Run {
	prologue := scanner.ExtractDeclarations(query)
	return &store.Run{
		Kind:         kind,
		Domain:       store.DomainSPARQL,
		FileName:     fileName,
		CreatedAt:    createdAt,
		SourceFormat: "application/sparql-query",
		Payload:      query,
		Prefixes:     prologue.Prefixes,
		BaseIRI:      prologue.BaseIRI,
		Tokens:       scanner.ExtractTokens(query, prologue),
	}
}

// PreviewSPARQL lists the changes table would make to the tokens of a query run
func (s *Service) PreviewSPARQL(runID string, table *mapping.Table) (preview.SPARQLPreview, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return preview.SPARQLPreview{}, err
	}
	if run.Domain != store.DomainSPARQL {
		return preview.SPARQLPreview{}, fmt.Errorf("%w: %s is %s", ErrRunKind, runID, run.Domain)
	}

	prologue := scanner.Prologue{Prefixes: run.Prefixes, BaseIRI: run.BaseIRI}
	return preview.ForTokens(run.Tokens, prologue, table), nil
}

// RewriteSPARQL rewrites query text without touching the run store
func (s *Service) RewriteSPARQL(query string, table *mapping.Table) rewriter.Result {
	prologue := scanner.ExtractDeclarations(query)
	return rewriter.RewriteDetailed(query, prologue.Prefixes, table, rewriter.Options{CompactQNames: s.cfg.CompactQNames})
}

// ApplySPARQL rewrites the query of an input run and stores the result as a
// new output run
func (s *Service) ApplySPARQL(ctx context.Context, inputRunID string, src MappingSource) (*store.Run, error) {
	input, table, meta, err := s.loadInputs(ctx, inputRunID, store.DomainSPARQL, src)
	if err != nil {
		return nil, err
	}

	res := rewriter.RewriteDetailed(input.Payload, input.Prefixes, table, rewriter.Options{CompactQNames: s.cfg.CompactQNames})

	out := newSPARQLRun(store.RunOutput, OutputFileName(input.FileName, store.DomainSPARQL), res.Text, s.now())
	out.ID = MakeRunID(store.DomainSPARQL, store.RunOutput, input.FileName, out.CreatedAt)
	out.ParentID = input.ID
	out.Changes = &res.Stats
	out.Applied = rewriter.CountAppliedChanges(table, input.Payload, res.Text)
	out.Mapping = store.NewMappingSnapshot(table, meta)

	if err := s.putRun(out); err != nil {
		return nil, err
	}
	s.log.Info("mapping applied to query",
		"input", input.ID,
		"output", out.ID,
		"applied", out.Applied,
		"replacements", res.Stats.Replacements,
	)
	return out, nil
}
