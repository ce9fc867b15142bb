package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/preview"
	"github.com/aleksaelezovic/myna/pkg/rdf"
	"github.com/aleksaelezovic/myna/pkg/remap"
	"github.com/aleksaelezovic/myna/pkg/store"
)

// IngestRDF parses an RDF document, choosing the syntax from the file
// extension, and stores it as a new input run. Every statement is placed in
// the graph named by the run ID. Prefixes declared by the document are kept
// on the run.
func (s *Service) IngestRDF(ctx context.Context, fileName string, r io.Reader) (*store.Run, error) {
	format, err := rdf.DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	return s.IngestRDFAs(ctx, fileName, format.ContentType, r)
}

// IngestRDFAs is IngestRDF with an explicit content type
func (s *Service) IngestRDFAs(ctx context.Context, fileName, contentType string, r io.Reader) (*store.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser, err := rdf.NewParserWithBase(contentType, s.cfg.BaseIRI)
	if err != nil {
		return nil, err
	}
	quads, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}

	createdAt := s.now()
	runID := MakeRunID(store.DomainRDF, store.RunInput, fileName, createdAt)
	quads = remap.Rehome(quads, rdf.NewNamedNode(runID))

	payload, err := encodeNQuads(quads)
	if err != nil {
		return nil, err
	}
	stats := rdf.ComputeStats(quads)

	run := &store.Run{
		ID:           runID,
		Kind:         store.RunInput,
		Domain:       store.DomainRDF,
		FileName:     fileName,
		CreatedAt:    createdAt,
		SourceFormat: parser.ContentType(),
		Payload:      payload,
		RDFStats:     &stats,
	}
	if reporter, ok := parser.(rdf.PrefixReporter); ok && len(reporter.Prefixes()) > 0 {
		run.Prefixes = reporter.Prefixes()
	}
	if err := s.putRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

// PreviewRDF lists the distinct IRIs of an RDF run with their proposed replacements
func (s *Service) PreviewRDF(runID string, table *mapping.Table) (preview.RDFPreview, error) {
	_, quads, err := s.loadQuads(runID)
	if err != nil {
		return preview.RDFPreview{}, err
	}
	return preview.ForQuads(quads, table), nil
}

// ApplyRDF rewrites the statements of an input run into a new output run
// whose ID names the graph of every output statement
func (s *Service) ApplyRDF(ctx context.Context, inputRunID string, src MappingSource) (*store.Run, error) {
	input, table, meta, err := s.loadInputs(ctx, inputRunID, store.DomainRDF, src)
	if err != nil {
		return nil, err
	}
	quads, err := decodeNQuads(input)
	if err != nil {
		return nil, err
	}

	createdAt := s.now()
	outputID := MakeRunID(store.DomainRDF, store.RunOutput, input.FileName, createdAt)
	rewritten, changes := remap.RewriteQuads(quads, table, rdf.NewNamedNode(outputID))

	payload, err := encodeNQuads(rewritten)
	if err != nil {
		return nil, err
	}
	stats := rdf.ComputeStats(rewritten)

	out := &store.Run{
		ID:           outputID,
		Kind:         store.RunOutput,
		Domain:       store.DomainRDF,
		ParentID:     input.ID,
		FileName:     OutputFileName(input.FileName, store.DomainRDF),
		CreatedAt:    createdAt,
		SourceFormat: rdf.ContentTypeNQuads,
		Payload:      payload,
		Prefixes:     input.Prefixes,
		RDFStats:     &stats,
		Changes:      &changes,
		Applied:      changes.Replacements,
		Mapping:      store.NewMappingSnapshot(table, meta),
	}
	if err := s.putRun(out); err != nil {
		return nil, err
	}
	s.log.Info("mapping applied to statements",
		"input", input.ID,
		"output", out.ID,
		"statements", changes.TotalUnits,
		"touched", changes.UnitsTouched,
		"replacements", changes.Replacements,
	)
	return out, nil
}

// Export is a serialized run ready to be written out
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Export serializes a run. RDF runs are written without graph names in the
// requested syntax; query runs are returned as-is with an .rq-style name.
func (s *Service) Export(runID, contentType string) (*Export, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}

	if run.Domain == store.DomainSPARQL {
		return &Export{
			FileName:    EnsureQueryExtension(run.FileName),
			ContentType: "application/sparql-query",
			Data:        []byte(run.Payload),
		}, nil
	}

	quads, err := decodeNQuads(run)
	if err != nil {
		return nil, err
	}

	var prefixes map[string]string
	if s.cfg.NativePrefixes {
		prefixes = maps.Clone(rdf.CommonPrefixes)
		maps.Copy(prefixes, run.Prefixes)
	}
	serializer, err := rdf.NewSerializer(contentType, prefixes)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := serializer.Serialize(&buf, remap.Rehome(quads, nil)); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", runID, err)
	}
	return &Export{
		FileName:    exportFileName(run.FileName, rdf.ExtensionFor(serializer.ContentType())),
		ContentType: serializer.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (s *Service) loadQuads(runID string) (*store.Run, []*rdf.Quad, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, nil, err
	}
	if run.Domain != store.DomainRDF {
		return nil, nil, fmt.Errorf("%w: %s is %s", ErrRunKind, runID, run.Domain)
	}
	quads, err := decodeNQuads(run)
	if err != nil {
		return nil, nil, err
	}
	return run, quads, nil
}

func decodeNQuads(run *store.Run) ([]*rdf.Quad, error) {
	quads, err := rdf.NewNQuadsParser(run.Payload).Parse()
	if err != nil {
		return nil, fmt.Errorf("decode run %s: %w", run.ID, err)
	}
	return quads, nil
}

func encodeNQuads(quads []*rdf.Quad) (string, error) {
	var b strings.Builder
	if err := rdf.WriteNQuads(&b, quads); err != nil {
		return "", fmt.Errorf("encode statements: %w", err)
	}
	return b.String(), nil
}
