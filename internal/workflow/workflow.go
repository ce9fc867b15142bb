// Package workflow ties ingestion, preview, rewrite and export together
// around persisted runs.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/store"
)

const DefaultBaseIRI = "urn:myna:base:"

var (
	// ErrNoMapping is returned when a rewrite is requested without a mapping
	ErrNoMapping = errors.New("no mapping loaded")
	// ErrRunKind is returned when a run of the wrong domain is used
	ErrRunKind = errors.New("run has the wrong domain")
)

// Config holds the settings a Service applies to every run
type Config struct {
	// BaseIRI resolves relative IRIs while parsing RDF input
	BaseIRI string
	// CompactQNames writes rewritten prefixed names in prefix:local form
	// when a declared namespace allows it
	CompactQNames bool
	// NativePrefixes makes Turtle exports compact against rdf.CommonPrefixes
	// and the prefixes recorded on the run
	NativePrefixes bool
}

// Service runs the ingest, preview, apply and export steps against a run store
type Service struct {
	runs *store.RunStore
	cfg  Config
	log  *slog.Logger
	now  func() time.Time
}

// New creates a Service. A nil logger uses slog.Default().
func New(runs *store.RunStore, cfg Config, logger *slog.Logger) *Service {
	if cfg.BaseIRI == "" {
		cfg.BaseIRI = DefaultBaseIRI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		runs: runs,
		cfg:  cfg,
		log:  logger.With("component", "workflow"),
		now:  time.Now,
	}
}

// Runs exposes the underlying run store
func (s *Service) Runs() *store.RunStore {
	return s.runs
}

// Config returns the settings the Service was created with
func (s *Service) Config() Config {
	return s.cfg
}

// MappingSource supplies a mapping table and its ingestion metadata
type MappingSource interface {
	Load(ctx context.Context) (*mapping.Table, mapping.Meta, error)
}

// MappingFunc adapts a function to MappingSource
type MappingFunc func(ctx context.Context) (*mapping.Table, mapping.Meta, error)

func (f MappingFunc) Load(ctx context.Context) (*mapping.Table, mapping.Meta, error) {
	return f(ctx)
}

// StaticMapping is an already-built table
func StaticMapping(table *mapping.Table, meta mapping.Meta) MappingSource {
	return MappingFunc(func(context.Context) (*mapping.Table, mapping.Meta, error) {
		return table, meta, nil
	})
}

// PairsMapping builds a table from explicit pairs, last pair winning
func PairsMapping(pairs []mapping.Entry) MappingSource {
	return MappingFunc(func(context.Context) (*mapping.Table, mapping.Meta, error) {
		rows := make([]mapping.Row, len(pairs))
		for i, p := range pairs {
			rows[i] = mapping.Row{"Old IRI": p.Old, "New IRI": p.New}
		}
		return mapping.Build([]string{"Old IRI", "New IRI"}, rows)
	})
}

// loadInputs fetches the input run and the mapping concurrently
func (s *Service) loadInputs(ctx context.Context, runID string, domain store.Domain, src MappingSource) (*store.Run, *mapping.Table, mapping.Meta, error) {
	if src == nil {
		return nil, nil, mapping.Meta{}, ErrNoMapping
	}

	var (
		run   *store.Run
		table *mapping.Table
		meta  mapping.Meta
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		run, err = s.runs.Get(runID)
		if err != nil {
			return fmt.Errorf("load run: %w", err)
		}
		if run.Domain != domain {
			return fmt.Errorf("%w: %s is %s, expected %s", ErrRunKind, runID, run.Domain, domain)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		table, meta, err = src.Load(groupCtx)
		if err != nil {
			return fmt.Errorf("load mapping: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, mapping.Meta{}, err
	}
	return run, table, meta, nil
}

func (s *Service) putRun(run *store.Run) error {
	if err := s.runs.Put(run); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	s.log.Info("run stored",
		"run", run.ID,
		"kind", run.Kind,
		"domain", run.Domain,
		"file", run.FileName,
		"checksum", run.Checksum,
	)
	return nil
}
