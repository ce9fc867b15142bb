package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aleksaelezovic/myna/internal/workflow"
	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/preview"
	"github.com/aleksaelezovic/myna/pkg/rdf"
	"github.com/aleksaelezovic/myna/pkg/remap"
	"github.com/aleksaelezovic/myna/pkg/sparql/rewriter"
	"github.com/aleksaelezovic/myna/pkg/sparql/scanner"
	"github.com/aleksaelezovic/myna/pkg/store"
)

type sparqlRewriteRequest struct {
	Query   string          `json:"query"`
	Mapping []mapping.Entry `json:"mapping"`
	// Compact overrides the configured QName compaction when set
	Compact *bool `json:"compact,omitempty"`
}

type sparqlRewriteResponse struct {
	Text    string              `json:"text"`
	Tokens  []scanner.Token     `json:"tokens"`
	Preview []preview.SPARQLRow `json:"preview"`
	Summary preview.Summary     `json:"summary"`
	Stats   remap.ChangeStats   `json:"stats"`
	Applied int                 `json:"applied"`
}

type rdfRewriteRequest struct {
	NQuads string `json:"nquads"`
	// ContentType selects the input syntax, N-Quads when empty
	ContentType string          `json:"contentType,omitempty"`
	Mapping     []mapping.Entry `json:"mapping"`
	// OutputGraph names the graph of every output statement; empty keeps
	// statements in the default graph
	OutputGraph string `json:"outputGraph,omitempty"`
}

type rdfRewriteResponse struct {
	NQuads  string            `json:"nquads"`
	Preview []preview.RDFRow  `json:"preview"`
	Summary preview.Summary   `json:"summary"`
	Stats   remap.ChangeStats `json:"stats"`
}

// runSummary is a run without its payload
type runSummary struct {
	ID        string        `json:"id"`
	Kind      store.RunKind `json:"kind"`
	Domain    store.Domain  `json:"domain"`
	ParentID  string        `json:"parentId,omitempty"`
	FileName  string        `json:"fileName"`
	CreatedAt time.Time     `json:"createdAt"`
	Checksum  string        `json:"checksum"`
}

// handleRoot lists the available endpoints
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name": "myna",
		"endpoints": []string{
			"POST /api/sparql/rewrite",
			"POST /api/rdf/rewrite",
			"GET /api/runs",
			"GET /api/runs/{id}",
			"GET /api/runs/{id}/export",
			"DELETE /api/runs/{id}",
		},
	})
}

// handleSPARQLRewrite rewrites query text against the posted mapping
func (s *Server) handleSPARQLRewrite(w http.ResponseWriter, r *http.Request) {
	var req sparqlRewriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, r, http.StatusBadRequest, "missing 'query'")
		return
	}

	table, _, err := workflow.PairsMapping(req.Mapping).Load(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	compact := s.workflow.Config().CompactQNames
	if req.Compact != nil {
		compact = *req.Compact
	}

	prologue := scanner.ExtractDeclarations(req.Query)
	res := rewriter.RewriteDetailed(req.Query, prologue.Prefixes, table, rewriter.Options{CompactQNames: compact})
	tokens := scanner.ExtractTokens(req.Query, prologue)
	p := preview.ForTokens(tokens, prologue, table)

	s.writeJSON(w, http.StatusOK, sparqlRewriteResponse{
		Text:    res.Text,
		Tokens:  tokens,
		Preview: p.Rows,
		Summary: p.Summary,
		Stats:   res.Stats,
		Applied: rewriter.CountAppliedChanges(table, req.Query, res.Text),
	})
}

// handleRDFRewrite rewrites posted statements against the posted mapping
func (s *Server) handleRDFRewrite(w http.ResponseWriter, r *http.Request) {
	var req rdfRewriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = rdf.ContentTypeNQuads
	}
	parser, err := rdf.NewParserWithBase(contentType, s.workflow.Config().BaseIRI)
	if err != nil {
		s.writeError(w, r, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported content type: %s. Supported types: %v", contentType, rdf.GetSupportedContentTypes()))
		return
	}
	quads, err := parser.Parse(strings.NewReader(req.NQuads))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("parse error: %v", err))
		return
	}

	table, _, err := workflow.PairsMapping(req.Mapping).Load(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	var graph rdf.Term
	if req.OutputGraph != "" {
		graph = rdf.NewNamedNode(req.OutputGraph)
	}
	rewritten, stats := remap.RewriteQuads(quads, table, graph)

	var out strings.Builder
	if err := rdf.WriteNQuads(&out, rewritten); err != nil {
		s.writeErr(w, r, err)
		return
	}
	p := preview.ForQuads(quads, table)

	s.writeJSON(w, http.StatusOK, rdfRewriteResponse{
		NQuads:  out.String(),
		Preview: p.Rows,
		Summary: p.Summary,
		Stats:   stats,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.workflow.Runs().List()
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	summaries := make([]runSummary, len(runs))
	for i, run := range runs {
		summaries[i] = runSummary{
			ID:        run.ID,
			Kind:      run.Kind,
			Domain:    run.Domain,
			ParentID:  run.ParentID,
			FileName:  run.FileName,
			CreatedAt: run.CreatedAt,
			Checksum:  run.Checksum,
		}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.workflow.Runs().Get(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.Runs().Delete(r.PathValue("id")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportRun downloads a run; ?format= picks the RDF syntax
func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = rdf.ContentTypeTurtle
	}
	exp, err := s.workflow.Export(r.PathValue("id"), format)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exp.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(exp.Data); err != nil {
		s.log.Warn("write export", "run", exp.FileName, "error", err)
	}
}
