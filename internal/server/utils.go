package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aleksaelezovic/myna/internal/workflow"
	"github.com/aleksaelezovic/myna/pkg/mapping"
	"github.com/aleksaelezovic/myna/pkg/rdf"
	"github.com/aleksaelezovic/myna/pkg/store"
)

// maxBodyBytes bounds request bodies; ontologies are the large case
const maxBodyBytes = 64 << 20

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", statusCode, "error", message)

	var body errorBody
	body.Error.Code = statusCode
	body.Error.Message = message
	s.writeJSON(w, statusCode, body)
}

// writeErr maps err onto a status code and writes it
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rdf.ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, workflow.ErrRunKind),
		errors.Is(err, workflow.ErrNoMapping),
		errors.Is(err, mapping.ErrMissingHeaders):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", "error", err)
	}
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
