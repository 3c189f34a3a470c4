package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
)

type submitRequest struct {
	Input string `json:"input"`
	URL   string `json:"url"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// submitHandler accepts a research request and returns the job id
// without waiting for the pipeline.
func (s *Server) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		jobID, err := s.researchUC.Submit(ctx, model.ResearchRequest{Input: req.Input, URL: req.URL})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			s.log.Error().Err(err).Msg("submit failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to submit research job"})
			return
		}

		writeJSON(w, http.StatusAccepted, submitResponse{JobID: jobID})
	}
}

// statusHandler returns the current job snapshot. Poll fallback for
// clients that don't consume the event stream.
func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		jobID := chi.URLParam(r, "jobID")
		job, err := s.researchUC.Find(ctx, jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "job not found"})
				return
			}
			s.log.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load job"})
			return
		}

		writeJSON(w, http.StatusOK, job)
	}
}
