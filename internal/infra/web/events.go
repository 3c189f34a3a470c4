package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"company-research-agent/internal/domain"
)

// eventsHandler streams job snapshots as server-sent events until the
// job reaches a terminal state. The client just listens; there is no
// polling interval to configure. A disconnect detaches the watcher and
// leaves the pipeline untouched.
func (s *Server) eventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
			return
		}

		jobID := chi.URLParam(r, "jobID")
		snapshots, err := s.researchUC.Watch(ctx, jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "job not found"})
				return
			}
			s.log.Error().Err(err).Str("job_id", jobID).Msg("watch failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to watch job"})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-snapshots:
				if !ok {
					// Terminal snapshot already delivered.
					fmt.Fprint(w, "event: done\ndata: {}\n\n")
					flusher.Flush()
					return
				}
				data, err := json.Marshal(job)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: status\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
