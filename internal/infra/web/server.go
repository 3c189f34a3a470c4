package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"company-research-agent/internal/usecase"
)

type Server struct {
	researchUC usecase.ResearchUseCase
	log        *zerolog.Logger
}

func NewServer(researchUC usecase.ResearchUseCase, logger *zerolog.Logger) *Server {
	return &Server{researchUC: researchUC, log: logger}
}

// Router builds the public API router.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/research", func(r chi.Router) {
		r.Post("/", s.submitHandler())
		r.Get("/{jobID}", s.statusHandler())
		r.Get("/{jobID}/events", s.eventsHandler())
	})
	return r
}
