// Package api exposes the verification pipeline over HTTP. Long-running
// operations (analysis runs, comparisons, follow-up chat) stream their
// progress as server-sent events; everything else is plain JSON.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/services"
	"github.com/zerify/zerify/internal/zerify/ports"
)

type Server struct {
	pipeline   *services.Pipeline
	historySvc *services.HistoryService
	compareSvc *services.CompareService
	misinfo    repository.MisinfoRepository
	agents     ports.Agents

	mu       sync.Mutex
	sessions map[string]ports.Session // keyed by history entry ID
}

func NewServer(pipeline *services.Pipeline, historySvc *services.HistoryService, compareSvc *services.CompareService, misinfo repository.MisinfoRepository, agents ports.Agents) *Server {
	return &Server{
		pipeline:   pipeline,
		historySvc: historySvc,
		compareSvc: compareSvc,
		misinfo:    misinfo,
		agents:     agents,
		sessions:   make(map[string]ports.Session),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyses", s.runAnalysis)
		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.listHistory)
			r.Get("/{id}", s.getHistoryEntry)
			r.Delete("/", s.clearHistory)
		})
		r.Get("/watchlist", s.listWatchlist)
		r.Post("/compare", s.compareReports)
		r.Post("/chat", s.chat)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
