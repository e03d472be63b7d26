package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
	"github.com/zerify/zerify/internal/zerify/ports"
)

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.historySvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []*zerify.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.historySvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.historySvc.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	// Follow-up sessions are seeded from archived reports; drop them too.
	s.mu.Lock()
	s.sessions = make(map[string]ports.Session)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listWatchlist(w http.ResponseWriter, r *http.Request) {
	records, err := s.misinfo.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []*zerify.MisinformationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
