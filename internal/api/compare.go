package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zerify/zerify/internal/services"
)

// CompareRequest names the archived reports to compare, in order.
type CompareRequest struct {
	IDs []string `json:"ids"`
}

// compareReports streams a comparative brief over the named history
// entries as SSE "chunk" events, terminated by "done" or "error".
func (s *Server) compareReports(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	chunks, err := s.compareSvc.Compare(r.Context(), req.IDs)
	if err != nil {
		if errors.Is(err, services.ErrTooFewReports) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	stream, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	streamChunks(stream, chunks)
}
