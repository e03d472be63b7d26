package api

import (
	"encoding/json"
	"errors"
	"iter"
	"net/http"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify/ports"
)

// ChatRequest addresses a follow-up question to a completed run.
type ChatRequest struct {
	ReportID string `json:"report_id"`
	Message  string `json:"message"`
}

// chat streams the model's answer to a follow-up question as SSE "chunk"
// events. Sessions persist for the life of the process; a session lost to
// a restart is rebuilt from the archived report.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ReportID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, errors.New("report_id and message are required"))
		return
	}

	session, err := s.sessionFor(r, req.ReportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	chunks, err := session.Send(r.Context(), req.Message)
	if err != nil {
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

func (s *Server) sessionFor(r *http.Request, reportID string) (ports.Session, error) {
	s.mu.Lock()
	session, ok := s.sessions[reportID]
	s.mu.Unlock()
	if ok {
		return session, nil
	}

	entry, err := s.historySvc.Get(r.Context(), reportID)
	if err != nil {
		return nil, err
	}
	session, err = s.agents.StartFollowUp(r.Context(), entry.Report)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[reportID] = session
	s.mu.Unlock()
	return session, nil
}

// streamChunks drains a text stream into SSE "chunk" events, finishing
// with "done" on success or "error" if the stream fails midway.
func streamChunks(stream *sseWriter, chunks iter.Seq2[string, error]) {
	for chunk, err := range chunks {
		if err != nil {
			data, _ := json.Marshal(map[string]string{"error": err.Error()})
			stream.event("error", data)
			return
		}
		data, _ := json.Marshal(map[string]string{"text": chunk})
		stream.event("chunk", data)
	}
	stream.event("done", []byte("{}"))
}
