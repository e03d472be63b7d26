package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zerify/zerify/internal/services"
	"github.com/zerify/zerify/internal/zerify"
)

// runAnalysis executes a verification run and streams its progress as
// SSE: "warning" for a flagged source, "stage" per transition, "chunk"
// per report fragment, then a terminal "done" or "error" event.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request) {
	var input zerify.RunInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stream, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	observe := func(ev zerify.PipelineEvent) {
		switch ev.Type {
		case zerify.EventStageUpdate:
			data, _ := json.Marshal(map[string]any{
				"stage":   ev.Stage,
				"status":  ev.Record.Status,
				"details": ev.Record.Details,
				"state":   ev.State,
			})
			stream.event("stage", data)
		case zerify.EventReportChunk:
			data, _ := json.Marshal(map[string]string{"text": ev.Chunk})
			stream.event("chunk", data)
		case zerify.EventWarning:
			data, _ := json.Marshal(ev.Flag)
			stream.event("warning", data)
		}
	}

	result, err := s.pipeline.Run(r.Context(), &input, observe)
	if err != nil {
		var perr *services.PipelineError
		payload := map[string]string{"error": err.Error()}
		if errors.As(err, &perr) {
			payload["stage"] = string(perr.Stage)
		}
		if errors.Is(err, zerify.ErrRunActive) {
			// The stream has not started yet for a rejected run; still
			// report over SSE since headers are already committed.
			slog.Warn("analysis rejected: run already active")
		}
		data, _ := json.Marshal(payload)
		stream.event("error", data)
		return
	}

	if result.Session != nil {
		s.mu.Lock()
		s.sessions[result.Entry.ID] = result.Session
		s.mu.Unlock()
	}

	data, _ := json.Marshal(map[string]any{
		"id":     result.Entry.ID,
		"report": result.Report,
		"risk":   result.Risk,
		"state":  result.State,
	})
	stream.event("done", data)
}
