package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/valetapp/valet/internal/schedule"
	"github.com/valetapp/valet/internal/version"
)

// turnTimeout bounds one full conversation turn, LLM call included.
const turnTimeout = 5 * time.Minute

// maxAudioBytes caps uploaded audio clips.
const maxAudioBytes = 25 << 20

const defaultSessionID = "default"

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/clear", s.handleChatClear)
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)

	mux.HandleFunc("GET /api/events", s.handleEventList)
	mux.HandleFunc("POST /api/events", s.handleEventCreate)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleEventDelete)
	mux.HandleFunc("POST /api/events/suggest", s.handleEventSuggest)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

type chatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	msg := s.orch.HandleTurn(ctx, req.SessionID, req.Message)
	s.broadcastTurn(req.SessionID, msg)

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": req.SessionID,
		"message":   msg,
	})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	s.orch.ClearSession(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{"sessionId": req.SessionID, "cleared": true})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with an audio file")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading audio upload failed")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	text, err := s.transcriber.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		s.log.Error().Err(err).Msg("transcription failed")
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

func (s *Server) handleEventList(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler is not configured")
		return
	}
	events, err := s.events.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing events failed")
		writeError(w, http.StatusInternalServerError, "listing events failed")
		return
	}
	if events == nil {
		events = []schedule.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleEventCreate(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler is not configured")
		return
	}
	var ev schedule.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.events.Create(r.Context(), ev)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEventDelete(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler is not configured")
		return
	}
	id := r.PathValue("id")
	if _, err := s.events.Get(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "loading event failed")
		return
	}
	if err := s.events.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "deleting event failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type suggestRequest struct {
	Intent      string          `json:"intent"`
	Constraints string          `json:"constraints,omitempty"`
	Candidates  []schedule.Slot `json:"candidates,omitempty"`
}

func (s *Server) handleEventSuggest(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil || s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler is not configured")
		return
	}
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Intent == "" {
		writeError(w, http.StatusBadRequest, "intent is required")
		return
	}

	events, err := s.events.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing events failed")
		return
	}

	suggestion, err := s.advisor.Suggest(r.Context(), req.Intent, req.Constraints, req.Candidates, events)
	if err != nil {
		s.log.Error().Err(err).Msg("slot suggestion failed")
		writeError(w, http.StatusBadGateway, "slot suggestion failed")
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
