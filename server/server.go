// Package server provides the thin HTTP layer over the agent core.
//
// Handlers only decode requests, invoke the orchestrator, and encode
// TurnResults; all conversation and confirmation logic lives in the
// agent package.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/richinex/gridagent/agent"
	"github.com/richinex/gridagent/llm"
	"github.com/richinex/gridagent/sheets"
)

// Server serves the chat and confirmation endpoints.
type Server struct {
	agent  *agent.Agent
	sheet  sheets.Client
	logger *slog.Logger
}

// New creates a server for the given agent and spreadsheet handle.
func New(a *agent.Agent, sheet sheets.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{agent: a, sheet: sheet, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/confirm", s.handleConfirm)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe starts the server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type confirmRequest struct {
	ConversationID string   `json:"conversation_id"`
	InvocationIDs  []string `json:"invocation_ids"`
	Approved       bool     `json:"approved"`
}

type turnResponse struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Pending []agent.PendingSummary `json:"pending,omitempty"`
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

	result, err := s.agent.HandleUserMessage(r.Context(), req.Message, req.ConversationID, s.sheet)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTurnResponse(result))
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.InvocationIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invocation_ids is required")
		return
	}

	result, err := s.agent.ResolveConfirmation(r.Context(), req.ConversationID, req.InvocationIDs, req.Approved)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTurnResponse(result))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeTurnError(w http.ResponseWriter, err error) {
	s.logger.Error("turn failed", "error", err)

	var commErr *llm.CommunicationError
	if errors.As(err, &commErr) {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	var iterErr *agent.IterationLimitError
	if errors.As(err, &iterErr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func toTurnResponse(result agent.TurnResult) turnResponse {
	switch result.Type {
	case agent.TurnConfirmationRequired:
		return turnResponse{Type: "confirmation_required", Pending: result.Pending}
	default:
		return turnResponse{Type: "message", Text: result.Text}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
