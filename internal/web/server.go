package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"kernelrag/internal/domain"
	"kernelrag/internal/pipeline"
	"kernelrag/internal/session"
)

//go:embed index.html
var indexHTML []byte

// Asker is the web-facing subset of the query pipeline.
type Asker interface {
	Ask(ctx context.Context, question string) pipeline.Result
}

// Server exposes the chat pipeline over HTTP.
type Server struct {
	pipe     Asker
	sessions *session.Registry
	log      *slog.Logger
	router   *mux.Router
}

func NewServer(pipe Asker, sessions *session.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{pipe: pipe, sessions: sessions, log: log}
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Context   string `json:"context,omitempty"`
	Failure   string `json:"failure"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		http.Error(w, "message must not be blank", http.StatusBadRequest)
		return
	}

	sess, ok := s.sessions.Get(req.SessionID)
	if !ok {
		sess = s.sessions.Create()
	}
	sess.Append(domain.RoleUser, question)

	result := s.pipe.Ask(r.Context(), question)
	// The transcript records the turn even on failure; the status message
	// stands in for the answer.
	sess.Append(domain.RoleAssistant, result.Message())
	if result.Failure != pipeline.FailureNone {
		s.log.Warn("query failed",
			"session", sess.ID,
			"failure", result.Failure.String(),
			"error", result.Err)
	}

	writeJSON(w, chatResponse{
		SessionID: sess.ID,
		Answer:    result.Message(),
		Context:   result.Context,
		Failure:   result.Failure.String(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.URL.Query().Get("session_id"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"session_id": sess.ID,
		"messages":   sess.Messages(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
