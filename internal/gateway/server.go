// Package gateway exposes the agent over a local HTTP API.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tobind/quill/internal/agent"
	"github.com/tobind/quill/internal/events"
	"github.com/tobind/quill/internal/skills"
	"github.com/tobind/quill/internal/storage"
	"github.com/tobind/quill/internal/tools"
)

// Server is the quill gateway HTTP server.
type Server struct {
	httpServer *http.Server
	runtime    *agent.Runtime
	tools      *tools.Registry
	skills     *skills.Registry
	bus        *events.Bus
	usage      *storage.UsageStore // may be nil
}

// NewServer creates a gateway server bound to host:port.
func NewServer(rt *agent.Runtime, toolReg *tools.Registry, skillReg *skills.Registry, bus *events.Bus, usage *storage.UsageStore, host string, port int) *Server {
	s := &Server{
		runtime: rt,
		tools:   toolReg,
		skills:  skillReg,
		bus:     bus,
		usage:   usage,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/ask", s.handleAsk)
	r.Get("/api/tools", s.handleTools)
	r.Get("/api/skills", s.handleSkills)
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/usage", s.handleUsage)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("quill gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type askResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer, err := s.runtime.Run(r.Context(), sessionID, req.Message)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, askResponse{SessionID: sessionID, Answer: answer})
}

type toolJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Allowed     bool   `json:"allowed"`
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	list := s.tools.List()
	out := make([]toolJSON, 0, len(list))
	for _, t := range list {
		out = append(out, toolJSON{
			Name:        t.Name(),
			Description: t.Description(),
			Category:    string(t.Category()),
			Allowed:     s.tools.IsAllowed(t.Name()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type skillJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Script      bool   `json:"script"`
	Available   bool   `json:"available"`
	Reason      string `json:"reason,omitempty"`
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	all := s.skills.All()
	out := make([]skillJSON, 0, len(all))
	for _, sk := range all {
		available, reason := sk.Available()
		out = append(out, skillJSON{
			Name:        sk.Name,
			Description: sk.Description,
			Script:      sk.Script != "",
			Available:   available,
			Reason:      reason,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID        string             `json:"id"`
		SessionID string             `json:"session_id,omitempty"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	out := make([]eventJSON, len(history))
	for i, e := range history {
		out[i] = eventJSON{
			ID:        e.ID,
			SessionID: e.SessionID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeError(w, http.StatusNotFound, "usage tracking disabled")
		return
	}
	totals, err := s.usage.Totals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if totals == nil {
		totals = []storage.SessionUsage{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
