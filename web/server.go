// ABOUTME: Operator HTTP server: inject/clear suggestions, view run status and decision history.
// ABOUTME: Single chi router; the status page is rendered from markdown via goldmark.

package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389-research/gamepilot/pilot"
)

// StatusProvider is the slice of the control loop the server reads.
type StatusProvider interface {
	Status() pilot.Status
}

// ServerConfig holds the configuration for the operator server.
type ServerConfig struct {
	Addr  string // listen address (default: "127.0.0.1:8484")
	RunID string
}

// Server exposes the operator surface over HTTP.
type Server struct {
	box      *pilot.SuggestionBox
	history  *pilot.History
	loop     StatusProvider
	router   chi.Router
	markdown goldmark.Markdown
	addr     string
	runID    string
	started  time.Time
}

// NewServer creates the operator server.
func NewServer(box *pilot.SuggestionBox, history *pilot.History, loop StatusProvider, cfg ServerConfig) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8484"
	}
	s := &Server{
		box:      box,
		history:  history,
		loop:     loop,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		addr:     cfg.Addr,
		runID:    cfg.RunID,
		started:  time.Now(),
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured address with
// timeouts to prevent resource exhaustion from slow clients.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return srv.ListenAndServe()
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatusPage)
	r.Get("/api/status", s.handleStatusJSON)
	r.Get("/api/decisions", s.handleDecisions)

	r.Route("/suggestions", func(r chi.Router) {
		r.Post("/", s.handleSuggestionCreate)
		r.Delete("/", s.handleSuggestionClear)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"run_id": s.runID,
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// suggestionRequest is the POST /suggestions body.
type suggestionRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSuggestionCreate(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		http.Error(w, "text must not be empty", http.StatusBadRequest)
		return
	}

	s.box.Publish(text)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"pending": s.box.Pending(),
	})
}

func (s *Server) handleSuggestionClear(w http.ResponseWriter, r *http.Request) {
	s.box.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"pending": 0})
}

func (s *Server) handleStatusJSON(w http.ResponseWriter, r *http.Request) {
	status := s.loop.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":      s.runID,
		"phase":       string(status.Phase),
		"tick":        status.Tick,
		"queue":       status.Queue,
		"remaining":   status.Remaining,
		"decisions":   status.Decisions,
		"suggestions": s.box.Pending(),
	})
}

// decisionView is the JSON shape of one history entry.
type decisionView struct {
	ID        string    `json:"id"`
	Sequence  string    `json:"sequence"`
	Fallback  bool      `json:"fallback"`
	Timestamp time.Time `json:"timestamp"`
	Response  string    `json:"response"`
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	entries := s.history.Entries()
	views := make([]decisionView, 0, len(entries))
	// Newest first for the API.
	for i := len(entries) - 1; i >= 0; i-- {
		d := entries[i]
		views = append(views, decisionView{
			ID:        d.ID,
			Sequence:  d.Sequence.String(),
			Fallback:  d.Fallback,
			Timestamp: d.Timestamp,
			Response:  d.Response,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleStatusPage renders the run status as HTML from a markdown report.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	var html bytes.Buffer
	if err := s.markdown.Convert([]byte(s.statusMarkdown()), &html); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>gamepilot</title></head><body>%s</body></html>", html.String())
}

// statusMarkdown builds the markdown source for the status page.
func (s *Server) statusMarkdown() string {
	status := s.loop.Status()

	var b strings.Builder
	b.WriteString("# gamepilot run status\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", s.runID)
	fmt.Fprintf(&b, "- Phase: **%s**\n", status.Phase)
	fmt.Fprintf(&b, "- Tick: %d\n", status.Tick)
	fmt.Fprintf(&b, "- Queue: `%s` (%d remaining)\n", status.Queue, status.Remaining)
	fmt.Fprintf(&b, "- Pending suggestions: %d\n", s.box.Pending())

	b.WriteString("\n## Recent decisions\n\n")
	entries := s.history.Entries()
	if len(entries) == 0 {
		b.WriteString("No decisions yet.\n")
		return b.String()
	}

	b.WriteString("| Time | Sequence | Fallback |\n")
	b.WriteString("| --- | --- | --- |\n")
	for i := len(entries) - 1; i >= 0; i-- {
		d := entries[i]
		fmt.Fprintf(&b, "| %s | `%s` | %v |\n", d.Timestamp.Format("15:04:05"), d.Sequence, d.Fallback)
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
