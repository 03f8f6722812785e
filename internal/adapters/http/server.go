// Package http exposes a driver over a JSON API: inspect the tree, spawn, tick,
// reset and remove agents, and scrape metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/internal/presentation/graph"
	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/driver"
	"github.com/aretw0/canopy/pkg/registry"
)

// APIVersion is the version of the route layout below.
const APIVersion = "0.1.0"

// Engine is what the server needs from a loaded tree.
type Engine interface {
	Driver() *driver.Manager
	Spec() *domain.TreeSpec
	Kinds() []registry.KindInfo
}

// Server serves an Engine.
type Server struct {
	Engine   Engine
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger logs every request.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics serves g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/kinds", s.GetKinds)
	r.Route("/tree", func(r chi.Router) {
		r.Get("/", s.GetTree)
		r.Get("/mermaid", s.GetMermaid)
	})
	r.Route("/agents", func(r chi.Router) {
		r.Get("/", s.ListAgents)
		r.Post("/", s.SpawnAgent)
		r.Post("/tick", s.TickAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetAgent)
			r.Delete("/", s.RemoveAgent)
			r.Get("/snapshot", s.GetSnapshot)
			r.Post("/tick", s.TickAgent)
			r.Post("/reset", s.ResetAgent)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "canopy-http",
		"version":     canopy.Version,
		"api_version": APIVersion,
	})
}

// GetKinds handles GET /kinds.
func (s *Server) GetKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Kinds())
}

// TreeResponse is the body of GET /tree.
type TreeResponse struct {
	Spec  *domain.TreeSpec `json:"spec"`
	Nodes []bt.NodeInfo    `json:"nodes"`
}

// GetTree handles GET /tree.
func (s *Server) GetTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TreeResponse{
		Spec:  s.Engine.Spec(),
		Nodes: s.Engine.Driver().Tree().Nodes(),
	})
}

// GetMermaid handles GET /tree/mermaid. With ?agent=<id> the agent's live
// nodes are highlighted.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	d := s.Engine.Driver()
	var overlay *graph.Overlay
	if id := r.URL.Query().Get("agent"); id != "" {
		info, err := d.Info(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		overlay = &graph.Overlay{Active: info.Active, Last: info.Status}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, graph.GenerateMermaid(d.Tree(), overlay))
}

// ListAgents handles GET /agents.
func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.Engine.Driver().List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

// SpawnRequest is the optional body of POST /agents.
type SpawnRequest struct {
	ID string `json:"id"`
}

// SpawnAgent handles POST /agents.
func (s *Server) SpawnAgent(w http.ResponseWriter, r *http.Request) {
	var body SpawnRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	id, err := s.Engine.Driver().Spawn(r.Context(), body.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SpawnRequest{ID: id})
}

// TickResponse reports one agent's tick.
type TickResponse struct {
	ID     string        `json:"id"`
	Status domain.Status `json:"status"`
}

// TickAgent handles POST /agents/{id}/tick.
func (s *Server) TickAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := s.Engine.Driver().Tick(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TickResponse{ID: id, Status: status})
}

// TickAll handles POST /agents/tick.
func (s *Server) TickAll(w http.ResponseWriter, r *http.Request) {
	results, err := s.Engine.Driver().TickAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetAgent handles GET /agents/{id}.
func (s *Server) GetAgent(w http.ResponseWriter, r *http.Request) {
	info, err := s.Engine.Driver().Info(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetSnapshot handles GET /agents/{id}/snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Driver().Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ResetAgent handles POST /agents/{id}/reset.
func (s *Server) ResetAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Driver().Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAgent handles DELETE /agents/{id}.
func (s *Server) RemoveAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Driver().Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAgentNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrAgentExists):
		code = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
