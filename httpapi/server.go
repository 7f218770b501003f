// Package httpapi wires the agent registry and A2A executor to the HTTP
// surface pinned in spec §6. It is the external-collaborator layer the core
// spec treats as out of scope for its own semantics, built here in the
// teacher's go-chi style (server.go's mux-based routing generalized to
// chi's router) so the service is actually runnable.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentrelay/agentrelay/a2a"
	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/discovery"
)

// Server holds the collaborators every handler needs: the agent registry,
// the A2A executor, and the discovery card generator.
type Server struct {
	registry  *agent.AgentRegistry
	executor  *a2a.Executor
	discovery *discovery.Generator
	logger    *slog.Logger
}

// NewServer builds a Server. logger defaults to slog.Default() if nil.
func NewServer(registry *agent.AgentRegistry, executor *a2a.Executor, gen *discovery.Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, executor: executor, discovery: gen, logger: logger}
}

// Router builds the chi router exposing every route in spec §6.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleHealth)
	r.Get("/health/ready", s.handleHealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/.well-known/agent.json", s.handleServiceCard)
	r.Get("/.well-known/agents/{path}/agent.json", s.handleAgentCard)

	r.Get("/agents", s.handleListAgents)
	r.Get("/agents/{path}", s.handleGetAgent)
	r.Post("/agents/{path}/chat", s.handleChat)
	r.Post("/agents/{path}/stream", s.handleChatStream)

	r.Post("/a2a/tasks", s.handleCreateTask)
	r.Get("/a2a/tasks", s.handleListTasks)
	r.Get("/a2a/tasks/{id}", s.handleGetTask)
	r.Post("/a2a/tasks/{id}/cancel", s.handleCancelTask)
	r.Get("/a2a/tasks/{id}/stream", s.handleStreamTask)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"traceId", middleware.GetReqID(r.Context()),
		)
	})
}
