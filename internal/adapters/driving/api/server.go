// Package api provides a read-only diagnostic HTTP façade over the
// index: health, stats, document listings, and search. It never
// mutates; writes go through the MCP server or the CLI.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
)

// Server is the diagnostic HTTP server.
type Server struct {
	router chi.Router
	search driving.Searcher
	docs   driving.DocumentReader
	watch  driving.Watcher
}

// NewServer creates and configures the HTTP server. The watcher is
// optional; without one the stats response omits watcher counters.
func NewServer(search driving.Searcher, docs driving.DocumentReader, watch driving.Watcher) *Server {
	s := &Server{
		search: search,
		docs:   docs,
		watch:  watch,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on the given address until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger())

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/documents", s.handleListDocuments)
	r.Get("/api/search", s.handleSearch)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}
