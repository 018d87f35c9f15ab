// Package api exposes published trajectories over HTTP for the visualizer
// and ad-hoc inspection. The JSON bodies reuse the export contract.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/stellarsim/internal/star"
	"github.com/san-kum/stellarsim/internal/store"
)

// Server serves trajectory reads. It never mutates the store.
type Server struct {
	store store.Store
	log   *slog.Logger
	reg   *prometheus.Registry
	mux   *chi.Mux
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the structured logger (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithRegistry exposes reg under /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.reg = reg }
}

// New builds the server around a trajectory store.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store: st,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if s.reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/trajectories", s.handleList)
		r.Get("/trajectories/{starID}", s.handleGet)
	})

	s.mux = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("serving", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(started),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// trajectorySummary is the listing entry: headers only, no state arrays.
type trajectorySummary struct {
	StarID            string  `json:"star_id"`
	InitialMass       float64 `json:"initial_mass"`
	FinalPhase        string  `json:"final_phase"`
	TerminationReason string  `json:"termination_reason"`
	Steps             int     `json:"steps"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.All(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]trajectorySummary, 0, len(all))
	for _, t := range all {
		out = append(out, trajectorySummary{
			StarID:            t.StarID,
			InitialMass:       t.InitialMass,
			FinalPhase:        string(t.FinalPhase()),
			TerminationReason: string(t.TerminationReason),
			Steps:             t.Len() - 1,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	starID := chi.URLParam(r, "starID")
	t, err := s.store.Get(r.Context(), starID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, star.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		s.log.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
