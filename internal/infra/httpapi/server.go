// Package httpapi exposes the display's status over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"oftheday_display/internal/domain/ofday"
	"oftheday_display/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Display is the read side of the manager.
type Display interface {
	Current() (ofday.Frame, bool)
	Categories() []ofday.CategoryConfig
	Preview(ctx context.Context, at time.Time) (ofday.Frame, bool, error)
	StartedAt() time.Time
}

// Server is the status HTTP server.
type Server struct {
	display Display
	metrics *metrics.Metrics
	logger  *logrus.Entry
	router  chi.Router
	http    *http.Server
	now     func() time.Time
}

// New creates a server; m may be nil, in which case /metrics is not mounted.
func New(display Display, m *metrics.Metrics, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		display: display,
		metrics: m,
		logger:  logger.WithField("component", "httpapi"),
		now:     time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/now", s.handleNow)
	r.Get("/categories", s.handleCategories)
	r.Get("/preview", s.handlePreview)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	s.router = r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.WithField("addr", addr).Info("HTTP status server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("Failed to encode response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	started := s.display.StartedAt()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"started_at": started,
		"uptime":     s.now().Sub(started).Round(time.Second).String(),
		"categories": len(s.display.Categories()),
	})
}

func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.display.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

type categoryView struct {
	Position    int    `json:"position"`
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Source      string `json:"source"`
	DataFile    string `json:"data_file,omitempty"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.display.Categories()
	out := make([]categoryView, 0, len(cats))
	for i, c := range cats {
		out = append(out, categoryView{
			Position:    i,
			Key:         c.Key,
			DisplayName: c.DisplayName,
			Source:      string(c.Source),
			DataFile:    c.DataFile,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	at := s.now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "at must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		at = parsed
	}

	frame, ok, err := s.display.Preview(r.Context(), at)
	if err != nil {
		s.logger.WithError(err).Error("Preview failed")
		http.Error(w, "preview failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}
