// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline stages over HTTP for the web
// frontend: fetch a journal, run an enrichment pass, rebuild or purge
// the vector collection, and download journal files.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/journal-engine/pkg/types"
)

// Server wires the pipeline stages behind an HTTP router. Each request
// runs one stage synchronously, mirroring the single-threaded pipeline;
// concurrent invocations are not protected against.
type Server struct {
	cfg    types.PipelineConfig
	logger *zap.Logger
	client *http.Client
}

// New returns a Server over the given pipeline configuration.
func New(cfg types.PipelineConfig, logger *zap.Logger) *Server {
	timeout := cfg.Fetch.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Router builds the control-surface routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/fetch", s.handleFetch)
		r.Post("/enrich", s.handleEnrich)
		r.Post("/index", s.handleIndex)
		r.Post("/purge", s.handlePurge)
		r.Get("/files", s.handleListFiles)
		r.Get("/files/{name}", s.handleDownload)
	})
	return r
}

// ListenAndServe runs the control surface on the configured address.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info("control surface listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
