// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/pdiddy/journal-engine/internal/embed"
	"github.com/pdiddy/journal-engine/internal/enrich"
	"github.com/pdiddy/journal-engine/internal/fetch"
	"github.com/pdiddy/journal-engine/internal/index"
	"github.com/pdiddy/journal-engine/internal/ratelimit"
	"github.com/pdiddy/journal-engine/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Warn("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

type fetchRequest struct {
	ISSN string `json:"issn"`
}

type fetchResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.ISSN == "" {
		s.renderError(w, r, http.StatusBadRequest, errMissingISSN)
		return
	}

	path := filepath.Join(s.cfg.Fetch.DataDir, req.ISSN+".json")
	client := fetch.NewClient(s.client, s.cfg.Fetch)

	var progress bytes.Buffer
	if err := client.SaveToFile(r.Context(), req.ISSN, path, &progress); err != nil {
		s.logger.Warn("fetch progress", zap.String("output", progress.String()))
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("fetch complete", zap.String("issn", req.ISSN), zap.String("file", path))
	render.JSON(w, r, fetchResponse{
		Success:  true,
		Message:  "data saved to " + path,
		Filename: path,
	})
}

type enrichResponse struct {
	Message string       `json:"message"`
	Stats   enrich.Stats `json:"stats"`
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	limiter, err := ratelimit.New(rateLimitOrDefault(s.cfg.Enrich.RateLimit), rateWindowOrDefault(s.cfg.Enrich.RateWindow))
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	enricher := enrich.New(enrich.NewSemanticClient(s.client, s.cfg.Enrich), limiter, s.cfg.Enrich)

	var progress bytes.Buffer
	stats, err := enricher.Enrich(r.Context(), &progress)
	if err != nil {
		// Partial progress is already committed to disk; report the
		// failure alongside the accumulated statistics.
		s.logger.Warn("enrichment aborted", zap.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, struct {
			Error string       `json:"error"`
			Stats enrich.Stats `json:"stats"`
		}{Error: err.Error(), Stats: stats})
		return
	}

	s.logger.Info("enrichment complete",
		zap.Int("added", stats.AbstractsAdded),
		zap.Int("unavailable", stats.MarkedUnavailable),
	)
	render.JSON(w, r, enrichResponse{Message: "data enrichment complete", Stats: stats})
}

type indexResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Summary index.Summary `json:"summary"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ix := index.New(s.cfg.Index, embed.ForConfig(s.cfg.Index))

	var progress bytes.Buffer
	summary, err := ix.Generate(r.Context(), &progress)
	if err != nil {
		s.logger.Warn("index progress", zap.String("output", progress.String()))
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("collection rebuilt",
		zap.Int("indexed", summary.Indexed),
		zap.Int("skipped", summary.Skipped),
	)
	render.JSON(w, r, indexResponse{
		Success: true,
		Message: "vector collection generated successfully",
		Summary: summary,
	})
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if err := index.Purge(s.cfg.Index); err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("collection purged", zap.String("dir", s.cfg.Index.IndexDir))
	render.JSON(w, r, map[string]string{"message": "vector collection purged successfully"})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := store.ListJournalFiles(s.cfg.Fetch.DataDir)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	render.JSON(w, r, map[string][]string{"files": files})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// Base-name only: the data directory is flat and this keeps
	// traversal sequences out of the path.
	if name == "" || name != filepath.Base(name) {
		s.renderError(w, r, http.StatusBadRequest, errBadFilename)
		return
	}

	path := filepath.Join(s.cfg.Fetch.DataDir, name)
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	http.ServeFile(w, r, path)
}
