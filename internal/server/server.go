// Package server exposes the checker over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/accrava/secretsweep/internal/collect"
	"github.com/accrava/secretsweep/internal/engine"
	"github.com/accrava/secretsweep/internal/logging"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/types"
	"github.com/accrava/secretsweep/pkg/core"
)

// maxBody caps request bodies.
const maxBody = 8 << 20

type Server struct {
	// Engine is the base configuration for every request.
	Engine engine.Config
}

type textRequest struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type storageRequest struct {
	Local   map[string]string `json:"local"`
	Session map[string]string `json:"session"`
}

type scanRequest struct {
	HTML    string         `json:"html"`
	Storage storageRequest `json:"storage"`
}

type scanResponse struct {
	Result types.ScanResult `json:"result"`
	Report string           `json:"report"`
	Total  int              `json:"total"`
	Errors []string         `json:"errors,omitempty"`
}

func New(cfg engine.Config) *Server {
	return &Server{Engine: cfg}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/keywords", s.keywordsHandler)
	r.Route("/check", func(r chi.Router) {
		r.Post("/text", s.checkTextHandler)
		r.Post("/storage", s.checkStorageHandler)
	})
	r.Post("/scan", s.scanHandler)
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Minute,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logging.Logger.Infow("api listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) checker(scripts, storage engine.Collector) *core.Checker {
	return core.New(core.Options{Engine: s.Engine, Scripts: scripts, Storage: storage})
}

func (s *Server) keywordsHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"keywords": s.checker(nil, nil).Keywords()})
}

func (s *Server) checkTextHandler(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Label == "" {
		req.Label = "text"
	}
	issues := s.checker(nil, nil).CheckText(req.Text, req.Label)
	if issues == nil {
		issues = []types.Issue{}
	}
	render.JSON(w, r, map[string]any{"issues": issues})
}

func (s *Server) checkStorageHandler(w http.ResponseWriter, r *http.Request) {
	var req storageRequest
	if !decode(w, r, &req) {
		return
	}
	st := collect.StorageCollector{Storage: collect.FromMaps(req.Local, req.Session)}
	res := s.checker(nil, st).CheckStorage(r.Context())
	render.JSON(w, r, respond(res, report.Render(res), nil))
}

func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decode(w, r, &req) {
		return
	}
	var scripts engine.Collector
	if req.HTML != "" {
		scripts = collect.HTMLDocument{Reader: strings.NewReader(req.HTML)}
	}
	st := collect.StorageCollector{Storage: collect.FromMaps(req.Storage.Local, req.Storage.Session)}
	out := s.checker(scripts, st).Run(r.Context())
	render.JSON(w, r, respond(out.ScanResult, out.Report, out.Errors))
}

func respond(res types.ScanResult, text string, errs []error) scanResponse {
	if res.Scripts == nil {
		res.Scripts = []types.Finding{}
	}
	if res.Storage == nil {
		res.Storage = []types.Finding{}
	}
	resp := scanResponse{Result: res, Report: text, Total: report.Total(res)}
	for _, err := range errs {
		resp.Errors = append(resp.Errors, err.Error())
	}
	return resp
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		logging.Logger.Debugw("rejected request", "path", r.URL.Path, "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}
