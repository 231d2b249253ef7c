package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"label-resolver/internal/locator"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// HTTP is the optional REST facade over the same engine the RPC transport
// serves.
type HTTP struct {
	service *Service
	addr    string
}

// NewHTTP creates the facade bound to addr.
func NewHTTP(service *Service, addr string) *HTTP {
	return &HTTP{service: service, addr: addr}
}

// Router builds the route table. Split from Run so tests can drive the
// handlers through httptest.
func (h *HTTP) Router() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)

	r.Get("/healthz", h.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/labels/resolve", h.handleResolve)
		r.Post("/labels/batch", h.handleBatch)
		r.Get("/labels/languages", h.handleLanguages)
		r.Get("/labels/files", h.handleFiles)
		r.Post("/cache/clear", h.handleClear)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (h *HTTP) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info().Str("addr", h.addr).Msg("HTTP facade listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (h *HTTP) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTP) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
		Language  string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.service.engine.Resolve(r.Context(), req.Reference, req.Language)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HTTP) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		References []string `json:"references"`
		Language   string   `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.service.engine.ResolveBatch(r.Context(), req.References, req.Language)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HTTP) handleLanguages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pkg, model, fileID := q.Get("package"), q.Get("model"), q.Get("fileId")
	if pkg == "" || model == "" || fileID == "" {
		writeError(w, http.StatusBadRequest, "package, model and fileId query parameters are required")
		return
	}

	langs, err := h.service.engine.Languages(pkg, model, fileID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if langs == nil {
		langs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": langs})
}

func (h *HTTP) handleFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pkg, model, language := q.Get("package"), q.Get("model"), q.Get("language")
	if pkg == "" || model == "" || language == "" {
		writeError(w, http.StatusBadRequest, "package, model and language query parameters are required")
		return
	}

	ids, err := h.service.engine.LabelFiles(pkg, model, language)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": ids})
}

func (h *HTTP) handleClear(w http.ResponseWriter, r *http.Request) {
	h.service.engine.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, locator.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
