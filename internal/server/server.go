// Package server exposes the function hub over HTTP: a JSON dispatch
// endpoint plus discovery, health, and metrics routes.
package server

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

	"github.com/clognichain/clogni/internal/audit"
	"github.com/clognichain/clogni/internal/hub"
	"github.com/clognichain/clogni/internal/payload"
)

// Server dispatches HTTP calls to a hub.
type Server struct {
	hub      *hub.Hub
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// New builds a Server. gatherer may be nil, in which case /metrics is
// not mounted.
func New(h *hub.Hub, logger *slog.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{hub: h, logger: logger, gatherer: gatherer}
}

// Router mounts all routes and returns the handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/v1/call", s.handleCall)
	r.Get("/v1/functions", s.handleFunctions)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.logger.Info("http server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type callRequest struct {
	Fn   string          `json:"fn"`
	Args json.RawMessage `json:"args"`
}

type callResponse struct {
	OK     bool            `json:"ok"`
	ID     string          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, callResponse{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	if req.Fn == "" {
		writeJSON(w, http.StatusBadRequest, callResponse{OK: false, Error: "fn is required"})
		return
	}

	args := payload.Object{}
	if len(req.Args) > 0 {
		var err error
		args, err = payload.DecodeObject(req.Args)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, callResponse{OK: false, Error: fmt.Sprintf("decode args: %v", err)})
			return
		}
	}

	res, err := s.hub.Call(r.Context(), req.Fn, args)
	if err != nil {
		status := callErrorStatus(err)
		s.logger.Error("call failed",
			"function", req.Fn,
			"status", status,
			"error", err,
		)
		writeJSON(w, status, callResponse{OK: false, ID: res.ID, Error: err.Error()})
		return
	}

	out, err := payload.MarshalCanonical(res.Value)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, callResponse{OK: false, ID: res.ID, Error: err.Error()})
		return
	}

	s.logger.Info("call dispatched", "function", req.Fn, "id", res.ID)
	writeJSON(w, http.StatusOK, callResponse{OK: true, ID: res.ID, Result: out})
}

func (s *Server) handleFunctions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"functions": s.hub.List()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// callErrorStatus maps dispatch errors onto HTTP statuses: unknown
// names are 404, persistence faults are 500, everything else (argument
// validation, rejected payloads) is 400.
func callErrorStatus(err error) int {
	var unknown *hub.UnknownFunctionError
	if errors.As(err, &unknown) {
		return http.StatusNotFound
	}
	if audit.IsIOError(err) || audit.IsStorageError(err) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests emits one slog line per request with status and timing.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
