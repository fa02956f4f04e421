// Package httpapi serves the macro engine over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Service is the engine surface the HTTP handlers need.
type Service interface {
	GenerateMacro(ctx context.Context, req crafting.MacroRequest) (*crafting.MacroResponse, error)
	SimulateMacro(ctx context.Context, req crafting.SimulateRequest) (*crafting.SimulateResponse, error)
	AvailableSkills(ctx context.Context, level int) ([]crafting.SkillInfo, error)
	RecentRuns(ctx context.Context, limit int) ([]crafting.MacroRun, error)
	GetRun(ctx context.Context, id string) (*crafting.MacroRun, error)
}

// Server wraps a Service with routing, CORS and error translation.
type Server struct {
	svc    Service
	cfg    config.ServerConfig
	logger *slog.Logger
}

// NewServer creates a Server. A nil logger uses slog.Default().
func NewServer(svc Service, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, cfg: cfg, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /macro/generate", s.handleGenerate)
	mux.HandleFunc("POST /macro/simulate", s.handleSimulate)
	mux.HandleFunc("GET /macro/available-skills", s.handleAvailableSkills)
	mux.HandleFunc("GET /macro/runs", s.handleRecentRuns)
	mux.HandleFunc("GET /macro/runs/{id}", s.handleGetRun)

	return corsMiddleware(s.cfg.AllowedOrigins, s.logRequests(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req crafting.MacroRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.svc.GenerateMacro(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req crafting.SimulateRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.svc.SimulateMacro(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAvailableSkills(w http.ResponseWriter, r *http.Request) {
	level, ok := s.intParam(w, r, "level", 0)
	if !ok {
		return
	}

	skills, err := s.svc.AvailableSkills(r.Context(), level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.intParam(w, r, "limit", 20)
	if !ok {
		return
	}

	runs, err := s.svc.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []crafting.MacroRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := s.svc.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if run == nil {
		s.writeAPIError(w, r, http.StatusNotFound, KindNotFound, fmt.Sprintf("run %q not found", id), nil, nil)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		s.writeAPIError(w, r, http.StatusBadRequest, KindBadRequest, "could not read request body", nil, err)
		return false
	}
	if len(body) > maxBodyBytes {
		s.writeAPIError(w, r, http.StatusRequestEntityTooLarge, KindBadRequest, "request body too large", nil, nil)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.writeAPIError(w, r, http.StatusBadRequest, KindBadRequest, "invalid JSON body", []string{err.Error()}, err)
		return false
	}
	return true
}

// intParam reads an optional integer query parameter.
func (s *Server) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.writeAPIError(w, r, http.StatusBadRequest, KindBadRequest,
			fmt.Sprintf("query parameter %s must be an integer", name), nil, err)
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
