// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package server exposes the dashboard HTTP API over the task engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/tadafuq/workflow-builder/internal/engine"
	"github.com/tadafuq/workflow-builder/internal/store"
	"github.com/tadafuq/workflow-builder/pkg/types"
)

// Server wires the engine and store into an HTTP API.
type Server struct {
	Engine *engine.Engine
	Store  *store.Store
	Cfg    types.ServerConfig
	Log    zerolog.Logger
}

// New builds a Server.
func New(e *engine.Engine, st *store.Store, cfg types.ServerConfig, log zerolog.Logger) *Server {
	return &Server{Engine: e, Store: st, Cfg: cfg, Log: log}
}

// Router assembles the chi router with logging and rate limiting.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	limit := s.Cfg.RateLimit
	if limit <= 0 {
		limit = 120
	}
	r.Use(httprate.LimitByIP(limit, time.Minute))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks/{id}", s.handleGetTask)
		r.Post("/tasks/{id}/run", s.handleRunTask)

		r.Get("/workflows", s.handleListWorkflows)
		r.Post("/workflows/{name}/run", s.handleRunWorkflow)
	})

	return r
}

// Run serves the API until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.Cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Info().Str("addr", addr).Msg("dashboard API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := types.TaskStatus(r.URL.Query().Get("status"))
	tasks, err := s.Store.ListTasks(r.Context(), status)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// createTaskRequest is the POST /api/tasks body.
type createTaskRequest struct {
	Type        types.TaskType  `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Input       types.TaskInput `json:"input_data"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !types.ValidTaskTypes[req.Type] {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid task type"))
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("title is required"))
		return
	}
	if req.Input == nil {
		req.Input = types.TaskInput{}
	}

	ctx := r.Context()
	now := time.Now().UTC()
	id, err := s.Store.NextTaskID(ctx, now)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	t := &types.Task{
		ID:          id,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Input:       req.Input,
		Status:      types.StatusPending,
		CreatedAt:   now,
	}
	if err := s.Store.CreateTask(ctx, t); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.Store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRunTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	done, err := s.Engine.RunTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeStoreError(w, err)
			return
		}
		// Execution failure: the task record carries the error detail.
		if done != nil {
			writeJSON(w, http.StatusOK, done)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	ws, err := s.Store.ListWorkflows(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ws == nil {
		ws = []types.Workflow{}
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleRunWorkflow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	summary, err := s.Engine.RunWorkflow(r.Context(), name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"completed": summary.Completed,
		"failed":    summary.Failed,
	})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
