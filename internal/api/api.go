// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package api serves the castdisplay HTTP control API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/internal/journal"
	"github.com/gogpu/remotedisplay/session"
)

// defaultSessionLimit caps GET /sessions without a limit parameter.
const defaultSessionLimit = 50

// Controller is the part of session.Manager the API drives.
type Controller interface {
	Status() session.Status
	ChangeColor() error
	Detach() error
}

// History lists recorded sessions.
type History interface {
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables GET /sessions.
func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// WithSink mounts a receiver endpoint at GET /sink.
func WithSink(h http.Handler) Option {
	return func(s *Server) { s.sink = h }
}

// Server routes API requests.
type Server struct {
	ctrl    Controller
	history History
	sink    http.Handler
	router  *chi.Mux
}

// New creates the API for ctrl.
func New(ctrl Controller, opts ...Option) *Server {
	s := &Server{ctrl: ctrl}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/color", s.handleColor)
	r.Post("/detach", s.handleDetach)
	if s.history != nil {
		r.Get("/sessions", s.handleSessions)
	}
	if s.sink != nil {
		r.Handle("/sink", s.sink)
	}

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		remotedisplay.Logger().Debug("api: request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	State         string     `json:"state"`
	SessionID     string     `json:"session_id,omitempty"`
	DisplayID     string     `json:"display_id,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	Width         int        `json:"width,omitempty"`
	Height        int        `json:"height,omitempty"`
	Config        string     `json:"config,omitempty"`
	Frames        uint64     `json:"frames"`
	Presented     uint64     `json:"presented"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	UptimeSeconds float64    `json:"uptime_seconds"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": remotedisplay.Version})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toStatusResponse(s.ctrl.Status()))
}

func toStatusResponse(st session.Status) StatusResponse {
	resp := StatusResponse{
		State:         st.State.String(),
		SessionID:     st.SessionID,
		DisplayID:     st.DisplayID,
		DisplayName:   st.DisplayName,
		Width:         st.Width,
		Height:        st.Height,
		Config:        st.Config,
		Frames:        st.Frames,
		Presented:     st.Presented,
		UptimeSeconds: st.Uptime.Seconds(),
	}
	if !st.Started.IsZero() {
		started := st.Started
		resp.StartedAt = &started
	}
	return resp
}

func (s *Server) handleColor(w http.ResponseWriter, _ *http.Request) {
	err := s.ctrl.ChangeColor()
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, session.ErrIdle):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, session.ErrColorUnsupported):
		writeError(w, http.StatusNotImplemented, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleDetach(w http.ResponseWriter, _ *http.Request) {
	if err := s.ctrl.Detach(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		remotedisplay.Logger().Warn("api: encode response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

var _ Controller = (*session.Manager)(nil)
