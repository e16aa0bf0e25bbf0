package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/nodes"
	"github.com/agavesunset/agave/pkg/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize caps request bodies. Expressions are further limited by the
// host's input sanitizer.
const maxBodySize = 1 << 20

// Server exposes a Host over HTTP.
type Server struct {
	Host    *agave.Host
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures the handler returned by NewHandler.
type Option func(*Server)

// WithMetrics mounts a Prometheus handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for a host.
func NewHandler(host *agave.Host, opts ...Option) http.Handler {
	s := &Server{Host: host, Logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/object_info", s.GetObjectInfo)
	r.Get("/object_info/{class}", s.GetObjectInfo)
	r.Post("/nodes/{class}", s.ExecuteNode)
	r.Post("/evaluate", s.Evaluate)
	r.Get("/cache", s.ListCache)
	r.Delete("/cache/{key}", s.DeleteCache)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.Logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"app":     "agave-http",
		"version": strings.TrimSpace(agave.Version),
		"nodes":   len(s.Host.Catalog()),
	}
	if s.Host.Name != "" {
		resp["host"] = s.Host.Name
	}
	writeJSON(w, http.StatusOK, resp, s.Logger)
}

// GetObjectInfo handles GET /object_info and GET /object_info/{class}.
func (s *Server) GetObjectInfo(w http.ResponseWriter, r *http.Request) {
	info := s.Host.ObjectInfo()
	class := chi.URLParam(r, "class")
	if class == "" {
		writeJSON(w, http.StatusOK, info, s.Logger)
		return
	}
	entry, ok := info[class]
	if !ok {
		s.fail(w, r, "object_info", domain.ErrNodeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{class: entry}, s.Logger)
}

// ExecuteNode handles the POST /nodes/{class} request. The body is a
// domain.Request: {"inputs": {...}, "hidden": {...}}.
func (s *Server) ExecuteNode(w http.ResponseWriter, r *http.Request) {
	var req domain.Request
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, "execute", err)
		return
	}
	if req.Inputs == nil {
		req.Inputs = map[string]any{}
	}

	out, err := s.Host.Execute(r.Context(), chi.URLParam(r, "class"), req)
	if err != nil {
		s.fail(w, r, "execute", err)
		return
	}
	writeJSON(w, http.StatusOK, out, s.Logger)
}

// EvaluateRequest is the body of POST /evaluate. Workflow and Prompt are the
// optional hidden inputs used to resolve NodeName.widget references.
type EvaluateRequest struct {
	Expression string         `json:"expression"`
	Bindings   map[string]any `json:"bindings,omitempty"`
	Workflow   map[string]any `json:"workflow,omitempty"`
	Prompt     map[string]any `json:"prompt,omitempty"`
}

// EvaluateResponse carries both numeric views of a result.
type EvaluateResponse struct {
	Int   int64   `json:"int"`
	Float float64 `json:"float"`
	Value any     `json:"value"`
}

// Evaluate handles the POST /evaluate request.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, "evaluate", err)
		return
	}

	var resolver expr.FieldResolver
	if body.Workflow != nil || body.Prompt != nil {
		snap, err := workflow.FromHidden(body.Workflow, body.Prompt)
		if err != nil {
			s.fail(w, r, "evaluate", errors.Join(domain.ErrInvalidInput, err))
			return
		}
		resolver = snap
	}

	res, err := s.Host.Evaluate(r.Context(), body.Expression, expr.Bindings(body.Bindings), resolver)
	if err != nil {
		s.fail(w, r, "evaluate", err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Int:   res.Int(),
		Float: res.Float(),
		Value: res.Value.Interface(),
	}, s.Logger)
}

// ListCache handles the GET /cache request.
func (s *Server) ListCache(w http.ResponseWriter, r *http.Request) {
	cache := s.Host.Cache()
	if cache == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false, "keys": []string{}}, s.Logger)
		return
	}
	keys, err := cache.List(r.Context())
	if err != nil {
		s.fail(w, r, "cache", err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"enabled": true, "keys": keys}, s.Logger)
}

// DeleteCache handles the DELETE /cache/{key} request.
func (s *Server) DeleteCache(w http.ResponseWriter, r *http.Request) {
	cache := s.Host.Cache()
	if cache == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := cache.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.fail(w, r, "cache", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.ErrorContext(r.Context(), "request failed", "op", op, "err", err)
	} else {
		s.Logger.DebugContext(r.Context(), "request rejected", "op", op, "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()}, s.Logger)
}

// statusFor maps host errors to HTTP status codes.
func statusFor(err error) int {
	var exprErr *expr.Error
	switch {
	case errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &exprErr), errors.Is(err, expr.ErrSyntax),
		errors.Is(err, nodes.ErrExpression), errors.Is(err, nodes.ErrEmptyExpression),
		errors.Is(err, nodes.ErrDivisionByZero), errors.Is(err, nodes.ErrModuloByZero),
		errors.Is(err, nodes.ErrMathRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeBody reads a JSON body keeping numbers as json.Number so integer
// widgets stay integers. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
