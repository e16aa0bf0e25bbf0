package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by host lifecycle hooks.
type Metrics struct {
	Executions *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	CacheHits  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agave_node_executions_total",
				Help: "Total number of node executions by class and outcome",
			},
			[]string{"class", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agave_node_duration_seconds",
				Help:    "Duration of node executions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"class"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agave_cache_hits_total",
				Help: "Total number of node results served from cache",
			},
			[]string{"class"},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Executions, m.Duration, m.CacheHits)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records every execution end and cache hit.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnd: func(_ context.Context, e *domain.NodeEvent) {
			m.Executions.WithLabelValues(e.Class, Outcome(e.Err)).Inc()
			if !e.Cached {
				m.Duration.WithLabelValues(e.Class).Observe(e.Duration.Seconds())
			}
		},
		OnCacheHit: func(_ context.Context, e *domain.NodeEvent) {
			m.CacheHits.WithLabelValues(e.Class).Inc()
		},
	}
}

// Outcome classifies an execution error for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, expr.ErrSyntax):
		return "syntax_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	var ee *expr.Error
	if errors.As(err, &ee) {
		return "expression_error"
	}
	return "error"
}

// LogHooks logs node executions at debug level and failures at warn level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_start", "class", e.Class, "unique_id", e.UniqueID)
		},
		OnNodeEnd: func(ctx context.Context, e *domain.NodeEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "node_end", "class", e.Class, "duration", e.Duration, "error", e.Err)
				return
			}
			logger.DebugContext(ctx, "node_end", "class", e.Class, "duration", e.Duration, "cached", e.Cached)
		},
		OnCacheHit: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "cache_hit", "class", e.Class)
		},
	}
}
