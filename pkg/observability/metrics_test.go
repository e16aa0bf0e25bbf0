package observability_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeEnd(ctx, &domain.NodeEvent{Class: "MathAgaveSunset", Duration: time.Millisecond})
	hooks.OnNodeEnd(ctx, &domain.NodeEvent{Class: "MathAgaveSunset", Err: fmt.Errorf("wrapped: %w", expr.ErrSyntax)})
	hooks.OnNodeEnd(ctx, &domain.NodeEvent{Class: "MathAgaveSunset", Cached: true})
	hooks.OnCacheHit(ctx, &domain.NodeEvent{Class: "MathAgaveSunset"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Executions.WithLabelValues("MathAgaveSunset", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("MathAgaveSunset", "syntax_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("MathAgaveSunset")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `agave_cache_hits_total{class="MathAgaveSunset"} 1`)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("x: %w", domain.ErrInvalidInput), "invalid_input"},
		{&expr.Error{Kind: expr.ErrNameNotFound, Pos: 0, Msg: "Name not found: d"}, "expression_error"},
		{expr.ErrSyntax, "syntax_error"},
		{context.DeadlineExceeded, "canceled"},
		{fmt.Errorf("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, observability.Outcome(tt.err))
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger).Merge(observability.NewMetrics().Hooks())
	ctx := context.Background()

	hooks.OnNodeStart(ctx, &domain.NodeEvent{Class: "Show_AgaveSunset", UniqueID: "12"})
	hooks.OnNodeEnd(ctx, &domain.NodeEvent{Class: "Show_AgaveSunset", Err: fmt.Errorf("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "msg=node_start")
	assert.Contains(t, lines[0], "unique_id=12")
	assert.Contains(t, lines[1], "level=WARN")
	assert.Contains(t, lines[1], "error=boom")
}
