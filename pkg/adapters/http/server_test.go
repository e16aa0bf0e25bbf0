package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/pkg/adapters/memory"
	"github.com/agavesunset/agave/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var decoded map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(agave.New(agave.WithName("test")))

	w, body := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, body = do(t, h, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "agave-http", body["app"])
	assert.Equal(t, strings.TrimSpace(agave.Version), body["version"])
	assert.Equal(t, "test", body["host"])
	assert.EqualValues(t, 10, body["nodes"])
}

func TestObjectInfo(t *testing.T) {
	h := NewHandler(agave.New())

	w, body := do(t, h, http.MethodGet, "/object_info", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "MathAgaveSunset")
	assert.Contains(t, body, "calculate_AgaveSunset")

	w, body = do(t, h, http.MethodGet, "/object_info/DemuxAgaveSunset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body, 1)

	w, _ = do(t, h, http.MethodGet, "/object_info/Nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecuteNode(t *testing.T) {
	h := NewHandler(agave.New())

	tests := []struct {
		name   string
		class  string
		body   string
		status int
	}{
		{"math", "MathAgaveSunset", `{"inputs": {"expression": "a + b", "a": 1, "b": 2}}`, http.StatusOK},
		{"unknown class", "Missing", `{"inputs": {}}`, http.StatusNotFound},
		{"malformed body", "MathAgaveSunset", `{"inputs":`, http.StatusBadRequest},
		{"syntax error", "MathAgaveSunset", `{"inputs": {"expression": "1 +"}}`, http.StatusUnprocessableEntity},
		{"wrong socket type", "DemuxAgaveSunset", `{"inputs": {"input": 1, "select": "two"}}`, http.StatusBadRequest},
		{"division by zero", "calculate_AgaveSunset", `{"inputs": {"a": 1, "b": 0, "operation": "div_ab", "expression": "a / b"}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, h, http.MethodPost, "/nodes/"+tt.class, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, body["error"])
			}
		})
	}

	t.Run("result shape", func(t *testing.T) {
		_, body := do(t, h, http.MethodPost, "/nodes/MathAgaveSunset", `{"inputs": {"expression": "a / b", "a": 7, "b": 2}}`)
		assert.Equal(t, []any{3.0, 3.5}, body["result"])
		assert.Equal(t, map[string]any{"value": []any{3.5}}, body["ui"])
	})
}

func TestEvaluate(t *testing.T) {
	h := NewHandler(agave.New())

	w, body := do(t, h, http.MethodPost, "/evaluate", `{"expression": "max(a, b) * 2", "bindings": {"a": 3, "b": 4.5}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 9, body["int"])
	assert.EqualValues(t, 9.0, body["float"])

	w, body = do(t, h, http.MethodPost, "/evaluate", `{"expression": "a.width", "bindings": {"a": {"samples": [1, 4, 64, 96]}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 768, body["int"])

	w, _ = do(t, h, http.MethodPost, "/evaluate", `{"expression": "unknown + 1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCacheRoutes(t *testing.T) {
	h := NewHandler(agave.New())
	w, body := do(t, h, http.MethodGet, "/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["enabled"])

	cache := memory.NewCache()
	h = NewHandler(agave.New(agave.WithCache(cache)))
	do(t, h, http.MethodPost, "/nodes/MathAgaveSunset", `{"inputs": {"expression": "1 + 1"}}`)

	w, body = do(t, h, http.MethodGet, "/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	keys, ok := body["keys"].([]any)
	require.True(t, ok)
	require.Len(t, keys, 1)

	w, _ = do(t, h, http.MethodDelete, "/cache/"+keys[0].(string), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, cache.Len())
}

func TestMetricsRoute(t *testing.T) {
	m := observability.NewMetrics()
	host := agave.New(agave.WithLifecycleHooks(m.Hooks()))
	h := NewHandler(host, WithMetrics(m.Handler()))

	do(t, h, http.MethodPost, "/nodes/MathAgaveSunset", `{"inputs": {"expression": "2 * 3"}}`)

	w, _ := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `agave_node_executions_total{class="MathAgaveSunset",outcome="ok"} 1`)

	w, _ = do(t, NewHandler(host), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(agave.New())
	w, _ := do(t, h, http.MethodOptions, "/evaluate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
