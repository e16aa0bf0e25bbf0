package agave_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/internal/sanitize"
	"github.com/agavesunset/agave/pkg/adapters/memory"
	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/nodes"
	"github.com/agavesunset/agave/pkg/registry"
	"github.com/agavesunset/agave/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingNode counts executions and echoes its input.
type countingNode struct {
	calls    atomic.Int32
	volatile bool
}

func (n *countingNode) Spec() domain.Spec {
	return domain.Spec{
		Class:       "Counter",
		DisplayName: "Counter",
		Required: []domain.Input{
			{Name: "value", Type: domain.SocketInt, Options: map[string]any{"default": 1, "min": 0, "max": 10}},
		},
		ReturnTypes: []domain.SocketType{domain.SocketInt, domain.SocketAny},
	}
}

func (n *countingNode) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	n.calls.Add(1)
	return domain.Output{Result: []any{req.Inputs["value"], &domain.Blocker{}}}, nil
}

func (n *countingNode) IsVolatile(domain.Request) bool { return n.volatile }

func hostWith(node domain.Node, opts ...agave.Option) *agave.Host {
	reg := registry.NewRegistry()
	reg.Register(node)
	return agave.New(append([]agave.Option{agave.WithRegistry(reg)}, opts...)...)
}

func TestHost_DefaultCatalog(t *testing.T) {
	host := agave.New()

	classes := host.Registry().Classes()
	assert.Equal(t, []string{
		"CompareAgaveSunset",
		"Demux8AgaveSunset",
		"DemuxAgaveSunset",
		"MapRangeAgaveSunset",
		"MathAgaveSunset",
		"Show_AgaveSunset",
		"SwitchAgaveSunset",
		"Transforms_input_AgaveSunset",
		"calculate_AgaveSunset",
		"type_AgaveSunset",
	}, classes)

	specs := host.Catalog()
	require.Len(t, specs, len(classes))
	assert.Equal(t, "CompareAgaveSunset", specs[0].Class)

	info := host.ObjectInfo()
	math, ok := info["MathAgaveSunset"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Math_AS", math["display_name"])
}

func TestHost_ExecuteMath(t *testing.T) {
	host := agave.New()

	out, err := host.Execute(context.Background(), "MathAgaveSunset", domain.Request{
		Inputs: map[string]any{"expression": "a * 2 + b", "a": 3, "b": 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(6), 6.5}, out.Result)
}

func TestHost_Defaults(t *testing.T) {
	host := agave.New()

	// operation and expression come from widget defaults.
	out, err := host.Execute(context.Background(), "calculate_AgaveSunset", domain.Request{
		Inputs: map[string]any{"a": 1.5, "b": 2.0},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{3.5}, out.Result)

	// on_miss has no default and falls back to its first choice.
	out, err = host.Execute(context.Background(), "SwitchAgaveSunset", domain.Request{
		Inputs: map[string]any{"index": 4, "default": "fallback"},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"fallback"}, out.Result)
}

func TestHost_Validation(t *testing.T) {
	host := agave.New()

	_, err := host.Execute(context.Background(), "DemuxAgaveSunset", domain.Request{
		Inputs: map[string]any{"input": "x", "select": 12},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Len(t, schema.ValidationErrors(err), 1)

	_, err = host.Execute(context.Background(), "MathAgaveSunset", domain.Request{
		Inputs: map[string]any{"expression": 42},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = host.Execute(context.Background(), "Nope", domain.Request{})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestHost_RejectsControlCharacters(t *testing.T) {
	host := agave.New()
	ctx := context.Background()

	for _, src := range []string{"1\x002", "10\x0b5", "a\x00 + 1"} {
		_, err := host.Execute(ctx, "MathAgaveSunset", domain.Request{
			Inputs: map[string]any{"expression": src, "a": 1},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%q", src)
		assert.ErrorIs(t, err, sanitize.ErrControlCharacter, "%q", src)

		_, err = host.Evaluate(ctx, src, expr.Bindings{"a": 1}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%q", src)
	}

	_, err := host.Evaluate(ctx, "1\x002", nil, nil)
	assert.Contains(t, err.Error(), "at offset 1")
}

func TestHost_NodeErrorsKeepTheirKind(t *testing.T) {
	host := agave.New()

	_, err := host.Execute(context.Background(), "MathAgaveSunset", domain.Request{
		Inputs: map[string]any{"expression": "a / 0", "a": 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, expr.ErrDivisionByZero)
	assert.Contains(t, err.Error(), "Math_AS")
}

func TestHost_Cache(t *testing.T) {
	node := &countingNode{}
	cache := memory.NewCache()
	var hits, ends int
	host := hostWith(node,
		agave.WithCache(cache),
		agave.WithLifecycleHooks(domain.LifecycleHooks{
			OnCacheHit: func(context.Context, *domain.NodeEvent) { hits++ },
			OnNodeEnd:  func(context.Context, *domain.NodeEvent) { ends++ },
		}),
	)
	ctx := context.Background()

	first, err := host.Execute(ctx, "Counter", domain.Request{Inputs: map[string]any{"value": 3}})
	require.NoError(t, err)
	second, err := host.Execute(ctx, "Counter", domain.Request{Inputs: map[string]any{"value": json.Number("3")}})
	require.NoError(t, err)

	assert.Equal(t, int32(1), node.calls.Load(), "second call should be served from cache")
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, ends)
	assert.Equal(t, 3, first.Result[0])
	assert.Equal(t, int64(3), second.Result[0], "cached ints are coerced to the declared type")
	assert.True(t, second.Blocked(1))
	assert.Equal(t, 1, cache.Len())

	_, err = host.Execute(ctx, "Counter", domain.Request{Inputs: map[string]any{"value": 4}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), node.calls.Load())
}

func TestHost_CacheKeepsLargeInts(t *testing.T) {
	host := agave.New(agave.WithCache(memory.NewCache()))
	ctx := context.Background()
	req := domain.Request{Inputs: map[string]any{"expression": "2 ** 53 + 1"}}

	fresh, err := host.Execute(ctx, "MathAgaveSunset", req)
	require.NoError(t, err)
	cached, err := host.Execute(ctx, "MathAgaveSunset", req)
	require.NoError(t, err)

	assert.Equal(t, int64(9007199254740993), fresh.Result[0])
	assert.Equal(t, fresh.Result[0], cached.Result[0])
}

func TestHost_VolatileBypassesCache(t *testing.T) {
	node := &countingNode{volatile: true}
	cache := memory.NewCache()
	host := hostWith(node, agave.WithCache(cache))

	for range 3 {
		_, err := host.Execute(context.Background(), "Counter", domain.Request{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), node.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

func TestHost_Locker(t *testing.T) {
	node := &countingNode{}
	host := hostWith(node,
		agave.WithCache(memory.NewCache()),
		agave.WithLocker(memory.NewLocker(), time.Second),
	)
	ctx := context.Background()

	done := make(chan error, 8)
	for range 8 {
		go func() {
			_, err := host.Execute(ctx, "Counter", domain.Request{Inputs: map[string]any{"value": 5}})
			done <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-done)
	}
	assert.Equal(t, int32(1), node.calls.Load())
}

func TestHost_Hooks(t *testing.T) {
	var events []domain.EventType
	var failed error
	host := agave.New(agave.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) { events = append(events, e.Type) },
		OnNodeEnd: func(_ context.Context, e *domain.NodeEvent) {
			events = append(events, e.Type)
			failed = e.Err
		},
	}))

	_, err := host.Execute(context.Background(), "MapRangeAgaveSunset", domain.Request{
		Inputs: map[string]any{"value": 1.0, "src_min": 1.0, "src_max": 1.0},
	})
	require.Error(t, err)
	assert.Equal(t, []domain.EventType{domain.EventNodeStart, domain.EventNodeEnd}, events)
	assert.ErrorIs(t, failed, nodes.ErrEmptySourceRange)
	assert.ErrorIs(t, err, nodes.ErrEmptySourceRange)
}

func TestHost_Evaluate(t *testing.T) {
	host := agave.New()
	ctx := context.Background()

	r, err := host.Evaluate(ctx, "max(a, 2) ** 2", expr.Bindings{"a": 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), r.Int())

	resolver := expr.ResolverFunc(func(node, field string) (any, error) {
		return 20, nil
	})
	r, err = host.Evaluate(ctx, "KSampler.steps / 4", nil, resolver)
	require.NoError(t, err)
	assert.Equal(t, 5.0, r.Float())

	t.Setenv("AGAVE_MAX_INPUT_SIZE", "4")
	_, err = host.Evaluate(ctx, "1 + 2 + 3", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = host.Evaluate(canceled, "1", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFingerprint(t *testing.T) {
	a, err := agave.Fingerprint("X", domain.Request{Inputs: map[string]any{"a": 1, "b": "x"}})
	require.NoError(t, err)
	b, err := agave.Fingerprint("X", domain.Request{Inputs: map[string]any{"b": "x", "a": 1}})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := agave.Fingerprint("Y", domain.Request{Inputs: map[string]any{"a": 1, "b": "x"}})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := agave.Fingerprint("X", domain.Request{
		Inputs: map[string]any{"a": 1, "b": "x"},
		Hidden: domain.Hidden{UniqueID: "7"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, a, d)

	_, err = agave.Fingerprint("X", domain.Request{Inputs: map[string]any{"f": func() {}}})
	assert.Error(t, err)
}
