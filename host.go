package agave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/agavesunset/agave/internal/sanitize"
	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/nodes"
	"github.com/agavesunset/agave/pkg/ports"
	"github.com/agavesunset/agave/pkg/registry"
	"github.com/agavesunset/agave/pkg/schema"
)

// DefaultLockTTL bounds how long one host may hold an execution lock.
const DefaultLockTTL = 30 * time.Second

// Host is the high-level entry point of the library. It executes registered
// node classes the way the node-graph host does: defaults, validation,
// caching and lifecycle hooks.
type Host struct {
	registry *registry.Registry
	cache    ports.ResultCache
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	Name     string
}

// Option defines a functional option for configuring the Host.
type Option func(*Host)

// WithRegistry replaces the built-in node catalogue.
func WithRegistry(r *registry.Registry) Option {
	return func(h *Host) {
		h.registry = r
	}
}

// WithCache enables result caching for non-volatile nodes.
func WithCache(c ports.ResultCache) Option {
	return func(h *Host) {
		h.cache = c
	}
}

// WithLocker serializes executions of the same fingerprint across hosts
// sharing a cache. It has no effect without WithCache.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(h *Host) {
		h.locker = l
		h.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(h *Host) {
		h.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the host.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithName labels the host in logs.
func WithName(name string) Option {
	return func(h *Host) {
		h.Name = name
	}
}

// New initializes a Host. By default every built-in node is registered and
// nothing is cached.
func New(opts ...Option) *Host {
	h := &Host{lockTTL: DefaultLockTTL}
	for _, opt := range opts {
		opt(h)
	}

	if h.registry == nil {
		h.registry = registry.NewRegistry()
		nodes.Register(h.registry)
	}
	if h.lockTTL <= 0 {
		h.lockTTL = DefaultLockTTL
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if h.Name != "" {
		h.logger = h.logger.With("host", h.Name)
	}
	return h
}

// Registry returns the node catalogue the host executes from.
func (h *Host) Registry() *registry.Registry {
	return h.registry
}

// Cache returns the result cache, or nil when caching is disabled.
func (h *Host) Cache() ports.ResultCache {
	return h.cache
}

// Execute runs one node class. Missing widget inputs take their declared
// defaults, string inputs are checked for control characters and all inputs are validated against
// their socket types before the node runs.
func (h *Host) Execute(ctx context.Context, class string, req domain.Request) (domain.Output, error) {
	node, err := h.registry.Lookup(class)
	if err != nil {
		return domain.Output{}, err
	}
	spec := node.Spec()

	inputs, err := prepareInputs(spec, req.Inputs)
	if err != nil {
		return domain.Output{}, err
	}
	if err := schema.ValidateRequest(spec, inputs); err != nil {
		return domain.Output{}, err
	}
	req.Inputs = inputs

	start := time.Now()
	event := &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: start, Type: domain.EventNodeStart},
		Class:     class,
		UniqueID:  req.Hidden.UniqueID,
	}
	if h.hooks.OnNodeStart != nil {
		h.hooks.OnNodeStart(ctx, event)
	}

	out, cached, err := h.run(ctx, node, req)

	end := &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnd},
		Class:     class,
		UniqueID:  req.Hidden.UniqueID,
		Duration:  time.Since(start),
		Cached:    cached,
		Err:       err,
	}
	if h.hooks.OnNodeEnd != nil {
		h.hooks.OnNodeEnd(ctx, end)
	}

	if err != nil {
		h.logger.DebugContext(ctx, "node failed", "class", class, "error", err)
		return domain.Output{}, err
	}
	h.logger.DebugContext(ctx, "node executed", "class", class, "cached", cached, "duration", end.Duration)
	return out, nil
}

func (h *Host) run(ctx context.Context, node domain.Node, req domain.Request) (domain.Output, bool, error) {
	spec := node.Spec()
	if h.cache == nil || IsVolatile(node, req) {
		out, err := h.invoke(ctx, node, req)
		return out, false, err
	}

	key, err := Fingerprint(spec.Class, req)
	if err != nil {
		// Inputs that cannot be encoded are simply not cached.
		h.logger.DebugContext(ctx, "skipping cache", "class", spec.Class, "error", err)
		out, err := h.invoke(ctx, node, req)
		return out, false, err
	}

	if out, ok := h.lookup(ctx, spec, key, req); ok {
		return out, true, nil
	}

	if h.locker != nil {
		unlock, err := h.locker.Lock(ctx, key, h.lockTTL)
		if err != nil {
			return domain.Output{}, false, fmt.Errorf("failed to lock %s: %w", spec.Class, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				h.logger.WarnContext(ctx, "failed to release lock", "class", spec.Class, "error", err)
			}
		}()
		// Another host may have finished while we waited.
		if out, ok := h.lookup(ctx, spec, key, req); ok {
			return out, true, nil
		}
	}

	out, err := h.invoke(ctx, node, req)
	if err != nil {
		return domain.Output{}, false, err
	}
	if err := h.cache.Set(ctx, key, out); err != nil {
		h.logger.WarnContext(ctx, "failed to cache output", "class", spec.Class, "error", err)
	}
	return out, false, nil
}

func (h *Host) lookup(ctx context.Context, spec domain.Spec, key string, req domain.Request) (domain.Output, bool) {
	out, err := h.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			h.logger.WarnContext(ctx, "cache lookup failed", "class", spec.Class, "error", err)
		}
		return domain.Output{}, false
	}
	out, err = out.Coerce(spec.ReturnTypes)
	if err != nil {
		h.logger.WarnContext(ctx, "discarding cached output", "class", spec.Class, "error", err)
		return domain.Output{}, false
	}

	if h.hooks.OnCacheHit != nil {
		h.hooks.OnCacheHit(ctx, &domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCacheHit},
			Class:     spec.Class,
			UniqueID:  req.Hidden.UniqueID,
			Cached:    true,
		})
	}
	return out, true
}

func (h *Host) invoke(ctx context.Context, node domain.Node, req domain.Request) (domain.Output, error) {
	if err := ctx.Err(); err != nil {
		return domain.Output{}, err
	}
	spec := node.Spec()
	out, err := node.Execute(ctx, req)
	if err != nil {
		return domain.Output{}, fmt.Errorf("%s: %w", spec.DisplayName, err)
	}
	if len(out.Result) != len(spec.ReturnTypes) {
		return domain.Output{}, fmt.Errorf("%s returned %d values, declares %d", spec.Class, len(out.Result), len(spec.ReturnTypes))
	}
	return out, nil
}

// prepareInputs copies inputs, fills widget defaults and checks strings.
// A COMBO without a declared default falls back to its first choice.
func prepareInputs(spec domain.Spec, given map[string]any) (map[string]any, error) {
	inputs := make(map[string]any, len(given))
	for k, v := range given {
		inputs[k] = v
	}

	for _, in := range spec.Inputs() {
		if _, ok := inputs[in.Name]; !ok {
			if def, ok := in.Default(); ok {
				inputs[in.Name] = def
			} else if in.Type == domain.SocketCombo && len(in.Choices) > 0 {
				inputs[in.Name] = in.Choices[0]
			}
		}
		if s, ok := inputs[in.Name].(string); ok && in.Type == domain.SocketString {
			if err := sanitize.Check(s); err != nil {
				return nil, fmt.Errorf("%w: input %q: %w", domain.ErrInvalidInput, in.Name, err)
			}
		}
	}
	return inputs, nil
}

// IsVolatile reports whether a node's result may differ between runs with
// identical inputs.
func IsVolatile(node domain.Node, req domain.Request) bool {
	v, ok := node.(domain.VolatileNode)
	return ok && v.IsVolatile(req)
}

// Evaluate runs an expression directly against bindings, resolving
// NodeName.widget references through resolver when it is not nil.
func (h *Host) Evaluate(ctx context.Context, expression string, bindings expr.Bindings, resolver expr.FieldResolver) (expr.Result, error) {
	if err := ctx.Err(); err != nil {
		return expr.Result{}, err
	}
	if err := sanitize.Check(expression); err != nil {
		return expr.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	src := expression

	bound := make(expr.Bindings, len(bindings))
	for name, v := range bindings {
		bound[name] = nodes.Composite(v)
	}

	var opts []expr.Option
	if resolver != nil {
		opts = append(opts, expr.WithResolver(resolver))
	}
	r, err := expr.Evaluate(src, bound, opts...)
	if err != nil {
		h.logger.DebugContext(ctx, "expression failed", "expression", strings.TrimSpace(src), "error", err)
		return expr.Result{}, err
	}
	return r, nil
}

// Catalog returns the specs of every registered node, sorted by class.
func (h *Host) Catalog() []domain.Spec {
	classes := h.registry.Classes()
	specs := make([]domain.Spec, 0, len(classes))
	for _, class := range classes {
		node, err := h.registry.Lookup(class)
		if err != nil {
			continue
		}
		specs = append(specs, node.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Class < specs[j].Class })
	return specs
}

// ObjectInfo renders the catalogue in the host's object_info shape, keyed by class.
func (h *Host) ObjectInfo() map[string]any {
	info := make(map[string]any)
	for _, spec := range h.Catalog() {
		info[spec.Class] = spec.ObjectInfo()
	}
	return info
}
