package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/internal/config"
	"github.com/agavesunset/agave/pkg/adapters/memory"
	"github.com/agavesunset/agave/pkg/adapters/redis"
	"github.com/agavesunset/agave/pkg/observability"
	"github.com/agavesunset/agave/pkg/persistence/middleware"
	"github.com/agavesunset/agave/pkg/ports"
)

// Runtime is a configured host plus the resources behind it.
type Runtime struct {
	Host    *agave.Host
	Metrics *observability.Metrics
	Logger  *slog.Logger

	closers []func() error
}

// Close releases cache connections.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewRuntime initializes a host with standard CLI conventions: metrics are
// always collected, execution logs go to the configured logger and the
// cache backend follows cfg.Cache.Mode, sealed with AES-GCM when a cache key
// is configured.
func NewRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}

	hooks := rt.Metrics.Hooks().Merge(observability.LogHooks(logger))
	opts := []agave.Option{
		agave.WithLogger(logger),
		agave.WithLifecycleHooks(hooks),
		agave.WithName(cfg.Name),
	}

	var cache ports.ResultCache
	switch cfg.Cache.Mode {
	case config.CacheMemory:
		cache = memory.NewCache()
		if cfg.Cache.Lock {
			opts = append(opts, agave.WithLocker(memory.NewLocker(), cfg.Cache.LockTTL))
		}
	case config.CacheRedis:
		rc := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Cache.TTL),
		)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("error connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		rt.closers = append(rt.closers, rc.Close)
		cache = rc
		if cfg.Cache.Lock {
			opts = append(opts, agave.WithLocker(redis.NewLocker(rc.Client(), cfg.Redis.Prefix), cfg.Cache.LockTTL))
		}
	}

	if cache != nil {
		active, fallback, err := cfg.Cache.Keys()
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
		if active != nil {
			mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
			if err != nil {
				return nil, errors.Join(err, rt.Close())
			}
			cache = middleware.Chain(cache, mw)
		}
		opts = append(opts, agave.WithCache(cache))
	}

	rt.Host = agave.New(opts...)
	logger.Debug("Host initialized",
		"cache", cfg.Cache.Mode,
		"lock", cfg.Cache.Lock,
		"encrypted", cfg.Cache.Key != "",
		"nodes", len(rt.Host.Catalog()))
	return rt, nil
}
