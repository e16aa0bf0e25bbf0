// Package middleware wraps result caches with extra behaviour, such as
// encryption at rest, without the backends knowing about it.
package middleware

import "github.com/agavesunset/agave/pkg/ports"

// Middleware allows wrapping a ResultCache to add behavior.
type Middleware func(ports.ResultCache) ports.ResultCache

// Chain applies middlewares so that the first one is the outermost.
func Chain(cache ports.ResultCache, mws ...Middleware) ports.ResultCache {
	for i := len(mws) - 1; i >= 0; i-- {
		cache = mws[i](cache)
	}
	return cache
}
