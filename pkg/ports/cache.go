package ports

import (
	"context"

	"github.com/agavesunset/agave/pkg/domain"
)

// ResultCache stores node outputs by execution fingerprint so that a node
// run with the same inputs is not executed twice.
type ResultCache interface {
	// Get returns the cached output for key.
	// Returns domain.ErrCacheMiss if nothing is stored under key.
	Get(ctx context.Context, key string) (domain.Output, error)

	// Set stores the output under key, replacing any previous value.
	Set(ctx context.Context, key string, out domain.Output) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently held by the cache.
	List(ctx context.Context) ([]string, error)
}
