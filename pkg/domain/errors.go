package domain

import "errors"

// ErrNodeNotFound is returned when a class key is not registered.
var ErrNodeNotFound = errors.New("node not found")

// ErrCacheMiss is returned by result caches when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ErrInvalidInput is returned when a node receives a value it cannot use.
var ErrInvalidInput = errors.New("invalid input")
