// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the rendered-page cache: an in-memory TTL cache by
// default, or Redis when a URL is configured.
package cache

import (
	"context"
	"time"
)

// Cache is the page cache interface. All implementations must be thread-safe.
// Values are []byte so in-memory and Redis backends are interchangeable.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error is an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrCacheMiss indicates the key was not found or has expired.
const ErrCacheMiss Error = "cache miss"

// Options configures cache creation.
type Options struct {
	// RedisURL selects the Redis backend when non-empty
	// (e.g. redis://localhost:6379/0).
	RedisURL string

	// Prefix is prepended to all keys on the Redis backend.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration
}

// New creates a cache from the options: Redis when RedisURL is set, otherwise
// in-memory.
func New(opts Options) (Cache, error) {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	if opts.RedisURL != "" {
		return NewRedisCache(opts)
	}
	return NewMemoryCache(opts.DefaultTTL), nil
}
