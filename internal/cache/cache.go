// Package cache holds short-lived copies of expensive read models, currently the dashboard.
package cache

import (
	"context"
	"time"
)

// DashboardKey is the key of the cached dashboard aggregate
const DashboardKey = "equirecords:dashboard"

// Cache stores JSON-encoded values by key
type Cache interface {
	// Get decodes the value at key into dest and reports whether it was present
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Noop is the cache used when no Redis address is configured. It never hits.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error               { return nil }
func (Noop) Ping(context.Context) error                            { return nil }
func (Noop) Close() error                                          { return nil }
