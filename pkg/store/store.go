// Package store persists small pieces of user state, such as the discovered
// root page id, between runs.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Store is a string key/value store. Keys are case-insensitive.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, persisting it immediately.
	Set(ctx context.Context, key, value string) error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Path     string
	RedisURL string
}

// Open creates the store described by opts. An empty backend means file.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path)
	case BackendRedis:
		return NewRedisStore(opts.RedisURL)
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
