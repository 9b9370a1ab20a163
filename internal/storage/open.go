package storage

import (
	"context"
	"fmt"
)

// Open returns the backend named by kind: "memory", "file" (at path) or "redis" (at
// redisURL). The returned close function releases the backend's resources.
func Open(ctx context.Context, kind string, path string, redisURL string) (Storage, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case "memory":
		return NewMemory(), noop, nil
	case "file":
		return NewFile(path), noop, nil
	case "redis":
		r, err := NewRedis(ctx, redisURL, "static-website:")
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
