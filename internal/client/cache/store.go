// Package cache implements the durable local cache: a key-addressable store
// of opaque serialized blobs that survives process restarts. It holds the
// journal snapshot plus session metadata (token, user profile) and carries
// no logic of its own.
package cache

import "context"

// Store is a key→blob persistent store.
//
// Contract:
//   - Read returns (nil, nil) when the key is absent.
//   - Write replaces the value wholesale.
//   - Delete is idempotent.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	WriteAll(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
