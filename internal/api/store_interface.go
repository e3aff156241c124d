package api

import "context"

// KV is the storage contract shared by the in-memory and SQLite stores.
// Get returns nil data and no error for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
