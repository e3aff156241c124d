package api

import (
	"context"

	"github.com/soaringjerry/tuneup/internal/services"
)

// DefaultStateKey is the key the assessment document is stored under.
const DefaultStateKey = "talent-assessment-v1"

type stateStoreAdapter struct {
	store KV
	key   string
}

// NewStateStore binds one key of store to the services.StateStore contract.
func NewStateStore(store KV, key string) services.StateStore {
	if key == "" {
		key = DefaultStateKey
	}
	return &stateStoreAdapter{store: store, key: key}
}

func (a *stateStoreAdapter) Load(ctx context.Context) ([]byte, error) {
	return a.store.Get(ctx, a.key)
}

func (a *stateStoreAdapter) Save(ctx context.Context, data []byte) error {
	return a.store.Put(ctx, a.key, data)
}

func (a *stateStoreAdapter) Clear(ctx context.Context) error {
	return a.store.Delete(ctx, a.key)
}
