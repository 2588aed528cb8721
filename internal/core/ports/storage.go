package ports

import "context"

// KeyValueStore is the persisted storage of one browser: a flat string
// key/value space. Get reports found=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// StorageProvider hands out the KeyValueStore scoped to a browser id.
type StorageProvider interface {
	Scope(browserID string) KeyValueStore
}
