package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Fixed keys of the three persisted session entries.
const (
	CartKey      = "amethystShopCart"
	AuthUserKey  = "amethystShopAuthUser"
	SortOrderKey = "amethystShopProductSortOrder"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrCorrupt  = errors.New("corrupt stored value")
)

// KeyValueStore is the persistence boundary for per-session state. Values are
// opaque blobs, rewritten in full on every write.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is idempotent: deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// SessionKey namespaces a fixed key under a session id.
func SessionKey(sessionID, key string) string {
	return fmt.Sprintf("%s:%s", sessionID, key)
}

// LoadJSON reads key and decodes it into dst. It reports ErrNotFound when the
// key is absent and a wrapped ErrCorrupt when the stored bytes do not decode.
func LoadJSON(ctx context.Context, kv KeyValueStore, key string, dst any) error {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func SaveJSON(ctx context.Context, kv KeyValueStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}
