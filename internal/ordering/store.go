package ordering

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/storage"
	"go.uber.org/zap"
)

// Store holds a session's manual product order.
type Store struct {
	mu     sync.RWMutex
	kv     storage.KeyValueStore
	key    string
	logger *zap.Logger

	order  []int64
	loaded bool

	// serializes loads; held across the storage read
	loadMu sync.Mutex
}

func NewStore(kv storage.KeyValueStore, sessionID string, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		key:    storage.SessionKey(sessionID, storage.SortOrderKey),
		logger: logger,
	}
}

// Load reads the stored order. Anything that is not a list of ids is
// discarded and the order starts empty. Other read errors are returned and
// a later Load retries.
func (s *Store) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	var order []int64
	err := storage.LoadJSON(ctx, s.kv, s.key, &order)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("discarding stored sort order", zap.String("key", s.key), zap.Error(err))
		order = nil
	default:
		return fmt.Errorf("load sort order: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a save that raced ahead of the load already holds the newer order
	if !s.loaded {
		s.order = order
		s.loaded = true
	}
	return nil
}

func (s *Store) Order() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Apply arranges products by the stored order.
func (s *Store) Apply(products []domain.Product) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ApplyStoredOrder(products, s.order)
}

// Save replaces the stored order with the id sequence of products.
func (s *Store) Save(ctx context.Context, products []domain.Product) error {
	order := IDs(products)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	s.loaded = true
	if err := storage.SaveJSON(ctx, s.kv, s.key, order); err != nil {
		return fmt.Errorf("persist sort order: %w", err)
	}
	return nil
}
