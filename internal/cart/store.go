package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Store is one session's shopping cart. Every mutation rewrites the whole
// list to the key-value store once the initial load has happened.
type Store struct {
	mu     sync.Mutex
	kv     storage.KeyValueStore
	key    string
	logger *zap.Logger

	items  []domain.CartItem
	open   bool
	loaded bool

	// serializes loads; held across the storage read
	loadMu sync.Mutex
}

func NewStore(kv storage.KeyValueStore, sessionID string, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		key:    storage.SessionKey(sessionID, storage.CartKey),
		logger: logger,
	}
}

// Load reads the persisted cart. A missing or malformed entry leaves the cart
// empty and completes the load. Any other read error is returned and the
// store stays unloaded, so nothing is persisted until a later Load succeeds.
func (s *Store) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.isLoaded() {
		return nil
	}

	var items []domain.CartItem
	err := storage.LoadJSON(ctx, s.kv, s.key, &items)
	switch {
	case err == nil:
		items = sanitize(items)
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("discarding stored cart", zap.String("key", s.key), zap.Error(err))
		items = nil
	default:
		return fmt.Errorf("load cart: %w", err)
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Store) isLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// AddToCart increments the quantity of an existing entry for the product or
// appends a new one. Quantity has no upper bound but must be positive.
func (s *Store) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(product.ID); idx >= 0 {
		s.items[idx].Quantity += quantity
	} else {
		s.items = append(s.items, domain.CartItem{Product: product, Quantity: quantity})
	}
	return s.persist(ctx)
}

// RemoveFromCart deletes the entry for productID. Absent entries are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(productID)
	return s.persist(ctx)
}

// UpdateQuantity sets the quantity for productID. A quantity of zero or less
// removes the entry.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(productID)
	} else if idx := s.indexOf(productID); idx >= 0 {
		s.items[idx].Quantity = quantity
	}
	return s.persist(ctx)
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.persist(ctx)
}

// Items returns a copy of the cart contents in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := slices.Clone(s.items)
	if items == nil {
		items = []domain.CartItem{}
	}
	return items
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ItemCount(s.items)
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPrice(s.items)
}

// Open, Close and Toggle drive the cart drawer. The flag is not persisted.
func (s *Store) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *Store) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Store) indexOf(productID int64) int {
	return slices.IndexFunc(s.items, func(item domain.CartItem) bool {
		return item.ID == productID
	})
}

func (s *Store) remove(productID int64) {
	s.items = slices.DeleteFunc(s.items, func(item domain.CartItem) bool {
		return item.ID == productID
	})
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) error {
	if !s.loaded {
		return nil
	}
	items := s.items
	if items == nil {
		items = []domain.CartItem{}
	}
	if err := storage.SaveJSON(ctx, s.kv, s.key, items); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// sanitize enforces the cart invariants on data read back from storage:
// entries with quantity below one are dropped and duplicate product ids are
// merged into the first occurrence.
func sanitize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
