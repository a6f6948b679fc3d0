package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/auth"
	"github.com/fjod/go_cart/storefront-service/internal/cart"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/ordering"
	"github.com/fjod/go_cart/storefront-service/internal/storage"
	"go.uber.org/zap"
)

// Session bundles the stores of one browser session.
type Session struct {
	ID    string
	Cart  *cart.Store
	Auth  *auth.Store
	Order *ordering.Store

	mu       sync.Mutex
	board    *ordering.Board
	lastSeen time.Time
}

func newSession(id string, kv storage.KeyValueStore, logger *zap.Logger, now time.Time) *Session {
	logger = logger.With(zap.String("session_id", id))
	return &Session{
		ID:       id,
		Cart:     cart.NewStore(kv, id, logger),
		Auth:     auth.NewStore(kv, id, logger),
		Order:    ordering.NewStore(kv, id, logger),
		lastSeen: now,
	}
}

// load reads every store's persisted state. Stores that already loaded are
// skipped, so a store that hit a read error is retried on the next call.
func (s *Session) load(ctx context.Context) error {
	return errors.Join(
		s.Cart.Load(ctx),
		s.Auth.Load(ctx),
		s.Order.Load(ctx),
	)
}

// ResetBoard starts a fresh reorder board from products arranged by the
// stored order, discarding any unsaved drags.
func (s *Session) ResetBoard(products []domain.Product) *ordering.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = ordering.NewBoard(s.Order.Apply(products))
	return s.board
}

// Board returns the current reorder board, or nil if none was started.
func (s *Session) Board() *ordering.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
