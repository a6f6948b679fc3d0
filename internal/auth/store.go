package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/storage"
	"go.uber.org/zap"
)

// Store tracks the single signed-in identity of a session. There is no
// credential check: any email signs in, and the password is ignored.
type Store struct {
	mu     sync.RWMutex
	kv     storage.KeyValueStore
	key    string
	logger *zap.Logger

	user    *domain.AuthUser
	loading bool

	// serializes loads; held across the storage read
	loadMu sync.Mutex
}

func NewStore(kv storage.KeyValueStore, sessionID string, logger *zap.Logger) *Store {
	return &Store{
		kv:      kv,
		key:     storage.SessionKey(sessionID, storage.AuthUserKey),
		logger:  logger,
		loading: true,
	}
}

// Load reads the persisted user. A corrupt entry is removed and the session
// starts signed out. Any other read error is returned and the store keeps
// loading, so a later Load retries.
func (s *Store) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if !s.IsLoading() {
		return nil
	}

	var user domain.AuthUser
	err := storage.LoadJSON(ctx, s.kv, s.key, &user)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("discarding stored user", zap.String("key", s.key), zap.Error(err))
		if errDelete := s.kv.Delete(ctx, s.key); errDelete != nil {
			s.logger.Warn("failed to delete stored user", zap.Error(errDelete))
		}
	default:
		return fmt.Errorf("load user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a stored null decodes to the zero user
	if err == nil && user.Email != "" {
		s.user = &user
	}
	s.loading = false
	return nil
}

// Login signs in as email. The password is accepted and ignored.
func (s *Store) Login(ctx context.Context, email, _ string) error {
	return s.signIn(ctx, email)
}

// Register behaves exactly like Login: create and immediately authenticate.
func (s *Store) Register(ctx context.Context, email, _ string) error {
	return s.signIn(ctx, email)
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear stored user: %w", err)
	}
	return nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *domain.AuthUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading is true until the initial read of the persisted user completes.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) signIn(ctx context.Context, email string) error {
	if email == "" {
		return ErrCredentialsRequired
	}
	user := domain.AuthUser{Email: email}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	if err := storage.SaveJSON(ctx, s.kv, s.key, user); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}
