package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// ProductCache holds the last fetched product list.
type ProductCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

type MemoryCache struct {
	mu        sync.RWMutex
	products  []domain.Product
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (m *MemoryCache) GetProducts(context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.products == nil || !m.now().Before(m.expiresAt) {
		return nil, ErrCacheMiss
	}
	return slices.Clone(m.products), nil
}

func (m *MemoryCache) SetProducts(_ context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = slices.Clone(products)
	if m.products == nil {
		m.products = []domain.Product{}
	}
	m.expiresAt = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryCache) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = nil
	return nil
}
