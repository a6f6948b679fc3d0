package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSource struct {
	m        sync.RWMutex
	products []domain.Product
	err      error
	calls    int
}

func (m *mockSource) ListProducts(context.Context) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockSource) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *mockSource) callCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.calls
}

type mockCache struct {
	m        sync.RWMutex
	products []domain.Product
	err      error
	deleted  bool
}

func (m *mockCache) GetProducts(context.Context) ([]domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.products == nil {
		return nil, ErrCacheMiss
	}
	return m.products, nil
}

func (m *mockCache) SetProducts(_ context.Context, products []domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.products = products
	return nil
}

func (m *mockCache) Delete(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.products = nil
	m.deleted = true
	return nil
}

func (m *mockCache) cached() []domain.Product {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.products
}

func storeProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Fjallraven Backpack", Description: "Fits 15 inch laptops", Category: "men's clothing", Price: decimal.NewFromFloat(109.95)},
		{ID: 5, Title: "Dragon Bracelet", Description: "Silver chain", Category: "jewelery", Price: decimal.NewFromInt(695)},
		{ID: 9, Title: "Portable Hard Drive", Description: "USB 3.0", Category: "electronics", Price: decimal.NewFromInt(64)},
		{ID: 3, Title: "Cotton Jacket", Description: "Great outerwear", Category: "Men's Clothing", Price: decimal.NewFromFloat(55.99)},
	}
}

func TestProducts_CacheMiss_FetchesAndCaches(t *testing.T) {
	source := &mockSource{products: storeProducts()}
	cache := &mockCache{}
	sut := NewService(source, cache, zap.NewNop())

	products := sut.Products(context.Background())
	assert.Len(t, products, 4)
	assert.Equal(t, 1, source.callCount())

	assert.Len(t, cache.cached(), 4, "products were not cached")
}

func TestProducts_CacheHit(t *testing.T) {
	source := &mockSource{} // source should NOT be called
	cache := &mockCache{products: storeProducts()[:1]}
	sut := NewService(source, cache, zap.NewNop())

	products := sut.Products(context.Background())
	assert.Len(t, products, 1)
	assert.Zero(t, source.callCount())
}

func TestProducts_CacheErrorFallsBackToSource(t *testing.T) {
	source := &mockSource{products: storeProducts()}
	cache := &mockCache{err: fmt.Errorf("redis down")}
	sut := NewService(source, cache, zap.NewNop())

	assert.Len(t, sut.Products(context.Background()), 4)
}

func TestProducts_SourceErrorMaskedAsEmpty(t *testing.T) {
	source := &mockSource{err: fmt.Errorf("connection refused")}
	cache := &mockCache{}
	sut := NewService(source, cache, zap.NewNop())

	products := sut.Products(context.Background())
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.Nil(t, cache.cached())
}

func TestProducts_ReturnsIndependentCopies(t *testing.T) {
	cache := &mockCache{products: storeProducts()}
	sut := NewService(&mockSource{}, cache, zap.NewNop())

	first := sut.Products(context.Background())
	first[0], first[1] = first[1], first[0]

	second := sut.Products(context.Background())
	assert.Equal(t, int64(1), second[0].ID)
}

func TestProduct(t *testing.T) {
	sut := NewService(&mockSource{products: storeProducts()}, &mockCache{}, zap.NewNop())

	p, ok := sut.Product(context.Background(), 9)
	require.True(t, ok)
	assert.Equal(t, "Portable Hard Drive", p.Title)

	p, ok = sut.Product(context.Background(), 42)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestProduct_SourceErrorMasked(t *testing.T) {
	sut := NewService(&mockSource{err: fmt.Errorf("timeout")}, &mockCache{}, zap.NewNop())

	p, ok := sut.Product(context.Background(), 1)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestCategories_DistinctFirstSeenOrder(t *testing.T) {
	sut := NewService(&mockSource{}, &mockCache{products: storeProducts()}, zap.NewNop())

	assert.Equal(t,
		[]string{"men's clothing", "jewelery", "electronics", "Men's Clothing"},
		sut.Categories(context.Background()))
}

func TestByCategory_CaseInsensitive(t *testing.T) {
	sut := NewService(&mockSource{}, &mockCache{products: storeProducts()}, zap.NewNop())

	products, ok := sut.ByCategory(context.Background(), "MEN'S CLOTHING")
	require.True(t, ok)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(3), products[1].ID)
}

func TestByCategory_Unknown(t *testing.T) {
	sut := NewService(&mockSource{}, &mockCache{products: storeProducts()}, zap.NewNop())

	products, ok := sut.ByCategory(context.Background(), "furniture")
	assert.False(t, ok)
	assert.Empty(t, products)
}

func TestSearch(t *testing.T) {
	sut := NewService(&mockSource{}, &mockCache{products: storeProducts()}, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		query string
		ids   []int64
	}{
		{"backpack", []int64{1}},  // title
		{"OUTERWEAR", []int64{3}}, // description
		{"jewel", []int64{5}},     // category
		{"men's", []int64{1, 3}},  // category, both cases
		{"sofa", []int64{}},       // nothing
		{"", []int64{}},           // empty query matches nothing
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ids := []int64{}
			for _, p := range sut.Search(ctx, tt.query) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestInvalidate(t *testing.T) {
	cache := &mockCache{products: storeProducts()}
	source := &mockSource{products: storeProducts()[:2]}
	sut := NewService(source, cache, zap.NewNop())

	assert.Len(t, sut.Products(context.Background()), 4)

	require.NoError(t, sut.Invalidate(context.Background()))
	assert.True(t, cache.deleted)

	assert.Len(t, sut.Products(context.Background()), 2)
	assert.Equal(t, 1, source.callCount())
}

// blockingSource holds ListProducts until release is closed and reports the
// context state it saw.
type blockingSource struct {
	products []domain.Product
	entered  chan struct{}
	release  chan struct{}
	once     sync.Once
}

func newBlockingSource(products []domain.Product) *blockingSource {
	return &blockingSource{
		products: products,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (b *blockingSource) ListProducts(ctx context.Context) ([]domain.Product, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.products, nil
}

func (b *blockingSource) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, ErrProductNotFound
}

func TestProducts_SharedFetchSurvivesFirstCallerCancel(t *testing.T) {
	source := newBlockingSource(storeProducts())
	sut := NewService(source, &mockCache{}, zap.NewNop())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan []domain.Product, 1)
	go func() { first <- sut.Products(firstCtx) }()
	<-source.entered

	second := make(chan []domain.Product, 1)
	go func() { second <- sut.Products(context.Background()) }()

	cancelFirst()
	close(source.release)

	assert.Len(t, <-first, 4)
	assert.Len(t, <-second, 4)
}

func TestProducts_InvalidateDuringFetchSkipsCacheWrite(t *testing.T) {
	source := newBlockingSource(storeProducts())
	cache := &mockCache{}
	sut := NewService(source, cache, zap.NewNop())

	result := make(chan []domain.Product, 1)
	go func() { result <- sut.Products(context.Background()) }()
	<-source.entered

	require.NoError(t, sut.Invalidate(context.Background()))
	close(source.release)

	assert.Len(t, <-result, 4)
	assert.Nil(t, cache.cached())

	assert.Len(t, sut.Products(context.Background()), 4)
	assert.Len(t, cache.cached(), 4)
}
