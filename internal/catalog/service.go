package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	productsFlightKey   = "products"
	defaultFetchTimeout = 15 * time.Second
	cacheWriteTimeout   = 5 * time.Second
)

// Service is the storefront's view of the product API. Fetch failures are
// logged and reported as empty results, never as errors.
type Service struct {
	source Source
	cache  ProductCache
	sfg    singleflight.Group // Prevents cache stampede
	logger *zap.Logger

	fetchTimeout time.Duration

	// cacheMu orders cache writes against Invalidate; generation counts
	// invalidations so a fetch that started before one never repopulates
	// the cache.
	cacheMu    sync.Mutex
	generation uint64
}

func NewService(source Source, cache ProductCache, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		logger: logger,

		fetchTimeout: defaultFetchTimeout,
	}
}

// Products returns every product, or an empty list when the API is unavailable.
func (s *Service) Products(ctx context.Context) []domain.Product {
	v, err, _ := s.sfg.Do(productsFlightKey, func() (interface{}, error) {
		// every waiter shares this fetch, so it does not follow one caller's cancellation
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		products, err := s.cache.GetProducts(ctx)
		if err == nil {
			return products, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.Error(err)) // log cache error but continue
		}

		generation := s.currentGeneration()
		products, err = s.source.ListProducts(ctx)
		if err != nil {
			return nil, err
		}

		s.storeProducts(ctx, generation, products)
		return products, nil
	})
	if err != nil {
		s.logger.Error("error fetching products", zap.Error(err))
		return []domain.Product{}
	}

	// callers may reorder the slice
	products := slices.Clone(v.([]domain.Product))
	if products == nil {
		products = []domain.Product{}
	}
	return products
}

// Product returns the product with the given id. The boolean is false when it
// does not exist or could not be fetched.
func (s *Service) Product(ctx context.Context, id int64) (*domain.Product, bool) {
	product, err := s.source.GetProduct(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		s.logger.Debug("product not found", zap.Int64("product_id", id))
		return nil, false
	}
	if err != nil {
		s.logger.Error("error fetching product", zap.Int64("product_id", id), zap.Error(err))
		return nil, false
	}
	return product, true
}

// Categories lists distinct categories in first-seen order.
func (s *Service) Categories(ctx context.Context) []string {
	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range s.Products(ctx) {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// ByCategory filters products by category, ignoring case. The boolean reports
// whether the category exists among the current products at all.
func (s *Service) ByCategory(ctx context.Context, name string) ([]domain.Product, bool) {
	name = strings.ToLower(name)

	filtered := []domain.Product{}
	for _, p := range s.Products(ctx) {
		if strings.ToLower(p.Category) == name {
			filtered = append(filtered, p)
		}
	}
	return filtered, len(filtered) > 0
}

// Search matches the query against title, description and category, ignoring
// case. An empty query matches nothing.
func (s *Service) Search(ctx context.Context, query string) []domain.Product {
	results := []domain.Product{}
	if query == "" {
		return results
	}

	term := strings.ToLower(query)
	for _, p := range s.Products(ctx) {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			results = append(results, p)
		}
	}
	return results
}

// Invalidate drops the cached product list so the next read refetches it.
// Fetches already in flight keep their result but do not write it back.
func (s *Service) Invalidate(ctx context.Context) error {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.generation++
	s.sfg.Forget(productsFlightKey)
	if err := s.cache.Delete(ctx); err != nil {
		return fmt.Errorf("invalidate products: %w", err)
	}
	return nil
}

func (s *Service) currentGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// storeProducts caches products fetched during generation unless an
// invalidation happened since.
func (s *Service) storeProducts(ctx context.Context, generation uint64, products []domain.Product) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if generation != s.generation {
		s.logger.Debug("skipping cache write after invalidation")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cacheWriteTimeout)
	defer cancel()
	if err := s.cache.SetProducts(ctx, products); err != nil {
		s.logger.Warn("cache set error", zap.Error(err))
	}
}
