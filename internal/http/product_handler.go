package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Catalog is the read side of the product catalog used by the handlers.
type Catalog interface {
	Products(ctx context.Context) []domain.Product
	Product(ctx context.Context, id int64) (*domain.Product, bool)
	Categories(ctx context.Context) []string
	ByCategory(ctx context.Context, name string) ([]domain.Product, bool)
	Search(ctx context.Context, query string) []domain.Product
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(catalog Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type CategoryResponse struct {
	Category string           `json:"category"`
	Products []domain.Product `json:"products"`
}

type SearchResponse struct {
	Query    string           `json:"query"`
	Products []domain.Product `json:"products"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products := arrange(r, h.catalog.Products(ctx))
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productIDParam(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	product, found := h.catalog.Product(ctx, id)
	if !found {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories := h.catalog.Categories(ctx)
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, &CategoriesResponse{Categories: categories})
}

func (h *ProductHandler) Category(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_category", "invalid category name")
		return
	}

	products, exists := h.catalog.ByCategory(ctx, name)
	if !exists {
		respondError(w, http.StatusNotFound, "not_found", "category not found")
		return
	}
	respondJSON(w, http.StatusOK, &CategoryResponse{Category: name, Products: arrange(r, products)})
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := r.URL.Query().Get("q")
	products := arrange(r, h.catalog.Search(ctx, query))
	respondJSON(w, http.StatusOK, &SearchResponse{Query: query, Products: products})
}

// arrange applies the caller's saved manual sort order.
func arrange(r *http.Request, products []domain.Product) []domain.Product {
	if s := sessionFromContext(r.Context()); s != nil {
		products = s.Order.Apply(products)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products
}
