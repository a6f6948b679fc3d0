package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/cart"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartHandler struct {
	catalog Catalog
	timeout time.Duration
	logger  *zap.Logger
}

func NewCartHandler(catalog Catalog, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		catalog: catalog,
		timeout: timeout,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Items      []domain.CartItem `json:"items"`
	ItemCount  int               `json:"item_count"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	IsOpen     bool              `json:"is_open"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}
	h.respondCart(w, http.StatusOK, s)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}

	var req AddItemRequestDTO
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	product, found := h.catalog.Product(ctx, req.ProductID)
	if !found {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	h.logPersist(s, s.Cart.AddToCart(ctx, *product, quantity))
	h.respondCart(w, http.StatusCreated, s)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}

	productID, ok := productIDParam(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	h.logPersist(s, s.Cart.UpdateQuantity(ctx, productID, *req.Quantity))
	h.respondCart(w, http.StatusOK, s)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}

	productID, ok := productIDParam(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	h.logPersist(s, s.Cart.RemoveFromCart(ctx, productID))
	h.respondCart(w, http.StatusOK, s)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}

	h.logPersist(s, s.Cart.ClearCart(ctx))
	h.respondCart(w, http.StatusOK, s)
}

func (h *CartHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.drawer(w, r, (*cart.Store).Toggle)
}

func (h *CartHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.drawer(w, r, (*cart.Store).Open)
}

func (h *CartHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.drawer(w, r, (*cart.Store).Close)
}

func (h *CartHandler) drawer(w http.ResponseWriter, r *http.Request, action func(*cart.Store)) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}
	action(s.Cart)
	h.respondCart(w, http.StatusOK, s)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, s *session.Session) {
	respondJSON(w, status, &CartResponse{
		Items:      s.Cart.Items(),
		ItemCount:  s.Cart.ItemCount(),
		TotalPrice: s.Cart.TotalPrice(),
		IsOpen:     s.Cart.IsOpen(),
	})
}

// logPersist records a failed write. The in-memory cart already holds the
// change, so the request still succeeds.
func (h *CartHandler) logPersist(s *session.Session, err error) {
	if err != nil {
		h.logger.Warn("cart persist error", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func respondNoSession(w http.ResponseWriter) {
	respondError(w, http.StatusInternalServerError, "no_session", "session not resolved")
}
