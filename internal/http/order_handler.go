package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/ordering"
	"go.uber.org/zap"
)

// OrderHandler serves the manual reorder page. GET starts a fresh working
// list; drags mutate it in memory until it is saved.
type OrderHandler struct {
	catalog Catalog
	timeout time.Duration
	logger  *zap.Logger
}

func NewOrderHandler(catalog Catalog, timeout time.Duration, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		catalog: catalog,
		timeout: timeout,
		logger:  logger,
	}
}

type IndexRequestDTO struct {
	Index *int `json:"index"`
}

type BoardResponse struct {
	Products []domain.Product `json:"products"`
	Dragging *int             `json:"dragging,omitempty"`
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return
	}

	board := s.ResetBoard(h.catalog.Products(ctx))
	respondJSON(w, http.StatusOK, boardState(board))
}

func (h *OrderHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	board, index, ok := h.boardAndIndex(w, r)
	if !ok {
		return
	}
	if err := board.DragStart(index); err != nil {
		respondBoardError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, boardState(board))
}

func (h *OrderHandler) Drop(w http.ResponseWriter, r *http.Request) {
	board, index, ok := h.boardAndIndex(w, r)
	if !ok {
		return
	}
	if err := board.Drop(index); err != nil {
		respondBoardError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, boardState(board))
}

func (h *OrderHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	board, ok := currentBoard(w, r)
	if !ok {
		return
	}
	board.DragEnd()
	respondJSON(w, http.StatusOK, boardState(board))
}

func (h *OrderHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	board, ok := currentBoard(w, r)
	if !ok {
		return
	}

	s := sessionFromContext(r.Context())
	if err := s.Order.Save(ctx, board.Products()); err != nil {
		h.logger.Error("sort order save error", zap.String("session_id", s.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "save_failed", "failed to save sort order")
		return
	}
	respondJSON(w, http.StatusOK, boardState(board))
}

func (h *OrderHandler) boardAndIndex(w http.ResponseWriter, r *http.Request) (*ordering.Board, int, bool) {
	board, ok := currentBoard(w, r)
	if !ok {
		return nil, 0, false
	}

	var req IndexRequestDTO
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return nil, 0, false
	}
	if req.Index == nil {
		respondError(w, http.StatusBadRequest, "invalid_index", "index is required")
		return nil, 0, false
	}
	return board, *req.Index, true
}

func currentBoard(w http.ResponseWriter, r *http.Request) (*ordering.Board, bool) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondNoSession(w)
		return nil, false
	}
	board := s.Board()
	if board == nil {
		respondError(w, http.StatusConflict, "no_board", "load the sort order before reordering")
		return nil, false
	}
	return board, true
}

func respondBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ordering.ErrIndexOutOfRange):
		respondError(w, http.StatusBadRequest, "invalid_index", err.Error())
	case errors.Is(err, ordering.ErrNoDrag):
		respondError(w, http.StatusConflict, "no_drag", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func boardState(board *ordering.Board) *BoardResponse {
	resp := &BoardResponse{Products: board.Products()}
	if resp.Products == nil {
		resp.Products = []domain.Product{}
	}
	if source, dragging := board.Dragging(); dragging {
		resp.Dragging = &source
	}
	return resp
}
