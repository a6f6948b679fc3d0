package ordering

import (
	"errors"
	"slices"
	"sync"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoDrag          = errors.New("no drag in progress")
)

// Board is the in-memory working list of the reorder page. Drags only move
// items within the board; nothing is persisted until the caller saves.
type Board struct {
	mu       sync.Mutex
	products []domain.Product
	source   int
}

func NewBoard(products []domain.Product) *Board {
	return &Board{products: slices.Clone(products), source: -1}
}

func (b *Board) Products() []domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.products)
}

// DragStart captures the source index of a drag.
func (b *Board) DragStart(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.products) {
		return ErrIndexOutOfRange
	}
	b.source = index
	return nil
}

// Dragging reports the captured source index.
func (b *Board) Dragging() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source, b.source >= 0
}

// Drop moves the dragged item to target and ends the drag.
func (b *Board) Drop(target int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.source < 0 {
		return ErrNoDrag
	}
	if target < 0 || target >= len(b.products) {
		return ErrIndexOutOfRange
	}

	b.products = Move(b.products, b.source, target)
	b.source = -1
	return nil
}

// DragEnd abandons a drag without moving anything.
func (b *Board) DragEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.source = -1
}

// Move removes the item at from and reinserts it at to. Both indexes must be
// valid for items.
func Move[T any](items []T, from, to int) []T {
	item := items[from]
	items = slices.Delete(items, from, from+1)
	return slices.Insert(items, to, item)
}
