package ordering

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func productsWithIDs(ids ...int64) []domain.Product {
	products := make([]domain.Product, len(ids))
	for i, id := range ids {
		products[i] = domain.Product{ID: id}
	}
	return products
}

func TestApplyStoredOrder(t *testing.T) {
	tests := []struct {
		name     string
		products []int64
		order    []int64
		want     []int64
	}{
		{"partial order", []int64{1, 2, 3}, []int64{3, 1}, []int64{3, 1, 2}},
		{"empty order", []int64{1, 2, 3}, nil, []int64{1, 2, 3}},
		{"unknown ids skipped", []int64{1, 2, 3}, []int64{9, 2, 8}, []int64{2, 1, 3}},
		{"duplicates count once", []int64{1, 2, 3}, []int64{3, 3, 1, 3}, []int64{3, 1, 2}},
		{"full reversal", []int64{1, 2, 3, 4}, []int64{4, 3, 2, 1}, []int64{4, 3, 2, 1}},
		{"remainder keeps relative order", []int64{5, 4, 3, 2, 1}, []int64{3}, []int64{3, 5, 4, 2, 1}},
		{"no products", nil, []int64{1, 2}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyStoredOrder(productsWithIDs(tt.products...), tt.order)
			assert.Equal(t, tt.want, IDs(got))
		})
	}
}

func TestApplyStoredOrder_AlwaysPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		n := rng.Intn(12)
		ids := make([]int64, n)
		for j := range ids {
			// small id space so products may share ids
			ids[j] = int64(rng.Intn(15))
		}
		order := make([]int64, rng.Intn(20))
		for j := range order {
			order[j] = int64(rng.Intn(20) - 2)
		}

		got := IDs(ApplyStoredOrder(productsWithIDs(ids...), order))

		want := slices.Clone(ids)
		slices.Sort(want)
		sorted := slices.Clone(got)
		slices.Sort(sorted)
		assert.Equal(t, want, sorted, "ids=%v order=%v", ids, order)
	}
}

func TestApplyStoredOrder_DoesNotMutateInput(t *testing.T) {
	products := productsWithIDs(1, 2, 3)

	ApplyStoredOrder(products, []int64{3, 2, 1})

	assert.Equal(t, []int64{1, 2, 3}, IDs(products))
}
