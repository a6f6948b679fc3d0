package ordering

import "github.com/fjod/go_cart/storefront-service/internal/domain"

// ApplyStoredOrder arranges products by a stored id sequence. Products named
// in order come first, in that order; the rest follow in their original
// relative order. Unknown ids and repeated ids are skipped, so the result is
// always a permutation of products.
func ApplyStoredOrder(products []domain.Product, order []int64) []domain.Product {
	lookup := make(map[int64]int, len(products))
	for i, p := range products {
		if _, ok := lookup[p.ID]; !ok {
			lookup[p.ID] = i
		}
	}

	consumed := make([]bool, len(products))
	result := make([]domain.Product, 0, len(products))
	for _, id := range order {
		i, ok := lookup[id]
		if !ok || consumed[i] {
			continue
		}
		consumed[i] = true
		result = append(result, products[i])
	}

	for i, p := range products {
		if !consumed[i] {
			result = append(result, p)
		}
	}
	return result
}

// IDs returns the id sequence of products.
func IDs(products []domain.Product) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
