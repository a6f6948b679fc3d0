package cart

import (
	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ItemCount is the sum of quantities.
func ItemCount(items []domain.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price × quantity.
func TotalPrice(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
