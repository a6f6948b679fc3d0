package domain

import "github.com/shopspring/decimal"

// Product is a catalog record as served by the product API. It is read-only
// from the storefront's point of view.
type Product struct {
	ID          int64           `json:"id" bson:"id"`
	Title       string          `json:"title" bson:"title"`
	Price       decimal.Decimal `json:"price" bson:"price"`
	Description string          `json:"description" bson:"description"`
	Category    string          `json:"category" bson:"category"`
	Image       string          `json:"image" bson:"image"`
	Rating      Rating          `json:"rating" bson:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate" bson:"rate"`
	Count int     `json:"count" bson:"count"`
}
