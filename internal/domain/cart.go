package domain

// CartItem is a product snapshot plus the quantity in the cart. The product
// fields are flattened so the persisted shape is {id, title, price, ..., quantity}.
type CartItem struct {
	Product
	Quantity int `json:"quantity" bson:"quantity"`
}
