package domain

// CartLine is one product-quantity pairing held in the cart. Lines are
// unique per ProductID within a cart; ID is a locally generated identifier.
type CartLine struct {
	ID        string  `json:"id"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

// Cart is the persisted snapshot shape: the line list plus derived totals.
// Totals are always recomputed from the lines, never mutated independently.
type Cart struct {
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
}
