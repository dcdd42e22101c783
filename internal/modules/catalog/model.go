package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Store is a physical location of the restaurant (bar, kitchen, bodega).
// Suggested purchases are grouped by store.
type Store struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a canonical inventory product. BaseQty is the target stock
// level used for shortage computation; inactive products are excluded
// from reconciliation.
type Product struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	BaseQty   float64   `json:"base_qty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Alias is an alternative spelling for a product, matched case-insensitively.
// Many aliases may point at one product.
type Alias struct {
	ProductID uuid.UUID `json:"product_id"`
	Alias     string    `json:"alias"`
}

// Resolved is the outcome of mapping one raw name to a canonical product.
type Resolved struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
}
