package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the single full inventory count that opens a cycle. Only the
// most recently created snapshot is active; starting a new cycle destroys
// the previous one together with every purchase recorded against it.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Purchase is one purchase event within the current cycle. Quantities are
// additive across purchases for the same product.
type Purchase struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Line is one resolved quantity to persist, either a snapshot line or a
// purchase line depending on the operation.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       float64   `json:"qty"`
}

// StockRow is the reconciled state of one active product:
// stock_actual = snapshot qty + sum of purchases in the current cycle.
type StockRow struct {
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	Store       string    `json:"store"`
	BaseQty     float64   `json:"base_qty"`
	SnapshotQty float64   `json:"snapshot_qty"`
	StockActual float64   `json:"stock_actual"`
}

// Suggestion is one product that needs replenishing.
// Shortfall = max(base_qty - stock_actual, 0).
type Suggestion struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Store     string    `json:"store"`
	Shortfall float64   `json:"shortfall"`
}

// StoreSuggestions groups suggestions under one store for per-store shopping
// lists.
type StoreSuggestions struct {
	Store       string       `json:"store"`
	Suggestions []Suggestion `json:"suggestions"`
}
