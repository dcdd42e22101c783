package catalog

import (
	"context"

	"github.com/google/uuid"
)

// NameMatch is one candidate row returned by the name/alias lookup.
// A single raw name may produce several candidates (exact and alias hits);
// precedence between them is the service's job.
type NameMatch struct {
	Raw       string
	ProductID uuid.UUID
	Name      string
	ViaAlias  bool
}

// Repository defines catalog data storage.
type Repository interface {
	// ResolveNames returns every exact-name and alias candidate for the
	// given raw names, matched case-insensitively.
	ResolveNames(ctx context.Context, names []string) ([]NameMatch, error)
	// UpdateBaseQty overwrites a product's target stock level.
	UpdateBaseQty(ctx context.Context, productID uuid.UUID, baseQty float64) error
}
