package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines snapshot and purchase data storage.
type Repository interface {
	// ActiveSnapshotID returns the most recently created snapshot, or
	// found=false when no cycle has been started yet.
	ActiveSnapshotID(ctx context.Context) (id uuid.UUID, found bool, err error)

	// ReplaceCycle deletes the previous snapshot and all purchase records,
	// then creates the given snapshot with its lines. Must be atomic: a
	// failure leaves the previous cycle intact.
	ReplaceCycle(ctx context.Context, snapshotID uuid.UUID, lines []Line) error

	// AddPurchase creates one purchase record with its lines, atomically.
	AddPurchase(ctx context.Context, purchaseID uuid.UUID, lines []Line) error

	// StockRows returns the reconciled rows for every active product against
	// the given snapshot, ordered by store then product name.
	StockRows(ctx context.Context, snapshotID uuid.UUID) ([]StockRow, error)
}
