package ingest

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines ingest audit storage.
type Repository interface {
	// Create inserts the record with status pending.
	Create(ctx context.Context, rec *Record) error
	// SetStatus finalizes the record; reason may be empty for success states.
	SetStatus(ctx context.Context, id uuid.UUID, status Status, reason string) error
}
