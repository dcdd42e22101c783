package ingest

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type postgres struct{ db *sql.DB }

// NewPostgresRepository creates an ingest repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

func (r *postgres) Create(ctx context.Context, rec *Record) error {
	rec.Status = StatusPending
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ingests (id, chat_id, mode, file_id, file_unique_id, file_name, file_size, mime_type, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.ChatID, rec.Mode, rec.FileID, rec.FileUniqueID,
		rec.FileName, rec.FileSize, rec.MimeType, rec.Status)
	return err
}

func (r *postgres) SetStatus(ctx context.Context, id uuid.UUID, status Status, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ingests SET status=$2, error=$3 WHERE id=$1`, id, status, reason)
	return err
}
