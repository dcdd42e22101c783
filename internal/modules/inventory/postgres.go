package inventory

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type postgres struct{ db *sql.DB }

// NewPostgresRepository creates an inventory repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

func (r *postgres) ActiveSnapshotID(ctx context.Context) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM inventory_snapshots ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

func (r *postgres) ReplaceCycle(ctx context.Context, snapshotID uuid.UUID, lines []Line) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// New cycle: discard the previous snapshot and all purchase history.
	// Child lines go with their parents via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_snapshots`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM purchases`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_snapshots (id) VALUES ($1)`, snapshotID); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO inventory_lines (snapshot_id, product_id, qty)
VALUES ($1,$2,$3)
ON CONFLICT (snapshot_id, product_id) DO UPDATE SET qty = EXCLUDED.qty`,
			snapshotID, l.ProductID, l.Qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *postgres) AddPurchase(ctx context.Context, purchaseID uuid.UUID, lines []Line) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (id) VALUES ($1)`, purchaseID); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO purchase_lines (purchase_id, product_id, qty)
VALUES ($1,$2,$3)
ON CONFLICT (purchase_id, product_id) DO UPDATE SET qty = EXCLUDED.qty`,
			purchaseID, l.ProductID, l.Qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *postgres) StockRows(ctx context.Context, snapshotID uuid.UUID) ([]StockRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT
  p.id,
  p.name,
  st.name AS store,
  p.base_qty,
  COALESCE(il.qty, 0) AS snapshot_qty,
  COALESCE(il.qty, 0) + COALESCE(SUM(pl.qty), 0) AS stock_actual
FROM products p
JOIN stores st ON st.id = p.store_id
LEFT JOIN inventory_lines il
  ON il.product_id = p.id AND il.snapshot_id = $1
LEFT JOIN purchase_lines pl
  ON pl.product_id = p.id
WHERE p.active = true
GROUP BY p.id, p.name, st.name, p.base_qty, il.qty
ORDER BY st.name, p.name`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockRow
	for rows.Next() {
		var s StockRow
		if err := rows.Scan(&s.ProductID, &s.Name, &s.Store, &s.BaseQty,
			&s.SnapshotQty, &s.StockActual); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
