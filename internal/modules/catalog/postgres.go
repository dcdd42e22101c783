package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgres struct{ db *sql.DB }

// NewPostgresRepository creates a catalog repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

func (r *postgres) ResolveNames(ctx context.Context, names []string) ([]NameMatch, error) {
	rows, err := r.db.QueryContext(ctx, `
WITH input AS (
  SELECT unnest($1::text[]) AS raw
),
exact AS (
  SELECT i.raw, p.id, p.name, false AS via_alias
  FROM input i
  JOIN products p ON lower(p.name) = lower(i.raw)
),
alias AS (
  SELECT i.raw, p.id, p.name, true AS via_alias
  FROM input i
  JOIN product_aliases a ON lower(a.alias) = lower(i.raw)
  JOIN products p ON p.id = a.product_id
)
SELECT raw, id, name, via_alias FROM exact
UNION
SELECT raw, id, name, via_alias FROM alias`, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []NameMatch
	for rows.Next() {
		var m NameMatch
		if err := rows.Scan(&m.Raw, &m.ProductID, &m.Name, &m.ViaAlias); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgres) UpdateBaseQty(ctx context.Context, productID uuid.UUID, baseQty float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET base_qty=$2, updated_at=NOW() WHERE id=$1`, productID, baseQty)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("product %s not found", productID)
	}
	return nil
}
