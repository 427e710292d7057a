package store

import (
	"context"
	"fmt"
	"time"

	"rfpwatch/internal/domain"
)

const schemaVersion = 1

func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if d.dialect.userVersion {
		var v int
		if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
			return err
		}
		if v >= schemaVersion {
			return tx.Commit()
		}
	}

	for _, stmt := range d.dialect.schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if d.dialect.userVersion {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns the current generation in insertion order.
func (d *DB) List(ctx context.Context) ([]domain.Opportunity, error) {
	q := fmt.Sprintf(`
SELECT company_name, province, sector, domain, %s, budget, last_updated
FROM opportunities
ORDER BY id;`, d.dialect.deadlineExpr)

	rows, err := d.Pool.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	out := []domain.Opportunity{}
	for rows.Next() {
		var op domain.Opportunity
		var updated any
		if err := rows.Scan(
			&op.Organization,
			&op.Region,
			&op.Sector,
			&op.Link,
			&op.Deadline,
			&op.Budget,
			&updated,
		); err != nil {
			return nil, err
		}
		if op.LastUpdated, err = scanTime(updated); err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type Stats struct {
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"last_updated"`
}

func (d *DB) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var last any
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*), MAX(last_updated) FROM opportunities;`).Scan(&st.Count, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	if st.LastUpdated, err = scanTime(last); err != nil {
		return Stats{}, err
	}
	return st, nil
}
