package store

import (
	"context"
	"fmt"

	"rfpwatch/internal/domain"
)

// ReplaceAll swaps the whole table for ops in one transaction. Each row is
// stamped with the time it was written. On any error nothing changes, and
// concurrent readers see either the old rows or the new ones.
func (d *DB) ReplaceAll(ctx context.Context, ops []domain.Opportunity) (int, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("replace: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// DELETE, not TRUNCATE: postgres TRUNCATE locks out readers until commit.
	if _, err := tx.ExecContext(ctx, `DELETE FROM opportunities;`); err != nil {
		return 0, fmt.Errorf("replace: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, d.dialect.bind(`
INSERT INTO opportunities (company_name, province, sector, domain, deadline, budget, last_updated)
VALUES (?, ?, ?, ?, ?, ?, ?);`))
	if err != nil {
		return 0, fmt.Errorf("replace: prepare: %w", err)
	}
	defer stmt.Close()

	for i, op := range ops {
		deadline, err := d.dialect.dateArg(op.Deadline)
		if err != nil {
			return 0, fmt.Errorf("replace: row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			op.Organization,
			op.Region,
			op.Sector,
			op.Link,
			deadline,
			op.Budget,
			d.dialect.timeArg(d.now()),
		); err != nil {
			return 0, fmt.Errorf("replace: insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace: commit: %w", err)
	}
	return len(ops), nil
}
