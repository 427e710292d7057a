package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type DB struct {
	Pool *sql.DB

	dialect dialect
	now     func() time.Time
}

// Open picks a driver from the DSN:
//
//	postgres://, postgresql://        -> pgx
//	libsql://, wss://, https://       -> libsql (Turso)
//	file:..., :memory:, plain path    -> modernc sqlite
func Open(ctx context.Context, dsn string) (*DB, error) {
	driver, conn, d := resolveDSN(dsn)

	pool, err := sql.Open(driver, conn)
	if err != nil {
		return nil, err
	}

	if d.name == sqliteDialect.name {
		pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	} else {
		pool.SetMaxOpenConns(10)
	}
	pool.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &DB{Pool: pool, dialect: d, now: time.Now}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

// Driver names the dialect in use, for logs.
func (d *DB) Driver() string { return d.dialect.name }

func resolveDSN(dsn string) (driver, conn string, d dialect) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx", dsn, postgresDialect
	case strings.HasPrefix(lower, "libsql://"), strings.HasPrefix(lower, "wss://"),
		strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return "libsql", dsn, libsqlDialect
	case dsn == ":memory:":
		return "sqlite", dsn, sqliteDialect
	case strings.HasPrefix(lower, "file:"):
		return "sqlite", withSQLitePragmas(dsn), sqliteDialect
	default:
		// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
		return "sqlite", withSQLitePragmas("file:" + dsn), sqliteDialect
	}
}

func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
