package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rfpwatch/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func generation(prefix string, n int) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, n)
	for i := range n {
		out = append(out, domain.Opportunity{
			Organization: fmt.Sprintf("%s org %d", prefix, i),
			Region:       "ON",
			Sector:       "Risk",
			Link:         fmt.Sprintf("https://%s.example.com/%d", prefix, i),
			Deadline:     "2026-03-15",
			Budget:       "$250k",
		})
	}
	return out
}

var ignoreStamps = cmpopts.IgnoreFields(domain.Opportunity{}, "LastUpdated", "Source")

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	require.Equal(t, "sqlite", db.Driver())
}

func TestReplaceAllReplacesGeneration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	db.now = func() time.Time { return stamp }

	n, err := db.ReplaceAll(ctx, generation("first", 3))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	second := generation("second", 2)
	second = append(second, second[0]) // duplicates by link are kept
	_, err = db.ReplaceAll(ctx, second)
	require.NoError(t, err)

	got, err := db.List(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(second, got, ignoreStamps))
	for _, op := range got {
		require.True(t, op.LastUpdated.Equal(stamp))
	}
}

func TestReplaceAllWithEmptySet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ReplaceAll(ctx, generation("g", 2))
	require.NoError(t, err)
	_, err = db.ReplaceAll(ctx, nil)
	require.NoError(t, err)

	got, err := db.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestReplaceAllStoresEmptyStrings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ReplaceAll(ctx, []domain.Opportunity{{Deadline: "2026-06-30"}})
	require.NoError(t, err)

	var nulls int
	require.NoError(t, db.Pool.QueryRowContext(ctx, `
SELECT COUNT(*) FROM opportunities
WHERE company_name IS NULL OR province IS NULL OR sector IS NULL OR domain IS NULL OR budget IS NULL;`).Scan(&nulls))
	require.Zero(t, nulls)

	got, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "", got[0].Budget)
	require.Equal(t, "2026-06-30", got[0].Deadline)
}

func TestReplaceAllRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	prior := generation("prior", 3)
	_, err := db.ReplaceAll(ctx, prior)
	require.NoError(t, err)

	bad := generation("bad", 2)
	bad[1].Deadline = "someday"
	_, err = db.ReplaceAll(ctx, bad)
	require.ErrorContains(t, err, "row 1")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = db.ReplaceAll(canceled, generation("late", 2))
	require.Error(t, err)

	got, err := db.List(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(prior, got, ignoreStamps))
}

func TestReadersNeverSeeEmptyTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ReplaceAll(ctx, generation("seed", 20))
	require.NoError(t, err)

	var stop atomic.Bool
	var empties atomic.Int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			ops, err := db.List(ctx)
			if err == nil && len(ops) == 0 {
				empties.Add(1)
			}
		}
	}()

	for i := range 25 {
		_, err := db.ReplaceAll(ctx, generation(fmt.Sprintf("gen%d", i), 20))
		require.NoError(t, err)
	}
	stop.Store(true)
	wg.Wait()

	require.Zero(t, empties.Load())
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	st, err := db.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, st.Count)
	require.True(t, st.LastUpdated.IsZero())

	stamp := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return stamp }
	_, err = db.ReplaceAll(ctx, generation("g", 4))
	require.NoError(t, err)

	st, err = db.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, st.Count)
	require.True(t, st.LastUpdated.Equal(stamp))
}

func TestResolveDSN(t *testing.T) {
	cases := []struct {
		dsn, driver, dialect string
	}{
		{"postgres://u:p@db/rfp", "pgx", "postgres"},
		{"postgresql://u:p@db/rfp", "pgx", "postgres"},
		{"libsql://rfp.turso.io?authToken=x", "libsql", "libsql"},
		{"https://rfp.turso.io", "libsql", "libsql"},
		{":memory:", "sqlite", "sqlite"},
		{"file:rfp.db", "sqlite", "sqlite"},
		{"data/rfp.db", "sqlite", "sqlite"},
	}
	for _, tc := range cases {
		driver, _, d := resolveDSN(tc.dsn)
		require.Equal(t, tc.driver, driver, tc.dsn)
		require.Equal(t, tc.dialect, d.name, tc.dsn)
	}

	_, conn, _ := resolveDSN("data/rfp.db")
	require.Equal(t, "file:data/rfp.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", conn)
}

func TestBindNumbersPlaceholders(t *testing.T) {
	require.Equal(t, "VALUES ($1, $2, $3)", postgresDialect.bind("VALUES (?, ?, ?)"))
	require.Equal(t, "VALUES (?, ?)", sqliteDialect.bind("VALUES (?, ?)"))
}
