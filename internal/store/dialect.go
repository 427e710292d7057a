package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayout sorts lexically, so MAX() works on sqlite's TEXT column.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

const dateLayout = "2006-01-02"

type dialect struct {
	name string

	// idempotent DDL, run in order
	schema []string

	// select expressions that yield deadline as YYYY-MM-DD text
	deadlineExpr string

	// positional placeholders ($1..) instead of ?
	numbered bool

	// sqlite stores dates/timestamps as TEXT; postgres wants typed values
	typedTimes bool

	// tracks schema version in PRAGMA user_version
	userVersion bool
}

// sqlite columns are TEXT rather than DATE/TIMESTAMP: the driver turns
// declared date types into time.Time on scan.
var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS opportunities (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_name TEXT NOT NULL DEFAULT '',
  province TEXT NOT NULL DEFAULT '',
  sector TEXT NOT NULL DEFAULT '',
  domain TEXT NOT NULL DEFAULT '',
  deadline TEXT NOT NULL DEFAULT '',
  budget TEXT NOT NULL DEFAULT '',
  last_updated TEXT NOT NULL DEFAULT ''
);`, `
CREATE INDEX IF NOT EXISTS idx_opportunities_deadline
ON opportunities(deadline);`,
}

var (
	sqliteDialect = dialect{
		name:         "sqlite",
		schema:       sqliteSchema,
		deadlineExpr: "deadline",
		userVersion:  true,
	}

	libsqlDialect = dialect{
		name:         "libsql",
		schema:       sqliteSchema,
		deadlineExpr: "deadline",
	}

	postgresDialect = dialect{
		name: "postgres",
		schema: []string{`
CREATE TABLE IF NOT EXISTS opportunities (
  id BIGSERIAL PRIMARY KEY,
  company_name TEXT NOT NULL DEFAULT '',
  province TEXT NOT NULL DEFAULT '',
  sector TEXT NOT NULL DEFAULT '',
  domain TEXT NOT NULL DEFAULT '',
  deadline DATE NOT NULL,
  budget TEXT NOT NULL DEFAULT '',
  last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);`, `
CREATE INDEX IF NOT EXISTS idx_opportunities_deadline
ON opportunities(deadline);`,
		},
		deadlineExpr: "to_char(deadline, 'YYYY-MM-DD')",
		numbered:     true,
		typedTimes:   true,
	}
)

// bind rewrites ? placeholders for dialects that number them.
func (d dialect) bind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) dateArg(s string) (any, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("deadline %q: %w", s, err)
	}
	if d.typedTimes {
		return t, nil
	}
	return s, nil
}

func (d dialect) timeArg(t time.Time) any {
	t = t.UTC()
	if d.typedTimes {
		return t
	}
	return t.Format(timestampLayout)
}

// scanTime accepts whatever the driver returned for a timestamp column.
func scanTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x.UTC(), nil
	case []byte:
		return parseTimestamp(string(x))
	case string:
		return parseTimestamp(x)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
