package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = DialectFor("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)
	assert.Equal(t, "sqlite", d.DriverName())

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := `SELECT * FROM t WHERE a = ? AND b = '?' AND c IN (?, ?)`
	assert.Equal(t, `SELECT * FROM t WHERE a = $1 AND b = '?' AND c IN ($2, $3)`, Postgres.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
}

func TestSchemaPerDialect(t *testing.T) {
	pg := Postgres.Schema()
	lite := SQLite.Schema()
	require.Len(t, lite, len(pg))
	assert.Contains(t, pg[1], "JSONB")
	assert.Contains(t, pg[1], "TIMESTAMPTZ")
	assert.NotContains(t, lite[1], "JSONB")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", sqliteDSN("a.db?mode=rwc"))
	assert.Equal(t, "a.db?_pragma=journal_mode(WAL)&_time_format=sqlite", sqliteDSN("a.db?_pragma=journal_mode(WAL)"))
	assert.Equal(t, "a.db?_pragma=x&_time_format=sqlite", sqliteDSN("a.db?_pragma=x&_time_format=sqlite"))
}

func TestOpenSQLiteMigratesIdempotently(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "x.db")

	d, err := Open(ctx, Options{Driver: "sqlite", DSN: path})
	require.NoError(t, err)
	require.NoError(t, d.Migrate(ctx))

	var n int
	require.NoError(t, d.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'forms', 'form_responses', 'ai_prompts')`).Scan(&n))
	assert.Equal(t, 4, n)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
}
