package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapml/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectMemory(t *testing.T) *DuckDBAdapter {
	t.Helper()
	a := NewDuckDBAdapter()
	require.NoError(t, a.Connect(context.Background(), Config{Path: ":memory:"}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestDuckDBAdapter_ConnectFileBased(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.duckdb")

	a := NewDuckDBAdapter()
	require.NoError(t, a.Connect(context.Background(), Config{Path: dbPath}))
	defer a.Close()

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
}

func TestDuckDBAdapter_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t)

	require.NoError(t, a.Exec(ctx, `CREATE TABLE t (id INTEGER, name VARCHAR)`))
	require.NoError(t, a.Exec(ctx, `INSERT INTO t VALUES (?, ?), (?, ?)`, 1, "a", 2, "b"))

	rows, err := a.Query(ctx, `SELECT name FROM t WHERE id > ? ORDER BY id`, 0)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestDuckDBAdapter_LoadCSVInfersTypes(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t)

	path := testutil.WriteFile(t, "people's data.csv", "age,score,name,active\n31,0.5,ann,true\n45,1.25,bob,false\n")
	meta, err := a.LoadCSV(ctx, "scratch", path)
	require.NoError(t, err)
	assert.Equal(t, "scratch", meta.Name)
	assert.Equal(t, int64(2), meta.RowCount)
	require.Len(t, meta.Columns, 4)

	got := make([]string, len(meta.Columns))
	for i, c := range meta.Columns {
		got[i] = c.Name + ":" + c.Type
	}
	assert.Equal(t, []string{"age:BIGINT", "score:DOUBLE", "name:VARCHAR", "active:BOOLEAN"}, got)

	rows, err := a.ScanTable(ctx, "scratch")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			age    int64
			score  float64
			name   string
			active bool
		)
		require.NoError(t, rows.Scan(&age, &score, &name, &active))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"ann", "bob"}, names, "rows come back in file order")
}

func TestDuckDBAdapter_DescribeNotFound(t *testing.T) {
	a := connectMemory(t)

	_, err := a.Describe(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDuckDBAdapter_DropTable(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t)

	require.NoError(t, a.Exec(ctx, `CREATE TABLE "odd""name" (x INTEGER)`))
	require.NoError(t, a.DropTable(ctx, `odd"name`))
	require.NoError(t, a.DropTable(ctx, `odd"name`), "dropping twice is a no-op")

	_, err := a.Describe(ctx, `odd"name`)
	assert.Error(t, err)
}

func TestDuckDBAdapter_WithoutConnect(t *testing.T) {
	ctx := context.Background()
	a := NewDuckDBAdapter()

	assert.ErrorIs(t, a.Exec(ctx, "SELECT 1"), ErrNotConnected)
	_, err := a.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = a.Describe(ctx, "t")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = a.LoadCSV(ctx, "t", "x.csv")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, a.Close())
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
	assert.Equal(t, `'it''s'`, QuoteLiteral(`it's`))
}
