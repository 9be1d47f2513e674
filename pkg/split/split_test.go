package split

import (
	"sort"
	"testing"

	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsTable(t *testing.T, n int) *dataset.Table {
	t.Helper()
	ids := make([]any, n)
	labels := make([]any, n)
	for i := range n {
		ids[i] = int64(i)
		labels[i] = int64(i % 2)
	}
	table, err := dataset.New(
		&dataset.Column{Name: "id", Type: dataset.TypeInteger, Values: ids},
		&dataset.Column{Name: "label", Type: dataset.TypeInteger, Values: labels},
	)
	require.NoError(t, err)
	return table
}

func ids(t *testing.T, table *dataset.Table) []int {
	t.Helper()
	col, ok := table.Column("id")
	require.True(t, ok)
	out := make([]int, col.Len())
	for i, v := range col.Values {
		out[i] = int(v.(int64))
	}
	return out
}

func TestSplit_SizesAndCoverage(t *testing.T) {
	table := rowsTable(t, 100)

	res, err := Split(table, "label", 0.2, DefaultSeed)
	require.NoError(t, err)

	assert.Equal(t, 80, res.Train.NumRows())
	assert.Equal(t, 20, res.Test.NumRows())
	assert.Equal(t, table.ColumnNames(), res.Train.ColumnNames())
	assert.Equal(t, table.ColumnNames(), res.Test.ColumnNames())

	all := append(ids(t, res.Train), ids(t, res.Test)...)
	sort.Ints(all)
	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, all, "partitions are disjoint and exhaustive")
}

func TestSplit_Deterministic(t *testing.T) {
	table := rowsTable(t, 37)

	a, err := Split(table, "label", 0.3, DefaultSeed)
	require.NoError(t, err)
	b, err := Split(table, "label", 0.3, DefaultSeed)
	require.NoError(t, err)

	assert.Equal(t, ids(t, a.Train), ids(t, b.Train))
	assert.Equal(t, ids(t, a.Test), ids(t, b.Test))

	c, err := Split(table, "label", 0.3, 7)
	require.NoError(t, err)
	assert.NotEqual(t, ids(t, a.Test), ids(t, c.Test))
}

func TestSplit_RoundsTestUp(t *testing.T) {
	res, err := Split(rowsTable(t, 11), "label", 0.2, DefaultSeed)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Test.NumRows())
	assert.Equal(t, 8, res.Train.NumRows())
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		target   string
		testSize float64
		want     core.Kind
	}{
		{"missing target", 10, "y", 0.2, core.KindColumn},
		{"zero test size", 10, "label", 0, core.KindValidation},
		{"test size one", 10, "label", 1, core.KindValidation},
		{"negative test size", 10, "label", -0.5, core.KindValidation},
		{"single row", 1, "label", 0.2, core.KindValidation},
		{"empty table", 0, "label", 0.2, core.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(rowsTable(t, tt.rows), tt.target, tt.testSize, DefaultSeed)
			require.Error(t, err)
			assert.Equal(t, tt.want, core.KindOf(err))
		})
	}
}
