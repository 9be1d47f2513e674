package reader

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/leapstack-labs/leapml/internal/testutil"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newReader(t *testing.T) *Reader {
	t.Helper()
	r, err := New(context.Background(), Config{Logger: testutil.NewTestLogger(t), TempDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRead_CSV(t *testing.T) {
	r := newReader(t)
	path := testutil.WriteFile(t, "data.csv",
		"id,score,name,active,joined\n"+
			"1,0.5,ann,true,2024-01-02\n"+
			"2,,bob,false,2024-02-03\n"+
			"3,2.25,cy,true,2024-03-04\n")

	table, err := r.Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, []string{"id", "score", "name", "active", "joined"}, table.ColumnNames())
	assert.Equal(t, map[string]string{
		"id":     "integer",
		"score":  "float",
		"name":   "text",
		"active": "boolean",
		"joined": "datetime",
	}, table.DTypes())

	id, _ := table.Column("id")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, id.Values)

	score, _ := table.Column("score")
	assert.Equal(t, []any{0.5, nil, 2.25}, score.Values)

	joined, _ := table.Column("joined")
	require.IsType(t, time.Time{}, joined.Values[0])
	assert.Equal(t, 2024, joined.Values[0].(time.Time).Year())
}

func TestRead_PreservesRowOrder(t *testing.T) {
	r := newReader(t)
	content := "n\n"
	for i := 50; i > 0; i-- {
		content += strconv.Itoa(i) + "\n"
	}
	table, err := r.Read(context.Background(), testutil.WriteFile(t, "order.csv", content))
	require.NoError(t, err)

	col, _ := table.Column("n")
	require.Len(t, col.Values, 50)
	assert.Equal(t, int64(50), col.Values[0])
	assert.Equal(t, int64(1), col.Values[49])
}

func TestRead_UppercaseExtension(t *testing.T) {
	r := newReader(t)
	table, err := r.Read(context.Background(), testutil.WriteFile(t, "DATA.CSV", "a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())
}

func TestRead_XLSX(t *testing.T) {
	r := newReader(t)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"x", "y", "label"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, 2.5, "a"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, 3.5, "b"}))
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := r.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{"x", "y", "label"}, table.ColumnNames())
	assert.Equal(t, "integer", table.DTypes()["x"])
	assert.Equal(t, "float", table.DTypes()["y"])
	assert.Equal(t, "text", table.DTypes()["label"])
}

func TestRead_XLSXRaggedRows(t *testing.T) {
	r := newReader(t)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"x", "y", "label"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, 2.5, "a"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{3, 4.5}))
	path := filepath.Join(t.TempDir(), "ragged.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := r.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, []string{"x", "y", "label"}, table.ColumnNames())

	y, _ := table.Column("y")
	assert.Equal(t, []any{2.5, nil, 4.5}, y.Values)
	label, _ := table.Column("label")
	assert.Equal(t, []any{"a", nil, nil}, label.Values)
}

func TestRead_XLS(t *testing.T) {
	r := newReader(t)

	// Sheet1 holds a header, two full rows, a row with no record at all and
	// a short row with a blank score.
	table, err := r.Read(context.Background(), filepath.Join("testdata", "scores.xls"))
	require.NoError(t, err)

	assert.Equal(t, 4, table.NumRows())
	assert.Equal(t, []string{"id", "score", "name", "label"}, table.ColumnNames())
	assert.Equal(t, map[string]string{
		"id":    "integer",
		"score": "float",
		"name":  "text",
		"label": "text",
	}, table.DTypes())

	tests := []struct {
		column string
		want   []any
	}{
		{"id", []any{int64(1), int64(2), nil, int64(3)}},
		{"score", []any{0.5, 1.25, nil, nil}},
		{"name", []any{"ann", "bob", nil, "cy"}},
		{"label", []any{"yes", "no", nil, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col, ok := table.Column(tt.column)
			require.True(t, ok)
			assert.Equal(t, tt.want, col.Values)
		})
	}
}

func TestRead_XLSRejectsNonWorkbook(t *testing.T) {
	r := newReader(t)
	_, err := r.Read(context.Background(), testutil.WriteFile(t, "bad.xls", "plain text"))
	require.Error(t, err)
	assert.Equal(t, core.KindParse, core.KindOf(err))
}

func TestRead_Errors(t *testing.T) {
	r := newReader(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want core.Kind
	}{
		{"unsupported extension", testutil.WriteFile(t, "data.json", `{"a":1}`), core.KindUnsupportedFormat},
		{"unsupported before existence", filepath.Join(dir, "missing.txt"), core.KindUnsupportedFormat},
		{"missing file", filepath.Join(dir, "missing.csv"), core.KindNotFound},
		{"empty file", testutil.WriteFile(t, "empty.csv", ""), core.KindParse},
		{"duplicate header", testutil.WriteFile(t, "dup.csv", "a,a\n1,2\n"), core.KindParse},
		{"blank header", testutil.WriteFile(t, "blank.csv", "a,,c\n1,2,3\n"), core.KindParse},
		{"corrupt workbook", testutil.WriteFile(t, "bad.xlsx", "not a zip"), core.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read(context.Background(), tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.want, core.KindOf(err), "error: %v", err)
		})
	}
}

func TestMapType(t *testing.T) {
	tests := map[string]dataset.ColumnType{
		"BIGINT":                   dataset.TypeInteger,
		"INTEGER":                  dataset.TypeInteger,
		"HUGEINT":                  dataset.TypeInteger,
		"UTINYINT":                 dataset.TypeInteger,
		"DOUBLE":                   dataset.TypeFloat,
		"DECIMAL(18,3)":            dataset.TypeFloat,
		"BOOLEAN":                  dataset.TypeBoolean,
		"DATE":                     dataset.TypeDatetime,
		"TIMESTAMP":                dataset.TypeDatetime,
		"TIMESTAMP WITH TIME ZONE": dataset.TypeDatetime,
		"TIME":                     dataset.TypeDatetime,
		"VARCHAR":                  dataset.TypeText,
		"UUID":                     dataset.TypeText,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapType(in), in)
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.csv"))
	assert.True(t, IsSupported("a.XLSX"))
	assert.True(t, IsSupported("dir/a.xls"))
	assert.False(t, IsSupported("a.tsv"))
	assert.False(t, IsSupported("csv"))
}
