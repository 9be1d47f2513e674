package dataset

import (
	"fmt"
	"math"
)

// Column is a named, typed sequence of values.
// Values hold int64, float64, string, bool, time.Time, or nil for missing.
type Column struct {
	Name   string
	Type   ColumnType
	Values []any
}

// Len returns the number of values in the column.
func (c *Column) Len() int { return len(c.Values) }

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	values := make([]any, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Type: c.Type, Values: values}
}

// Float64s converts the column to float64 values. Missing values become NaN.
// Booleans map to 0 and 1. Text and datetime columns are rejected.
func (c *Column) Float64s() ([]float64, error) {
	if !c.Type.IsFeature() {
		return nil, fmt.Errorf("column %q has non-numeric type %s", c.Name, c.Type)
	}
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("column %q row %d: cannot use %T as a number", c.Name, i, v)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. Column names must be unique and non-empty,
// and every column must have the same length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", col.Name, col.Len(), t.rows)
		}
		t.index[col.Name] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column { return t.columns }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// DTypes maps each column name to its type.
func (t *Table) DTypes() map[string]string {
	out := make(map[string]string, len(t.columns))
	for _, c := range t.columns {
		out[c.Name] = string(c.Type)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Clone()
	}
	return &Table{columns: cols, index: copyIndex(t.index), rows: t.rows}
}

// WithColumns returns a copy of the table where each given column replaces
// the existing column of the same name, keeping its position.
func (t *Table) WithColumns(replacements ...*Column) (*Table, error) {
	out := t.Clone()
	for _, r := range replacements {
		i, ok := out.index[r.Name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", r.Name)
		}
		if r.Len() != out.rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", r.Name, r.Len(), out.rows)
		}
		out.columns[i] = r.Clone()
	}
	return out, nil
}

// Take returns a new table holding the rows at idx, in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		values := make([]any, len(idx))
		for j, r := range idx {
			values[j] = c.Values[r]
		}
		cols[i] = &Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return &Table{columns: cols, index: copyIndex(t.index), rows: len(idx)}
}

// Row returns row i as a column-name keyed record. NaN floats become nil so
// the record is JSON safe.
func (t *Table) Row(i int) map[string]any {
	rec := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		v := c.Values[i]
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		rec[c.Name] = v
	}
	return rec
}

// Preview returns the first n rows as records.
func (t *Table) Preview(n int) []map[string]any {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	out := make([]map[string]any, n)
	for i := range n {
		out[i] = t.Row(i)
	}
	return out
}

// Info summarizes a table for API responses.
type Info struct {
	Rows        int               `json:"rows"`
	Columns     int               `json:"columns"`
	ColumnNames []string          `json:"column_names"`
	Preview     []map[string]any  `json:"preview"`
	DTypes      map[string]string `json:"dtypes"`
}

// Info reports the table's shape, column names, dtypes, and a preview.
func (t *Table) Info(previewRows int) Info {
	return Info{
		Rows:        t.rows,
		Columns:     len(t.columns),
		ColumnNames: t.ColumnNames(),
		Preview:     t.Preview(previewRows),
		DTypes:      t.DTypes(),
	}
}

func copyIndex(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
