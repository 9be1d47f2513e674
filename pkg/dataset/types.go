package dataset

// ColumnType is the inferred scalar type of a column.
type ColumnType string

// Column types reported by the reader.
const (
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeText     ColumnType = "text"
	TypeBoolean  ColumnType = "boolean"
	TypeDatetime ColumnType = "datetime"
)

// IsNumeric reports whether values of this type can be scaled.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// IsFeature reports whether values of this type can feed a classifier.
func (t ColumnType) IsFeature() bool {
	return t.IsNumeric() || t == TypeBoolean
}
