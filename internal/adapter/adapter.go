// Package adapter provides the embedded analytical database used to parse and
// type delimited files for LeapML's tabular reader.
package adapter

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// ErrNotConnected is returned by every operation before Connect succeeds.
var ErrNotConnected = errors.New("database connection not established")

// Config holds the configuration for opening a database.
type Config struct {
	// Path is the database file. Use ":memory:" or "" for an in-memory database.
	Path string

	// Logger receives debug output. Nil uses a discard logger.
	Logger *slog.Logger
}

// Column is one inferred column of a loaded file.
type Column struct {
	Name string
	Type string // database type name, e.g. BIGINT, DOUBLE, VARCHAR
}

// Metadata describes a loaded table: its columns in file order and its row count.
type Metadata struct {
	Name     string
	Columns  []Column
	RowCount int64
}

// Rows wraps sql.Rows so callers do not depend on the driver.
type Rows struct {
	*sql.Rows
}

// Adapter defines the operations the reader needs from the database.
type Adapter interface {
	Connect(ctx context.Context, cfg Config) error
	Close() error

	// Exec executes a statement that doesn't return rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// LoadCSV loads a CSV file with a header row into a new table, inferring
	// column types from the whole file, and describes the result.
	LoadCSV(ctx context.Context, table, path string) (*Metadata, error)

	// Describe returns the columns and row count of a table in the main schema.
	Describe(ctx context.Context, table string) (*Metadata, error)

	// ScanTable returns every row of a table in insertion order.
	ScanTable(ctx context.Context, table string) (*Rows, error)

	// DropTable removes a table if it exists.
	DropTable(ctx context.Context, table string) error
}
