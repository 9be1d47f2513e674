package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

const describeQuery = `
	SELECT column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = 'main' AND table_name = ?
	ORDER BY ordinal_position`

// DuckDBAdapter implements Adapter on an embedded DuckDB database.
type DuckDBAdapter struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDuckDBAdapter creates an unconnected adapter.
func NewDuckDBAdapter() *DuckDBAdapter {
	return &DuckDBAdapter{logger: slog.New(slog.DiscardHandler)}
}

// Connect opens the database at cfg.Path.
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	if cfg.Logger != nil {
		a.logger = cfg.Logger
	}

	dsn := cfg.Path
	if dsn == ":memory:" {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.db = db
	a.logger.Debug("duckdb connected", slog.String("path", cfg.Path))
	return nil
}

// Close closes the connection. It is a no-op before Connect.
func (a *DuckDBAdapter) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *DuckDBAdapter) conn() (*sql.DB, error) {
	if a.db == nil {
		return nil, ErrNotConnected
	}
	return a.db, nil
}

// Exec executes a statement that doesn't return rows.
func (a *DuckDBAdapter) Exec(ctx context.Context, stmt string, args ...any) error {
	db, err := a.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a statement that returns rows. The caller closes them.
func (a *DuckDBAdapter) Query(ctx context.Context, stmt string, args ...any) (*Rows, error) {
	db, err := a.conn()
	if err != nil {
		return nil, err
	}
	//nolint:rowserrcheck // rows.Err() is checked by the caller after iteration
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// LoadCSV creates table from the file at path with read_csv_auto.
// sample_size=-1 makes DuckDB look at every row before settling a type.
func (a *DuckDBAdapter) LoadCSV(ctx context.Context, table, path string) (*Metadata, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	stmt := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header=true, sample_size=-1)",
		QuoteIdent(table), QuoteLiteral(abs),
	)
	a.logger.Debug("loading csv", slog.String("table", table), slog.String("path", abs))
	if err := a.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to load CSV: %w", err)
	}

	return a.Describe(ctx, table)
}

// Describe reads column names and types from information_schema and counts rows.
func (a *DuckDBAdapter) Describe(ctx context.Context, table string) (*Metadata, error) {
	db, err := a.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, describeQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	meta := &Metadata{Name: table}
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		meta.Columns = append(meta.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(meta.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	//nolint:gosec // identifier is quoted
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(table)).Scan(&meta.RowCount); err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return meta, nil
}

// ScanTable selects every row of table. read_csv_auto preserves file order on load.
func (a *DuckDBAdapter) ScanTable(ctx context.Context, table string) (*Rows, error) {
	return a.Query(ctx, "SELECT * FROM "+QuoteIdent(table))
}

// DropTable removes a table if it exists.
func (a *DuckDBAdapter) DropTable(ctx context.Context, table string) error {
	return a.Exec(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(table))
}

// QuoteIdent quotes a SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a SQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var _ Adapter = (*DuckDBAdapter)(nil)
