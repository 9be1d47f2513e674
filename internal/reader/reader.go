// Package reader parses uploaded tabular files into dataset tables.
//
// Delimited files are loaded into an in-memory DuckDB database so column types
// come from DuckDB's CSV sniffer. Spreadsheets are staged as CSV first and
// follow the same path, which keeps inference identical across formats.
package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapml/internal/adapter"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
)

// SupportedExtensions lists the accepted file extensions, lower case.
var SupportedExtensions = []string{".csv", ".xlsx", ".xls"}

// Config holds reader configuration.
type Config struct {
	// Logger for debug output. Nil uses a discard logger.
	Logger *slog.Logger

	// TempDir holds staged spreadsheet conversions. Empty uses os.TempDir.
	TempDir string
}

// Reader converts files into tables. It is safe for concurrent use.
type Reader struct {
	db      adapter.Adapter
	logger  *slog.Logger
	tempDir string
}

// New opens the in-memory database backing the reader.
func New(ctx context.Context, cfg Config) (*Reader, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db := adapter.NewDuckDBAdapter()
	if err := db.Connect(ctx, adapter.Config{Path: ":memory:", Logger: logger}); err != nil {
		return nil, fmt.Errorf("failed to open reader database: %w", err)
	}

	return &Reader{db: db, logger: logger, tempDir: cfg.TempDir}, nil
}

// Close releases the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// IsSupported reports whether the file extension is accepted, ignoring case.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Read parses the file at path. The extension is checked before anything is
// read from disk.
func (r *Reader) Read(ctx context.Context, path string) (*dataset.Table, error) {
	const op = "reader.Read"

	if !IsSupported(path) {
		return nil, core.Errorf(core.KindUnsupportedFormat, op,
			"unsupported file format %q; expected one of %s", filepath.Ext(path), strings.Join(SupportedExtensions, ", "))
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.Errorf(core.KindNotFound, op, "file %s does not exist", filepath.Base(path))
		}
		return nil, core.E(core.KindInternal, op, err)
	}

	csvPath := path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		staged, err := r.stage(path)
		if err != nil {
			return nil, core.E(core.KindParse, op, err)
		}
		defer func() { _ = os.Remove(staged) }()
		csvPath = staged
	}

	header, err := readHeader(csvPath)
	if err != nil {
		return nil, core.E(core.KindParse, op, err)
	}

	table, err := r.load(ctx, csvPath, header)
	if err != nil {
		if ctx.Err() != nil {
			return nil, core.E(core.KindInternal, op, ctx.Err())
		}
		return nil, core.E(core.KindParse, op, err)
	}

	r.logger.Debug("file read",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))

	return table, nil
}

// readHeader returns the validated header row of a CSV file.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is validated by the caller
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("malformed header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column %d has an empty header", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
	}

	return header, nil
}

// load reads a CSV file through a uniquely named scratch table.
func (r *Reader) load(ctx context.Context, path string, header []string) (*dataset.Table, error) {
	scratch := "scratch_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	// DROP IF EXISTS also cleans up after a load that failed halfway.
	meta, err := r.db.LoadCSV(ctx, scratch, path)
	defer func() {
		if err := r.db.DropTable(context.WithoutCancel(ctx), scratch); err != nil {
			r.logger.Warn("failed to drop scratch table", slog.String("table", scratch), slog.Any("error", err))
		}
	}()
	if err != nil {
		return nil, err
	}

	if len(meta.Columns) != len(header) {
		return nil, fmt.Errorf("expected %d columns from header, parsed %d", len(header), len(meta.Columns))
	}

	columns := make([]*dataset.Column, len(meta.Columns))
	for i, c := range meta.Columns {
		columns[i] = &dataset.Column{
			Name:   header[i],
			Type:   MapType(c.Type),
			Values: make([]any, 0, meta.RowCount),
		}
	}

	rows, err := r.db.ScanTable(ctx, scratch)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	dest := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, col := range columns {
			col.Values = append(col.Values, normalize(col.Type, dest[i]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return dataset.New(columns...)
}

// MapType maps a DuckDB type name onto a dataset column type.
func MapType(dbType string) dataset.ColumnType {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	switch {
	case t == "BOOLEAN":
		return dataset.TypeBoolean
	case strings.HasSuffix(t, "INT") || strings.HasSuffix(t, "INTEGER"):
		// TINYINT, SMALLINT, INTEGER, BIGINT, HUGEINT and unsigned variants
		return dataset.TypeInteger
	case t == "DOUBLE" || t == "FLOAT" || t == "REAL" || strings.HasPrefix(t, "DECIMAL"):
		return dataset.TypeFloat
	case strings.HasPrefix(t, "DATE") || strings.HasPrefix(t, "TIME"):
		return dataset.TypeDatetime
	default:
		return dataset.TypeText
	}
}

// normalize converts a scanned driver value into the column's value domain.
func normalize(typ dataset.ColumnType, v any) any {
	if v == nil {
		return nil
	}

	switch typ {
	case dataset.TypeInteger:
		switch x := v.(type) {
		case int8:
			return int64(x)
		case int16:
			return int64(x)
		case int32:
			return int64(x)
		case int64:
			return x
		case uint8:
			return int64(x)
		case uint16:
			return int64(x)
		case uint32:
			return int64(x)
		case uint64:
			if x > math.MaxInt64 {
				return float64(x)
			}
			return int64(x)
		case *big.Int:
			if x.IsInt64() {
				return x.Int64()
			}
			f, _ := new(big.Float).SetInt(x).Float64()
			return f
		}
	case dataset.TypeFloat:
		switch x := v.(type) {
		case float32:
			return float64(x)
		case float64:
			return x
		case interface{ Float64() float64 }:
			return x.Float64()
		}
	case dataset.TypeBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
	case dataset.TypeDatetime:
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
