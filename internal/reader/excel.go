package reader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// stage converts the first sheet of a spreadsheet into a temporary CSV file
// and returns its path. The caller removes the file.
func (r *Reader) stage(path string) (string, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	case ".xls":
		records, err = readXLS(path)
	default:
		return "", fmt.Errorf("not a spreadsheet: %s", filepath.Base(path))
	}
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("first sheet is empty")
	}

	tmp, err := os.CreateTemp(r.tempDir, "leapml-sheet-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}

	if err := writeRecords(tmp, records); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}

	return tmp.Name(), nil
}

// writeRecords writes rows padded to the header width.
func writeRecords(f *os.File, records [][]string) error {
	width := len(records[0])
	cw := csv.NewWriter(f)
	for i, rec := range records {
		if len(rec) > width {
			return fmt.Errorf("row %d has %d cells, header has %d", i+1, len(rec), width)
		}
		if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			rec = padded
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to stage row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return trimTrailingEmpty(rows), nil
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if wb == nil {
		return nil, fmt.Errorf("failed to open workbook: no workbook stream")
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("failed to read first sheet")
	}

	// Rows rebuilt from cells alone report no last column, so every row is
	// read out to the widest declared row.
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		if row := sheetRow(sheet, i); row != nil {
			width = max(width, row.LastCol())
		}
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		n := max(width, row.LastCol())
		cells := make([]string, 0, n)
		for j := 0; j < n; j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return trimTrailingEmpty(rows), nil
}

// sheetRow returns row i, or nil when the sheet holds no record for it.
// WorkSheet.Row dereferences the missing entry and panics.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// trimTrailingEmpty drops blank rows at the end of a sheet and trailing blank
// cells of each row.
func trimTrailingEmpty(rows [][]string) [][]string {
	for i, row := range rows {
		end := len(row)
		for end > 0 && strings.TrimSpace(row[end-1]) == "" {
			end--
		}
		rows[i] = row[:end]
	}
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}
