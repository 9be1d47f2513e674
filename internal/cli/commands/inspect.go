package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/spf13/cobra"
)

// InspectOutput is the JSON form of the inspect command.
type InspectOutput struct {
	File string       `json:"file"`
	Info dataset.Info `json:"info"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the shape, column types and a preview of a dataset",
		Long: `Parse a csv, xlsx or xls file and describe it.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format

Use --output to override: auto, text, markdown, json`,
		Example: `  # Describe a file
  leapml inspect iris.csv

  # As JSON
  leapml inspect iris.xlsx --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}

	return cmd
}

func runInspect(cmd *cobra.Command, path string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	_, info, err := cmdCtx.Engine.Inspect(cmd.Context(), path)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(InspectOutput{File: path, Info: info})
	}

	renderInfo(r, filepath.Base(path), info)
	return nil
}

// renderInfo writes the dataset summary, column types and preview.
func renderInfo(r *output.Renderer, name string, info dataset.Info) {
	r.Header(1, "Dataset: "+name)
	r.KeyValue("Rows", strconv.Itoa(info.Rows))
	r.KeyValue("Columns", strconv.Itoa(info.Columns))
	r.Println("")

	r.Header(2, "Columns")
	types := make([][]string, len(info.ColumnNames))
	for i, col := range info.ColumnNames {
		types[i] = []string{col, info.DTypes[col]}
	}
	r.Table([]string{"column", "dtype"}, types)
	r.Println("")

	r.Header(2, fmt.Sprintf("Preview (%d rows)", len(info.Preview)))
	rows := make([][]string, len(info.Preview))
	for i, row := range info.Preview {
		cells := make([]string, len(info.ColumnNames))
		for j, col := range info.ColumnNames {
			cells[j] = dataset.FormatValue(row[col])
		}
		rows[i] = cells
	}
	r.Table(info.ColumnNames, rows)
}
