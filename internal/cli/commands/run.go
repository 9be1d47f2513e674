package commands

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/internal/engine"
	"github.com/leapstack-labs/leapml/internal/trainer"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/leapstack-labs/leapml/pkg/model"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Target  string
	Method  string
	Columns []string
	Model   string
}

// RunOutput is the JSON form of the run command.
type RunOutput struct {
	SessionID     string              `json:"session_id"`
	Dataset       dataset.Info        `json:"dataset"`
	ProcessedPath string              `json:"processed_path,omitempty"`
	Split         *engine.SplitResult `json:"split"`
	Results       *trainer.Results    `json:"results"`
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run the whole pipeline on a file",
		Long: `Upload, optionally preprocess, split, train and evaluate in one go.

The file is copied into a fresh session workspace under the data directory,
so every intermediate file stays available afterwards.`,
		Example: `  # Logistic regression on all non-target columns
  leapml run iris.csv --target species

  # Standardize two columns first and train a decision tree
  leapml run data.xlsx --target label --method standardization --columns a,b --model decision_tree

  # Hold out 30% and print JSON
  leapml run data.csv --target label --test-size 0.3 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "Target (label) column")
	cmd.Flags().StringVar(&opts.Method, "method", "", "Preprocessing method (standardization|normalization)")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Columns to preprocess")
	cmd.Flags().StringVar(&opts.Model, "model", trainer.LogisticRegression, "Model (logistic_regression|decision_tree)")
	cmd.Flags().Float64("test-size", 0.2, "Fraction of rows held out for evaluation")
	_ = cmd.MarkFlagRequired("target")

	_ = cmd.RegisterFlagCompletionFunc("model", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{trainer.LogisticRegression, trainer.DecisionTree}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("method", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"standardization", "normalization"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runPipeline(cmd *cobra.Command, path string, opts *RunOptions) error {
	if opts.Method == "" && len(opts.Columns) > 0 {
		return errors.New("--columns requires --method")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	eng := cmdCtx.Engine

	f, err := os.Open(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	out := RunOutput{SessionID: uuid.NewString()}

	up, err := eng.Upload(ctx, out.SessionID, filepath.Base(path), f)
	if err != nil {
		return err
	}
	out.Dataset = up.Info
	input := up.Path

	if opts.Method != "" {
		pre, err := eng.Preprocess(ctx, input, opts.Method, opts.Columns)
		if err != nil {
			return err
		}
		out.ProcessedPath = pre.ProcessedPath
		input = pre.ProcessedPath
	}

	out.Split, err = eng.Split(ctx, input, opts.Target, cmdCtx.Cfg.Split.TestSize)
	if err != nil {
		return err
	}

	out.Results, err = eng.Train(ctx, engine.TrainRequest{
		ModelName:    opts.Model,
		TrainPath:    out.Split.TrainPath,
		TestPath:     out.Split.TestPath,
		TargetColumn: opts.Target,
	})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	renderRun(r, filepath.Base(path), &out)
	return nil
}

func renderRun(r *output.Renderer, name string, out *RunOutput) {
	res := out.Results

	r.Header(1, fmt.Sprintf("Run: %s on %s", res.ModelName, name))
	r.KeyValue("Session", out.SessionID)
	r.KeyValue("Rows", strconv.Itoa(out.Dataset.Rows))
	if out.ProcessedPath != "" {
		r.KeyValue("Processed", out.ProcessedPath)
	}
	r.KeyValue("Train", fmt.Sprintf("%d rows (%s)", out.Split.TrainSize, out.Split.TrainPath))
	r.KeyValue("Test", fmt.Sprintf("%d rows (%s)", out.Split.TestSize, out.Split.TestPath))
	r.KeyValue("Accuracy", formatMetric(res.Accuracy))
	r.Println("")

	r.Header(2, "Classification report")
	r.Table([]string{"class", "precision", "recall", "f1-score", "support"}, reportRows(res.ClassificationReport))
	r.Println("")

	r.Header(2, "Feature importance")
	r.Table([]string{"feature", "importance"}, importanceRows(res.FeatureImportance))
	r.Println("")

	sample := make([]string, len(res.PredictionsSample))
	for i, p := range res.PredictionsSample {
		sample[i] = dataset.FormatValue(p)
	}
	r.Header(2, "Predictions sample")
	r.Println(strings.Join(sample, ", "))
}

func reportRows(rep *model.Report) [][]string {
	row := func(name string, m model.ClassMetrics) []string {
		return []string{name, formatMetric(m.Precision), formatMetric(m.Recall), formatMetric(m.F1), strconv.Itoa(m.Support)}
	}

	rows := make([][]string, 0, len(rep.Labels)+2)
	for _, label := range rep.Labels {
		rows = append(rows, row(label, rep.Classes[label]))
	}
	rows = append(rows, row(model.KeyMacroAvg, rep.MacroAvg), row(model.KeyWeightedAvg, rep.WeightedAvg))
	return rows
}

// importanceRows sorts features by descending importance, then by name.
func importanceRows(importance map[string]float64) [][]string {
	names := make([]string, 0, len(importance))
	for name := range importance {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(importance[b], importance[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, formatMetric(importance[name])}
	}
	return rows
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
