// Package trainer fits a registered classifier on a training table and
// evaluates it on a test table.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/leapstack-labs/leapml/pkg/model"
	"gonum.org/v1/gonum/mat"
)

// SampleSize caps the number of predictions returned with results.
const SampleSize = 10

// Config holds trainer configuration.
type Config struct {
	// Seed for models with randomness. Zero uses 42.
	Seed int64

	// Registry of models. Nil uses NewRegistry.
	Registry *Registry

	// Logger for debug output. Nil uses a discard logger.
	Logger *slog.Logger
}

// Trainer fits and evaluates models. The fitted model is discarded after
// evaluation.
type Trainer struct {
	seed     int64
	registry *Registry
	logger   *slog.Logger
}

// Request names the model, the target column, and the two tables.
type Request struct {
	ModelName string
	Target    string
	Train     *dataset.Table
	Test      *dataset.Table
}

// Results are the evaluation metrics of one training run.
type Results struct {
	ModelName            string             `json:"model_name"`
	Accuracy             float64            `json:"accuracy"`
	ClassificationReport *model.Report      `json:"classification_report"`
	FeatureImportance    map[string]float64 `json:"feature_importance"`
	PredictionsSample    []any              `json:"predictions_sample"`
}

// New creates a trainer.
func New(cfg Config) *Trainer {
	t := &Trainer{seed: cfg.Seed, registry: cfg.Registry, logger: cfg.Logger}
	if t.seed == 0 {
		t.seed = 42
	}
	if t.registry == nil {
		t.registry = NewRegistry()
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	return t
}

// Registry returns the model registry.
func (t *Trainer) Registry() *Registry { return t.registry }

// CheckModel validates a model tag without touching any data.
func (t *Trainer) CheckModel(name string) error {
	_, err := t.registry.Lookup(name)
	return err
}

// Train fits the requested model on req.Train and evaluates it on req.Test.
func (t *Trainer) Train(ctx context.Context, req Request) (*Results, error) {
	const op = "trainer.Train"

	spec, err := t.registry.Lookup(req.ModelName)
	if err != nil {
		return nil, err
	}

	features, err := featureColumns(req.Train, req.Test, req.Target)
	if err != nil {
		return nil, err
	}

	xTrain, err := featureMatrix(req.Train, features, spec.AllowsMissing)
	if err != nil {
		return nil, err
	}
	xTest, err := featureMatrix(req.Test, features, spec.AllowsMissing)
	if err != nil {
		return nil, err
	}

	trainTarget, _ := req.Train.Column(req.Target)
	testTarget, _ := req.Test.Column(req.Target)

	enc, err := model.NewEncoder(trainTarget.Values, testTarget.Values)
	if err != nil {
		return nil, core.Errorf(core.KindColumn, op, "target column %q: %v", req.Target, err)
	}
	yTrain, err := enc.Encode(trainTarget.Values)
	if err != nil {
		return nil, core.Errorf(core.KindColumn, op, "target column %q in train set: %v", req.Target, err)
	}
	yTest, err := enc.Encode(testTarget.Values)
	if err != nil {
		return nil, core.Errorf(core.KindColumn, op, "target column %q in test set: %v", req.Target, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}

	clf := spec.New(t.seed)
	start := time.Now()
	if err := clf.Fit(xTrain, yTrain, enc.Len()); err != nil {
		return nil, core.E(core.KindInternal, op, fmt.Errorf("fit %s: %w", spec.Name, err))
	}
	pred, err := clf.Predict(xTest)
	if err != nil {
		return nil, core.E(core.KindInternal, op, fmt.Errorf("predict %s: %w", spec.Name, err))
	}

	report, err := model.NewReport(yTest, pred, enc.Names())
	if err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}

	importance := make(map[string]float64, len(features))
	for i, score := range clf.FeatureImportance() {
		importance[features[i]] = score
	}

	sample := pred
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	results := &Results{
		ModelName:            spec.Name,
		Accuracy:             model.Round(model.Accuracy(yTest, pred), 4),
		ClassificationReport: report,
		FeatureImportance:    importance,
		PredictionsSample:    enc.Decode(sample),
	}

	t.logger.Debug("model trained",
		slog.String("model", spec.Name),
		slog.Int("train_rows", len(yTrain)),
		slog.Int("test_rows", len(yTest)),
		slog.Int("features", len(features)),
		slog.Float64("accuracy", results.Accuracy),
		slog.Duration("elapsed", time.Since(start)))

	return results, nil
}

// featureColumns returns every non-target column of train, in order, after
// checking both tables carry the target and the features.
func featureColumns(train, test *dataset.Table, target string) ([]string, error) {
	const op = "trainer.featureColumns"

	if !train.HasColumn(target) {
		return nil, core.Errorf(core.KindColumn, op, "target column %q not found in train set", target)
	}
	if !test.HasColumn(target) {
		return nil, core.Errorf(core.KindColumn, op, "target column %q not found in test set", target)
	}

	var features []string
	for _, col := range train.Columns() {
		if col.Name == target {
			continue
		}
		if !col.Type.IsFeature() {
			return nil, core.Errorf(core.KindColumn, op, "feature column %q is %s, expected numeric or boolean", col.Name, col.Type)
		}
		other, ok := test.Column(col.Name)
		if !ok {
			return nil, core.Errorf(core.KindColumn, op, "feature column %q not found in test set", col.Name)
		}
		if !other.Type.IsFeature() {
			return nil, core.Errorf(core.KindColumn, op, "feature column %q in test set is %s, expected numeric or boolean", col.Name, other.Type)
		}
		features = append(features, col.Name)
	}
	if len(features) == 0 {
		return nil, core.Errorf(core.KindColumn, op, "no feature columns besides target %q", target)
	}
	return features, nil
}

func featureMatrix(table *dataset.Table, features []string, allowMissing bool) (*mat.Dense, error) {
	const op = "trainer.featureMatrix"

	n := table.NumRows()
	if n == 0 {
		return nil, core.Errorf(core.KindValidation, op, "table has no rows")
	}

	X := mat.NewDense(n, len(features), nil)
	for j, name := range features {
		col, _ := table.Column(name)
		values, err := col.Float64s()
		if err != nil {
			return nil, core.E(core.KindColumn, op, err)
		}
		for i, v := range values {
			if math.IsNaN(v) && !allowMissing {
				return nil, core.Errorf(core.KindColumn, op, "feature column %q has missing values", name)
			}
			X.Set(i, j, v)
		}
	}
	return X, nil
}
