package trainer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapml/internal/testutil"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTable builds rows where label is 1 exactly when x >= 50.
func makeTable(t *testing.T, from, to int, labelText bool) *dataset.Table {
	t.Helper()
	var x, z, flag, label []any
	for i := from; i < to; i++ {
		x = append(x, float64(i))
		z = append(z, int64(i%7))
		flag = append(flag, i%2 == 0)
		switch {
		case labelText && i >= 50:
			label = append(label, "high")
		case labelText:
			label = append(label, "low")
		case i >= 50:
			label = append(label, int64(1))
		default:
			label = append(label, int64(0))
		}
	}
	labelType := dataset.TypeInteger
	if labelText {
		labelType = dataset.TypeText
	}
	table, err := dataset.New(
		&dataset.Column{Name: "x", Type: dataset.TypeFloat, Values: x},
		&dataset.Column{Name: "label", Type: labelType, Values: label},
		&dataset.Column{Name: "z", Type: dataset.TypeInteger, Values: z},
		&dataset.Column{Name: "flag", Type: dataset.TypeBoolean, Values: flag},
	)
	require.NoError(t, err)
	return table
}

func newTrainer(t *testing.T) *Trainer {
	return New(Config{Logger: testutil.NewTestLogger(t)})
}

func TestTrain_Models(t *testing.T) {
	train := makeTable(t, 0, 100, false)
	test := makeTable(t, 30, 70, false)

	for _, name := range []string{LogisticRegression, DecisionTree} {
		t.Run(name, func(t *testing.T) {
			res, err := newTrainer(t).Train(context.Background(), Request{
				ModelName: name, Target: "label", Train: train, Test: test,
			})
			require.NoError(t, err)

			assert.Equal(t, name, res.ModelName)
			assert.GreaterOrEqual(t, res.Accuracy, 0.9)
			assert.LessOrEqual(t, res.Accuracy, 1.0)
			assert.Equal(t, []string{"0", "1"}, res.ClassificationReport.Labels)
			assert.Equal(t, 20, res.ClassificationReport.Classes["1"].Support)

			assert.Len(t, res.FeatureImportance, 3)
			assert.Contains(t, res.FeatureImportance, "x")
			assert.NotContains(t, res.FeatureImportance, "label")

			require.Len(t, res.PredictionsSample, SampleSize)
			assert.IsType(t, int64(0), res.PredictionsSample[0])
		})
	}
}

func TestTrain_TextLabels(t *testing.T) {
	res, err := newTrainer(t).Train(context.Background(), Request{
		ModelName: DecisionTree,
		Target:    "label",
		Train:     makeTable(t, 0, 100, true),
		Test:      makeTable(t, 45, 50, true),
	})
	require.NoError(t, err)

	assert.Len(t, res.PredictionsSample, 5)
	assert.Equal(t, "low", res.PredictionsSample[0])

	data, err := json.Marshal(res)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	report := decoded["classification_report"].(map[string]any)
	assert.Contains(t, report, "low")
	assert.Contains(t, report, "macro avg")
	assert.Contains(t, report, "weighted avg")
}

func TestTrain_DecisionTreeToleratesMissing(t *testing.T) {
	train := makeTable(t, 0, 100, false)
	x, _ := train.Column("x")
	x.Values[3] = nil

	_, err := newTrainer(t).Train(context.Background(), Request{
		ModelName: DecisionTree, Target: "label", Train: train, Test: makeTable(t, 0, 10, false),
	})
	require.NoError(t, err)

	_, err = newTrainer(t).Train(context.Background(), Request{
		ModelName: LogisticRegression, Target: "label", Train: train, Test: makeTable(t, 0, 10, false),
	})
	require.Error(t, err)
	assert.Equal(t, core.KindColumn, core.KindOf(err))
}

func TestTrain_Errors(t *testing.T) {
	good := makeTable(t, 0, 100, false)

	withText, err := dataset.New(
		&dataset.Column{Name: "name", Type: dataset.TypeText, Values: []any{"a", "b"}},
		&dataset.Column{Name: "label", Type: dataset.TypeInteger, Values: []any{int64(0), int64(1)}},
	)
	require.NoError(t, err)

	onlyTarget, err := dataset.New(
		&dataset.Column{Name: "label", Type: dataset.TypeInteger, Values: []any{int64(0), int64(1)}},
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Request
		want core.Kind
	}{
		{"unknown model", Request{ModelName: "svm", Target: "label", Train: good, Test: good}, core.KindUnknownModel},
		{"unknown model wins over bad input", Request{ModelName: "svm", Target: "nope", Train: withText, Test: withText}, core.KindUnknownModel},
		{"missing target", Request{ModelName: DecisionTree, Target: "nope", Train: good, Test: good}, core.KindColumn},
		{"text feature", Request{ModelName: DecisionTree, Target: "label", Train: withText, Test: withText}, core.KindColumn},
		{"no features", Request{ModelName: DecisionTree, Target: "label", Train: onlyTarget, Test: onlyTarget}, core.KindColumn},
		{"test lacks feature", Request{ModelName: DecisionTree, Target: "label", Train: good, Test: onlyTarget}, core.KindColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTrainer(t).Train(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.want, core.KindOf(err))
		})
	}
}

func TestRegistry(t *testing.T) {
	tr := newTrainer(t)
	assert.Equal(t, []string{DecisionTree, LogisticRegression}, tr.Registry().Names())

	assert.NoError(t, tr.CheckModel(LogisticRegression))
	err := tr.CheckModel("random_forest")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindUnknownModel))
}
