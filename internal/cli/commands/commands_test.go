package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/internal/cli/config"
	"github.com/leapstack-labs/leapml/pkg/model"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		info    BuildInfo
		wantOut []string
	}{
		{
			name:    "release build",
			info:    BuildInfo{Version: "0.1.0", GitCommit: "abc1234", BuildDate: "2026-01-02"},
			wantOut: []string{"LeapML v0.1.0", "commit abc1234, built 2026-01-02", "models: decision_tree, logistic_regression"},
		},
		{
			name:    "dev build",
			info:    BuildInfo{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
			wantOut: []string{"LeapML vdev", "commit unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)

			require.NoError(t, cmd.Execute())
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestCommandMetadata(t *testing.T) {
	serve := NewServeCommand()
	assert.Equal(t, "serve", serve.Use)
	assert.NotEmpty(t, serve.Short)
	assert.NotEmpty(t, serve.Example)
	assert.NotNil(t, serve.Flags().Lookup("port"))

	inspect := NewInspectCommand()
	assert.Equal(t, "inspect <file>", inspect.Use)
	assert.NotEmpty(t, inspect.Example)

	run := NewRunCommand()
	assert.Equal(t, "run <file>", run.Use)
	for _, flag := range []string{"target", "method", "columns", "model", "test-size"} {
		assert.NotNil(t, run.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "logistic_regression", run.Flags().Lookup("model").DefValue)
}

func TestCreateMirror(t *testing.T) {
	m, err := createMirror(config.MirrorConfig{})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = createMirror(config.MirrorConfig{Type: "gcs"})
	assert.Error(t, err)

	_, err = createMirror(config.MirrorConfig{Type: config.MirrorS3})
	assert.Error(t, err, "bucket is required")

	m, err = createMirror(config.MirrorConfig{Type: config.MirrorS3, Bucket: "artifacts", Region: "us-east-1"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestRunPipeline_ColumnsRequireMethod(t *testing.T) {
	err := runPipeline(NewRunCommand(), "unused.csv", &RunOptions{Target: "y", Columns: []string{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--columns requires --method")
}

func TestImportanceRows(t *testing.T) {
	rows := importanceRows(map[string]float64{"b": 0.25, "a": 0.25, "c": 0.5})
	assert.Equal(t, [][]string{{"c", "0.5000"}, {"a", "0.2500"}, {"b", "0.2500"}}, rows)
}

func TestReportRows(t *testing.T) {
	rep := &model.Report{
		Labels: []string{"no", "yes"},
		Classes: map[string]model.ClassMetrics{
			"no":  {Precision: 1, Recall: 0.5, F1: 0.6667, Support: 2},
			"yes": {Precision: 0.6667, Recall: 1, F1: 0.8, Support: 2},
		},
		MacroAvg:    model.ClassMetrics{Precision: 0.8333, Recall: 0.75, F1: 0.7333, Support: 4},
		WeightedAvg: model.ClassMetrics{Precision: 0.8333, Recall: 0.75, F1: 0.7333, Support: 4},
	}

	rows := reportRows(rep)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"no", "1.0000", "0.5000", "0.6667", "2"}, rows[0])
	assert.Equal(t, "macro avg", rows[2][0])
	assert.True(t, strings.HasPrefix(rows[3][0], "weighted"))
}
