package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/leapml/internal/reader"
	"github.com/leapstack-labs/leapml/internal/trainer"
	"github.com/leapstack-labs/leapml/internal/workspace"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/leapstack-labs/leapml/pkg/preprocess"
	"github.com/leapstack-labs/leapml/pkg/split"
)

// UploadResult describes a stored and parsed upload.
type UploadResult struct {
	Info     dataset.Info
	Path     string
	Artifact *core.Artifact
}

// PreprocessResult describes a written processed file.
type PreprocessResult struct {
	ProcessedPath string           `json:"processed_path"`
	Preview       []map[string]any `json:"preview"`
}

// SplitResult describes the written train and test files.
type SplitResult struct {
	TrainPath string `json:"train_path"`
	TestPath  string `json:"test_path"`
	TrainSize int    `json:"train_size"`
	TestSize  int    `json:"test_size"`
}

// TrainRequest names the model, the split files and the target column.
type TrainRequest struct {
	ModelName    string
	TrainPath    string
	TestPath     string
	TargetColumn string
}

// Upload stores r in the session workspace and parses it. The file only
// takes its final name once it parses, so a rejected upload never replaces
// an earlier file of the same name.
func (e *Engine) Upload(ctx context.Context, sessionID, filename string, r io.Reader) (*UploadResult, error) {
	if !reader.IsSupported(filename) {
		return nil, core.Errorf(core.KindValidation, "engine.Upload",
			"invalid file type %q; allowed: csv, xlsx, xls", filepath.Ext(filename))
	}

	staged, err := e.ws.StageUpload(ctx, sessionID, filename, r)
	if err != nil {
		return nil, err
	}

	table, err := e.reader.Read(ctx, staged.Path)
	if err != nil {
		if rmErr := e.ws.Discard(staged); rmErr != nil {
			e.logger.Warn("failed to remove rejected upload", slog.String("path", staged.Path), slog.Any("error", rmErr))
		}
		return nil, err
	}

	written, err := e.ws.Commit(ctx, staged)
	if err != nil {
		_ = e.ws.Discard(staged)
		return nil, err
	}

	artifact, err := e.record(ctx, core.ArtifactUpload, written, table, "")
	if err != nil {
		return nil, err
	}

	e.logger.Info("upload stored",
		slog.String("session", sessionID),
		slog.String("path", written.Path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))

	return &UploadResult{Info: table.Info(e.previewRows), Path: written.Path, Artifact: artifact}, nil
}

// Preprocess rescales columns of the file at path and writes
// <stem>_processed.csv next to it.
func (e *Engine) Preprocess(ctx context.Context, path, method string, columns []string) (*PreprocessResult, error) {
	if _, err := preprocess.ParseMethod(method); err != nil {
		return nil, err
	}

	input, table, err := e.readInput(ctx, path)
	if err != nil {
		return nil, err
	}

	processed, err := preprocess.Apply(table, method, columns)
	if err != nil {
		return nil, err
	}

	written, err := e.ws.WriteTable(ctx, workspace.ProcessedPath(input), processed)
	if err != nil {
		return nil, err
	}
	if _, err := e.record(ctx, core.ArtifactProcessed, written, processed, input); err != nil {
		return nil, err
	}

	e.logger.Info("file preprocessed",
		slog.String("method", method),
		slog.Any("columns", columns),
		slog.String("path", written.Path))

	return &PreprocessResult{ProcessedPath: written.Path, Preview: processed.Preview(e.previewRows)}, nil
}

// Split partitions the file at path into train and test files in a new
// split directory next to it.
func (e *Engine) Split(ctx context.Context, path, target string, testSize float64) (*SplitResult, error) {
	input, table, err := e.readInput(ctx, path)
	if err != nil {
		return nil, err
	}

	res, err := split.Split(table, target, testSize, e.seed)
	if err != nil {
		return nil, err
	}

	dir, err := e.ws.NewSplitDir(input)
	if err != nil {
		return nil, err
	}

	train, err := e.ws.WriteTable(ctx, filepath.Join(dir, workspace.TrainFile), res.Train)
	if err != nil {
		return nil, err
	}
	test, err := e.ws.WriteTable(ctx, filepath.Join(dir, workspace.TestFile), res.Test)
	if err != nil {
		return nil, err
	}

	if _, err := e.record(ctx, core.ArtifactTrain, train, res.Train, input); err != nil {
		return nil, err
	}
	if _, err := e.record(ctx, core.ArtifactTest, test, res.Test, input); err != nil {
		return nil, err
	}

	e.logger.Info("file split",
		slog.String("target", target),
		slog.Int("train_size", res.Train.NumRows()),
		slog.Int("test_size", res.Test.NumRows()),
		slog.String("dir", dir))

	return &SplitResult{
		TrainPath: train.Path,
		TestPath:  test.Path,
		TrainSize: res.Train.NumRows(),
		TestSize:  res.Test.NumRows(),
	}, nil
}

// Train fits a model on the train file and evaluates it on the test file.
// The model tag is checked before any file is touched.
func (e *Engine) Train(ctx context.Context, req TrainRequest) (*trainer.Results, error) {
	if err := e.trainer.CheckModel(req.ModelName); err != nil {
		return nil, err
	}

	trainPath, trainTable, err := e.readInput(ctx, req.TrainPath)
	if err != nil {
		return nil, err
	}
	testPath, testTable, err := e.readInput(ctx, req.TestPath)
	if err != nil {
		return nil, err
	}

	results, err := e.trainer.Train(ctx, trainer.Request{
		ModelName: req.ModelName,
		Target:    req.TargetColumn,
		Train:     trainTable,
		Test:      testTable,
	})
	if err != nil {
		return nil, err
	}

	run := &core.Run{
		SessionID:    e.ws.SessionOf(trainPath),
		ModelName:    results.ModelName,
		TargetColumn: req.TargetColumn,
		TrainPath:    trainPath,
		TestPath:     testPath,
		Accuracy:     results.Accuracy,
	}
	if err := e.store.RecordRun(ctx, run); err != nil {
		return nil, err
	}

	e.logger.Info("model trained",
		slog.String("model", results.ModelName),
		slog.String("target", req.TargetColumn),
		slog.Float64("accuracy", results.Accuracy))

	return results, nil
}
