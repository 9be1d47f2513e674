package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapml/pkg/core"
)

// RecordRun stores the metrics of a finished training request.
func (s *SQLiteStore) RecordRun(ctx context.Context, r *core.Run) error {
	const op = "state.RecordRun"
	if err := s.ensureOpen(op); err != nil {
		return err
	}

	if r.ID == "" {
		r.ID = generateID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_runs (id, session_id, model_name, target_column, train_path, test_path, accuracy, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.ModelName, r.TargetColumn, r.TrainPath, r.TestPath, r.Accuracy, r.CreatedAt,
	)
	if err != nil {
		return core.Errorf(core.KindInternal, op, "failed to record run: %w", err)
	}
	return nil
}

// ListRuns returns the runs of a session, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, sessionID string) ([]*core.Run, error) {
	const op = "state.ListRuns"
	if err := s.ensureOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, model_name, target_column, train_path, test_path, accuracy, created_at
		 FROM training_runs WHERE session_id = ? ORDER BY created_at DESC, rowid DESC`, sessionID)
	if err != nil {
		return nil, core.Errorf(core.KindInternal, op, "failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*core.Run
	for rows.Next() {
		var r core.Run
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ModelName, &r.TargetColumn, &r.TrainPath, &r.TestPath, &r.Accuracy, &r.CreatedAt); err != nil {
			return nil, core.Errorf(core.KindInternal, op, "failed to scan run: %w", err)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Errorf(core.KindInternal, op, "error iterating runs: %w", err)
	}
	return runs, nil
}
