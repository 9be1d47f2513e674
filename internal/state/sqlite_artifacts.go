package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/leapstack-labs/leapml/pkg/core"
)

const artifactColumns = `id, session_id, kind, path, row_count, column_count, sha256, parent_id, created_at`

// RecordArtifact stores a new artifact. ID and CreatedAt are filled in when
// empty.
func (s *SQLiteStore) RecordArtifact(ctx context.Context, a *core.Artifact) error {
	const op = "state.RecordArtifact"
	if err := s.ensureOpen(op); err != nil {
		return err
	}

	if a.ID == "" {
		a.ID = generateID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (`+artifactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SessionID, string(a.Kind), a.Path, a.Rows, a.Columns, a.SHA256, nullString(a.ParentID), a.CreatedAt,
	)
	if err != nil {
		return core.Errorf(core.KindInternal, op, "failed to record artifact: %w", err)
	}
	return nil
}

// GetArtifact retrieves an artifact by ID.
func (s *SQLiteStore) GetArtifact(ctx context.Context, id string) (*core.Artifact, error) {
	const op = "state.GetArtifact"
	if err := s.ensureOpen(op); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.Errorf(core.KindNotFound, op, "artifact not found: %s", id)
	}
	if err != nil {
		return nil, core.Errorf(core.KindInternal, op, "failed to get artifact: %w", err)
	}
	return a, nil
}

// GetArtifactByPath returns the most recent artifact written to path.
func (s *SQLiteStore) GetArtifactByPath(ctx context.Context, path string) (*core.Artifact, error) {
	const op = "state.GetArtifactByPath"
	if err := s.ensureOpen(op); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE path = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, path)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.Errorf(core.KindNotFound, op, "no artifact recorded for %s", path)
	}
	if err != nil {
		return nil, core.Errorf(core.KindInternal, op, "failed to get artifact: %w", err)
	}
	return a, nil
}

// ListArtifacts returns the artifacts of a session, oldest first.
func (s *SQLiteStore) ListArtifacts(ctx context.Context, sessionID string) ([]*core.Artifact, error) {
	const op = "state.ListArtifacts"
	if err := s.ensureOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE session_id = ? ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, core.Errorf(core.KindInternal, op, "failed to list artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectArtifacts(op, rows)
}

// ArtifactLineage returns the artifact and its ancestors, root first.
func (s *SQLiteStore) ArtifactLineage(ctx context.Context, id string) ([]*core.Artifact, error) {
	const op = "state.ArtifactLineage"
	if err := s.ensureOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE chain(id, depth) AS (
			SELECT id, 0 FROM artifacts WHERE id = ?
			UNION ALL
			SELECT a.parent_id, c.depth + 1
			FROM artifacts a
			JOIN chain c ON a.id = c.id
			WHERE a.parent_id IS NOT NULL AND c.depth < 64
		)
		SELECT a.id, a.session_id, a.kind, a.path, a.row_count, a.column_count, a.sha256, a.parent_id, a.created_at
		FROM chain c
		JOIN artifacts a ON a.id = c.id
		ORDER BY c.depth DESC
	`, id)
	if err != nil {
		return nil, core.Errorf(core.KindInternal, op, "failed to query lineage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	chain, err := collectArtifacts(op, rows)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, core.Errorf(core.KindNotFound, op, "artifact not found: %s", id)
	}
	return chain, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (*core.Artifact, error) {
	var (
		a      core.Artifact
		kind   string
		parent sql.NullString
	)
	if err := row.Scan(&a.ID, &a.SessionID, &kind, &a.Path, &a.Rows, &a.Columns, &a.SHA256, &parent, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Kind = core.ArtifactKind(kind)
	a.ParentID = parent.String
	return &a, nil
}

func collectArtifacts(op string, rows *sql.Rows) ([]*core.Artifact, error) {
	var out []*core.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, core.Errorf(core.KindInternal, op, "failed to scan artifact: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Errorf(core.KindInternal, op, "error iterating artifacts: %w", err)
	}
	return out, nil
}
