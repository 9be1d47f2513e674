package state

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewSQLiteStore(nil)
	store.db = db
	return store, mock
}

func TestSQLiteStore_RecordArtifactExecError(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectExec("INSERT INTO artifacts").WillReturnError(errors.New("disk full"))

	err := store.RecordArtifact(context.Background(), &core.Artifact{SessionID: "s", Kind: core.ArtifactUpload, Path: "/a"})
	require.Error(t, err)
	assert.Equal(t, core.KindInternal, core.KindOf(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_GetArtifactNoRows(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectQuery("SELECT .* FROM artifacts WHERE id = ?").
		WithArgs("abc").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetArtifact(context.Background(), "abc")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ListRunsScanError(t *testing.T) {
	store, mock := mockStore(t)

	rows := sqlmock.NewRows([]string{"id", "session_id", "model_name", "target_column", "train_path", "test_path", "accuracy", "created_at"}).
		AddRow("r1", "s", "decision_tree", "label", "/t", "/e", "not-a-number", time.Now())
	mock.ExpectQuery("SELECT .* FROM training_runs").WithArgs("s").WillReturnRows(rows)

	_, err := store.ListRuns(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, core.KindInternal, core.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ListArtifactsRows(t *testing.T) {
	store, mock := mockStore(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "session_id", "kind", "path", "row_count", "column_count", "sha256", "parent_id", "created_at"}).
		AddRow("a1", "s", "upload", "/d/a.csv", 10, 2, "ff", nil, created).
		AddRow("a2", "s", "processed", "/d/a_processed.csv", 10, 2, "ee", "a1", created)
	mock.ExpectQuery("SELECT .* FROM artifacts WHERE session_id = ?").WithArgs("s").WillReturnRows(rows)

	list, err := store.ListArtifacts(context.Background(), "s")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "", list[0].ParentID)
	assert.Equal(t, "a1", list[1].ParentID)
	assert.Equal(t, core.ArtifactProcessed, list[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
