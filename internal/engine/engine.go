// Package engine composes LeapML's pipeline stages. Each operation reads its
// input from the workspace, runs one stage, writes the result back to the
// workspace, and records it in the state store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapml/internal/reader"
	"github.com/leapstack-labs/leapml/internal/state"
	"github.com/leapstack-labs/leapml/internal/trainer"
	"github.com/leapstack-labs/leapml/internal/workspace"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"github.com/leapstack-labs/leapml/pkg/preprocess"
	"github.com/leapstack-labs/leapml/pkg/split"
)

// Defaults applied to zero Config fields.
const (
	DefaultPreviewRows = 5
	StateDir           = ".leapml"
	StateFile          = "state.db"
)

// Config holds engine configuration.
type Config struct {
	// DataDir is the root of all session workspaces.
	DataDir string
	// StatePath is the SQLite state database. Defaults to <DataDir>/.leapml/state.db.
	StatePath string
	// PreviewRows is the number of rows in previews. Defaults to 5.
	PreviewRows int
	// Seed drives the splitter and seeded models. Defaults to 42.
	Seed int64
	// Mirror receives a copy of every written file (optional).
	Mirror workspace.Mirror
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine runs pipeline stages against a workspace.
type Engine struct {
	ws          *workspace.Workspace
	reader      *reader.Reader
	trainer     *trainer.Trainer
	store       core.Store
	previewRows int
	seed        int64
	logger      *slog.Logger
}

// New opens the workspace, reader and state store.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.DataDir == "" {
		return nil, errors.New("data directory is required")
	}

	previewRows := cfg.PreviewRows
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = split.DefaultSeed
	}

	logger.Debug("initializing engine", "data_dir", cfg.DataDir, "seed", seed)

	ws, err := workspace.New(workspace.Config{Root: cfg.DataDir, Mirror: cfg.Mirror, Logger: logger})
	if err != nil {
		return nil, err
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = filepath.Join(ws.Root(), StateDir, StateFile)
	}
	if statePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(statePath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	rd, err := reader.New(ctx, reader.Config{Logger: logger})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Engine{
		ws:          ws,
		reader:      rd,
		trainer:     trainer.New(trainer.Config{Seed: seed, Logger: logger}),
		store:       store,
		previewRows: previewRows,
		seed:        seed,
		logger:      logger,
	}, nil
}

// Close releases the reader and the state store.
func (e *Engine) Close() error {
	return errors.Join(e.reader.Close(), e.store.Close())
}

// Workspace returns the engine's workspace.
func (e *Engine) Workspace() *workspace.Workspace { return e.ws }

// Models returns the trainable model tags.
func (e *Engine) Models() []string { return e.trainer.Registry().Names() }

// Methods returns the preprocessing method names.
func (e *Engine) Methods() []string {
	methods := preprocess.Methods()
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = string(m)
	}
	return out
}

// Inspect reads a file anywhere on disk and describes it. Used by the CLI;
// HTTP requests go through the workspace.
func (e *Engine) Inspect(ctx context.Context, path string) (*dataset.Table, dataset.Info, error) {
	table, err := e.reader.Read(ctx, path)
	if err != nil {
		return nil, dataset.Info{}, err
	}
	return table, table.Info(e.previewRows), nil
}

// ListArtifacts returns a session's artifacts, oldest first.
func (e *Engine) ListArtifacts(ctx context.Context, sessionID string) ([]*core.Artifact, error) {
	return e.store.ListArtifacts(ctx, sessionID)
}

// Lineage returns an artifact and its ancestors, root first.
func (e *Engine) Lineage(ctx context.Context, id string) ([]*core.Artifact, error) {
	return e.store.ArtifactLineage(ctx, id)
}

// ListRuns returns a session's training runs, newest first.
func (e *Engine) ListRuns(ctx context.Context, sessionID string) ([]*core.Run, error) {
	return e.store.ListRuns(ctx, sessionID)
}

// readInput resolves a client path inside the workspace and reads it.
func (e *Engine) readInput(ctx context.Context, path string) (string, *dataset.Table, error) {
	resolved, err := e.ws.Resolve(path)
	if err != nil {
		return "", nil, err
	}
	table, err := e.reader.Read(ctx, resolved)
	if err != nil {
		return "", nil, err
	}
	return resolved, table, nil
}

// record stores an artifact for a written table, linking it to the artifact
// recorded for parentPath when there is one.
func (e *Engine) record(ctx context.Context, kind core.ArtifactKind, w *workspace.Written, table *dataset.Table, parentPath string) (*core.Artifact, error) {
	a := &core.Artifact{
		SessionID: e.ws.SessionOf(w.Path),
		Kind:      kind,
		Path:      w.Path,
		Rows:      table.NumRows(),
		Columns:   table.NumCols(),
		SHA256:    w.SHA256,
	}

	if parentPath != "" {
		parent, err := e.store.GetArtifactByPath(ctx, parentPath)
		switch {
		case err == nil:
			a.ParentID = parent.ID
		case !core.IsKind(err, core.KindNotFound):
			return nil, err
		}
	}

	if err := e.store.RecordArtifact(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
