package core

import (
	"context"
	"time"
)

// ArtifactKind identifies which pipeline stage produced an artifact.
type ArtifactKind string

// Artifact kinds.
const (
	ArtifactUpload    ArtifactKind = "upload"
	ArtifactProcessed ArtifactKind = "processed"
	ArtifactTrain     ArtifactKind = "train"
	ArtifactTest      ArtifactKind = "test"
)

// Artifact is a table written to the workspace by a pipeline stage.
type Artifact struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Kind      ArtifactKind `json:"kind"`
	Path      string       `json:"path"`
	Rows      int          `json:"rows"`
	Columns   int          `json:"columns"`
	SHA256    string       `json:"sha256"`
	ParentID  string       `json:"parent_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Run records the evaluation metrics of one training request.
// Fitted parameters are never stored.
type Run struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	ModelName    string    `json:"model_name"`
	TargetColumn string    `json:"target_column"`
	TrainPath    string    `json:"train_path"`
	TestPath     string    `json:"test_path"`
	Accuracy     float64   `json:"accuracy"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store defines the interface for state management operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Artifact operations
	RecordArtifact(ctx context.Context, a *Artifact) error
	GetArtifact(ctx context.Context, id string) (*Artifact, error)
	GetArtifactByPath(ctx context.Context, path string) (*Artifact, error)
	ListArtifacts(ctx context.Context, sessionID string) ([]*Artifact, error)
	ArtifactLineage(ctx context.Context, id string) ([]*Artifact, error)

	// Run operations
	RecordRun(ctx context.Context, r *Run) error
	ListRuns(ctx context.Context, sessionID string) ([]*Run, error)
}
