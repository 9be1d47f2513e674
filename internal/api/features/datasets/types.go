package datasets

import (
	"github.com/leapstack-labs/leapml/internal/engine"
	"github.com/leapstack-labs/leapml/pkg/dataset"
)

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Success  bool         `json:"success"`
	Data     dataset.Info `json:"data"`
	FilePath string       `json:"filepath"`
}

// PreprocessRequest names the file, method and columns to rescale.
type PreprocessRequest struct {
	FilePath string   `json:"filepath"`
	Method   string   `json:"method"`
	Columns  []string `json:"columns"`
}

// PreprocessResponse is returned after preprocessing.
type PreprocessResponse struct {
	Success       bool             `json:"success"`
	ProcessedPath string           `json:"processed_path"`
	Preview       []map[string]any `json:"preview"`
}

// SplitRequest names the file and target column. TestSize defaults to 0.2.
type SplitRequest struct {
	FilePath     string   `json:"filepath"`
	TestSize     *float64 `json:"test_size"`
	TargetColumn string   `json:"target_column"`
}

// SplitResponse is returned after splitting.
type SplitResponse struct {
	Success bool                `json:"success"`
	Split   *engine.SplitResult `json:"split"`
}
