package artifacts

import "github.com/leapstack-labs/leapml/pkg/core"

// ListResponse lists a session's artifacts.
type ListResponse struct {
	Artifacts []*core.Artifact `json:"artifacts"`
}

// LineageResponse lists an artifact and its ancestors, root first.
type LineageResponse struct {
	Lineage []*core.Artifact `json:"lineage"`
}

// RunsResponse lists a session's training runs.
type RunsResponse struct {
	Runs []*core.Run `json:"runs"`
}
