// Package core defines the shared language of the LeapML system.
//
// This package contains:
//   - The error taxonomy (Kind, Error) shared by every pipeline stage
//   - Persisted entities (Artifact, Run)
//   - Service interfaces (Store)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
