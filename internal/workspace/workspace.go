// Package workspace manages the files LeapML writes: one directory per
// session under a data root, with atomic writes and content hashes.
//
// Every path accepted from a client is resolved against the data root and
// rejected if it escapes it.
package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
)

// Names of files derived from an input artifact.
const (
	ProcessedSuffix = "_processed"
	SplitsDir       = "splits"
	TrainFile       = "train_split.csv"
	TestFile        = "test_split.csv"
)

// Config holds workspace configuration.
type Config struct {
	// Root is the data root; it is created if missing.
	Root string

	// Mirror receives a copy of every written file. Nil disables mirroring.
	Mirror Mirror

	// Logger for debug output. Nil uses a discard logger.
	Logger *slog.Logger
}

// Workspace is the data root and the operations on files beneath it.
type Workspace struct {
	root   string
	mirror Mirror
	logger *slog.Logger
}

// Written describes a file after it has been written.
type Written struct {
	Path   string
	SHA256 string
	Size   int64
}

// New creates the data root if needed.
func New(cfg Config) (*Workspace, error) {
	if cfg.Root == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(cfg.Root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data root: %w", err)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data root: %w", err)
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return nil, fmt.Errorf("failed to resolve data root: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Workspace{root: root, mirror: cfg.Mirror, logger: logger}, nil
}

// Root returns the absolute data root.
func (w *Workspace) Root() string { return w.root }

// SessionDir returns the directory of a session, creating it if needed.
func (w *Workspace) SessionDir(sessionID string) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", core.Errorf(core.KindValidation, "workspace.SessionDir", "invalid session id %q", sessionID)
	}
	dir := filepath.Join(w.root, sessionID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", core.E(core.KindInternal, "workspace.SessionDir", err)
	}
	return dir, nil
}

// Resolve turns a client-supplied path into an absolute path of an existing
// file under the data root.
func (w *Workspace) Resolve(path string) (string, error) {
	const op = "workspace.Resolve"

	if strings.TrimSpace(path) == "" {
		return "", core.Errorf(core.KindValidation, op, "path is required")
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(w.root, abs)
	}
	abs = filepath.Clean(abs)
	if !w.contains(abs) {
		return "", core.Errorf(core.KindValidation, op, "path %q is outside the data directory", path)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", core.Errorf(core.KindNotFound, op, "file %q does not exist", path)
		}
		return "", core.E(core.KindInternal, op, err)
	}
	if !w.contains(resolved) {
		return "", core.Errorf(core.KindValidation, op, "path %q is outside the data directory", path)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", core.E(core.KindInternal, op, err)
	}
	if info.IsDir() {
		return "", core.Errorf(core.KindValidation, op, "path %q is a directory", path)
	}
	return resolved, nil
}

func (w *Workspace) contains(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SessionOf returns the session id owning a path under the root, or "".
func (w *Workspace) SessionOf(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	if _, err := uuid.Parse(first); err != nil {
		return ""
	}
	return first
}

// ProcessedPath returns the path of the processed copy of input:
// <dir>/<stem>_processed.csv.
func ProcessedPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	return filepath.Join(filepath.Dir(input), stem+ProcessedSuffix+".csv")
}

// NewSplitDir creates a fresh directory for one split of input:
// <dir>/splits/<split-id>.
func (w *Workspace) NewSplitDir(input string) (string, error) {
	dir := filepath.Join(filepath.Dir(input), SplitsDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", core.E(core.KindInternal, "workspace.NewSplitDir", err)
	}
	return dir, nil
}

// StagedUpload is an uploaded file written under a hidden name in its
// session directory, waiting to be committed or discarded.
type StagedUpload struct {
	Written
	Target string
}

// StageUpload writes r next to its final location under a hidden staging
// name that keeps the extension. An earlier upload with the same name stays
// untouched until Commit.
func (w *Workspace) StageUpload(ctx context.Context, sessionID, filename string, r io.Reader) (*StagedUpload, error) {
	const op = "workspace.StageUpload"

	name := SanitizeFilename(filename)
	if name == "" {
		return nil, core.Errorf(core.KindValidation, op, "invalid filename %q", filename)
	}

	dir, err := w.SessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	staging := filepath.Join(dir, ".staging-"+uuid.NewString()[:8]+"-"+name)
	written, err := w.writeFile(staging, func(dst io.Writer) error {
		_, err := io.Copy(dst, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &StagedUpload{Written: *written, Target: filepath.Join(dir, name)}, nil
}

// Commit renames a staged upload to its final name, replacing any earlier
// file there, and mirrors it.
func (w *Workspace) Commit(ctx context.Context, staged *StagedUpload) (*Written, error) {
	if err := os.Rename(staged.Path, staged.Target); err != nil {
		return nil, core.E(core.KindInternal, "workspace.Commit", err)
	}
	written := &Written{Path: staged.Target, SHA256: staged.SHA256, Size: staged.Size}
	w.mirrorFile(ctx, written.Path)
	return written, nil
}

// Discard removes a staged upload.
func (w *Workspace) Discard(staged *StagedUpload) error {
	return w.Remove(staged.Path)
}

// WriteTable writes table as CSV to path.
func (w *Workspace) WriteTable(ctx context.Context, path string, table *dataset.Table) (*Written, error) {
	return w.write(ctx, path, func(dst io.Writer) error {
		return dataset.WriteCSV(dst, table)
	})
}

// Remove deletes a file under the root. Missing files are ignored.
func (w *Workspace) Remove(path string) error {
	if !w.contains(filepath.Clean(path)) {
		return core.Errorf(core.KindValidation, "workspace.Remove", "path %q is outside the data directory", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.E(core.KindInternal, "workspace.Remove", err)
	}
	return nil
}

// write stores a file atomically and mirrors it.
func (w *Workspace) write(ctx context.Context, path string, fill func(io.Writer) error) (*Written, error) {
	written, err := w.writeFile(path, fill)
	if err != nil {
		return nil, err
	}
	w.mirrorFile(ctx, path)
	return written, nil
}

// writeFile fills a temp file in the target directory, then renames it into
// place, so readers never observe a partial file.
func (w *Workspace) writeFile(path string, fill func(io.Writer) error) (*Written, error) {
	const op = "workspace.write"

	if !w.contains(filepath.Clean(path)) {
		return nil, core.Errorf(core.KindValidation, op, "path %q is outside the data directory", path)
	}

	dir, base := filepath.Dir(path), filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	hash := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(tmp, hash)}
	if err := fill(counter); err != nil {
		return nil, core.E(core.KindInternal, op, fmt.Errorf("write %s: %w", base, err))
	}
	if err := tmp.Chmod(0o640); err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}

	written := &Written{Path: path, SHA256: hex.EncodeToString(hash.Sum(nil)), Size: counter.n}
	w.logger.Debug("file written", slog.String("path", path), slog.Int64("bytes", written.Size))
	return written, nil
}

func (w *Workspace) mirrorFile(ctx context.Context, path string) {
	if w.mirror == nil {
		return
	}
	key := filepath.ToSlash(strings.TrimPrefix(path, w.root+string(filepath.Separator)))
	if err := w.mirror.Put(ctx, key, path); err != nil {
		// The local copy is authoritative; a failed mirror only warns.
		w.logger.Warn("mirror upload failed", slog.String("key", key), slog.Any("error", err))
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
