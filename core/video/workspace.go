package video

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
)

const sessionPrefix = "session-"

// workspace is a per-process scratch directory under root. Its sibling lock
// file is held for the lifetime of the session so other processes can tell
// live sessions from ones left behind by a crash.
type workspace struct {
	dir  string
	lock *flock.Flock
}

func openWorkspace(root string, logger *slog.Logger) (*workspace, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	sweepStale(root, logger)

	name := sessionPrefix + uuid.NewString()
	lock := flock.New(filepath.Join(root, name+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock workspace: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("workspace %s is locked by another process", name)
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &workspace{dir: dir, lock: lock}, nil
}

// entry returns a fresh input/output path pair. Paths are unique per call
// so concurrent operations never share files.
func (w *workspace) entry(ext string) (in, out string) {
	id := uuid.NewString()
	return filepath.Join(w.dir, id+"-in"+ext), filepath.Join(w.dir, id+"-out"+ext)
}

func (w *workspace) Close() error {
	err := os.RemoveAll(w.dir)
	_ = os.Remove(w.lock.Path())
	if uerr := w.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

// sweepStale removes session directories whose lock nobody holds.
func sweepStale(root string, logger *slog.Logger) {
	matches, err := filepath.Glob(filepath.Join(root, sessionPrefix+"*.lock"))
	if err != nil {
		return
	}
	for _, path := range matches {
		lock := flock.New(path)
		ok, err := lock.TryLock()
		if err != nil || !ok {
			continue
		}
		dir := strings.TrimSuffix(path, ".lock")
		if err := os.RemoveAll(dir); err != nil {
			logger.Debug("stale workspace not removed", logging.String("dir", dir), logging.Error(err))
		} else {
			logger.Debug("removed stale workspace", logging.String("dir", dir))
		}
		_ = os.Remove(path)
		_ = lock.Unlock()
	}
}
