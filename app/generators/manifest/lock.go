package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LockFileName is the advisory lock kept next to the manifest.
const LockFileName = ".routegen.lock"

const (
	lockPollInterval = 100 * time.Millisecond
	staleLockAge     = 10 * time.Minute
)

// ErrLocked is returned when another run holds the lock past the timeout.
var ErrLocked = errors.New("manifest locked by another run")

// Lock serializes runs against the same output root. It is advisory: only
// processes that use it are kept out.
type Lock struct {
	path string
}

// AcquireLock takes the lock file in dir, retrying until timeout elapses.
// A lock older than ten minutes is considered abandoned and taken over.
func AcquireLock(ctx context.Context, dir, owner string, timeout time.Duration) (*Lock, error) {
	path := filepath.Join(dir, LockFileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%s pid=%d\n", owner, os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("write lock file: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		if st, serr := os.Stat(path); serr == nil && time.Since(st.ModTime()) > staleLockAge {
			breakStaleLock(path)
			continue
		}

		if !time.Now().Before(deadline) {
			holder, _ := os.ReadFile(path)
			return nil, fmt.Errorf("%w: %s held by %s", ErrLocked, path, strings.TrimSpace(string(holder)))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// breakStaleLock moves an abandoned lock aside under a unique name and only
// then checks its age. When another waiter replaced the abandoned lock in the
// meantime, the moved file is live and is linked back, failing if a third run
// already holds path.
func breakStaleLock(path string) {
	aside := path + ".stale-" + uuid.NewString()
	if err := os.Rename(path, aside); err != nil {
		return
	}
	defer os.Remove(aside)

	st, err := os.Stat(aside)
	if err != nil || time.Since(st.ModTime()) > staleLockAge {
		return
	}
	os.Link(aside, path)
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
