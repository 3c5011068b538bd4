// Package fileutil writes export and download files safely: under an
// advisory lock, through a temporary file renamed into place.
package fileutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Constants for file locking
const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// Writer writes files under a lock. The zero value uses flock.
type Writer struct {
	Locks LockFactory
}

// WriteFileLocked writes path with the content produced by write. A
// "<path>.lock" file guards against a concurrent writer of the same path;
// readers never see a partial file because the content goes to a temporary
// file first.
func WriteFileLocked(ctx context.Context, path string, write func(io.Writer) error) error {
	return Writer{}.Write(ctx, path, write)
}

// Write implements WriteFileLocked
func (w Writer) Write(ctx context.Context, path string, write func(io.Writer) error) error {
	locks := w.Locks
	if locks == nil {
		locks = FlockFactory{}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	lockPath := path + ".lock"
	lock := locks.New(lockPath)
	if err := acquire(ctx, lock); err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// acquire attempts to acquire an exclusive file lock with retry logic
func acquire(ctx context.Context, lock FileLock) error {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	for i := 0; i < lockMaxRetries; i++ {
		locked, err := lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return err
		}
		if locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return fmt.Errorf("lock still held after %d attempts", lockMaxRetries)
}

// UniquePath returns dir/name, or dir/"stem (n).ext" with the smallest n
// that does not exist yet
func UniquePath(dir, name string) string {
	return uniquePath(dir, name, func(string) bool { return false })
}

func uniquePath(dir, name string, taken func(string) bool) string {
	free := func(path string) bool {
		if taken(path) {
			return false
		}
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}
	candidate := filepath.Join(dir, name)
	if free(candidate) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if free(candidate) {
			return candidate
		}
	}
}

// Names hands out unique paths in one directory to concurrent writers.
// A name counts as taken once it exists on disk or was handed out.
type Names struct {
	dir   string
	mu    sync.Mutex
	taken map[string]bool
}

// NewNames creates a name allocator for dir
func NewNames(dir string) *Names {
	return &Names{dir: dir, taken: make(map[string]bool)}
}

// Reserve returns a path for name that no other caller will receive
func (n *Names) Reserve(name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	path := uniquePath(n.dir, SafeName(name), func(p string) bool { return n.taken[p] })
	n.taken[path] = true
	return path
}

// SafeName strips directory components from a server supplied file name
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "attachment"
	}
	return name
}
