// Package filemanager reads and writes YAML state files under a process-safe
// lock. chatsweep uses it for its configuration and operation history, both
// of which may be touched by a foreground command and a scheduled run at the
// same time.
package filemanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// ErrLockTimeout is returned when acquiring a file lock times out
var ErrLockTimeout = errors.New("timeout acquiring file lock")

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryInterval  = 50 * time.Millisecond
	lockSuffix         = ".lock"
)

// UpdateFunc modifies data in place
type UpdateFunc[T any] func(data *T) error

// Manager provides locked YAML file access for values of type T
type Manager[T any] struct {
	lockTimeout time.Duration
	perm        os.FileMode
}

// NewManager creates a file manager with a 5s lock timeout
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{
		lockTimeout: defaultLockTimeout,
		perm:        0o600,
	}
}

// NewManagerWithTimeout creates a file manager with a custom lock timeout
func NewManagerWithTimeout[T any](timeout time.Duration) *Manager[T] {
	m := NewManager[T]()
	m.lockTimeout = timeout
	return m
}

// LockPath returns the sidecar lock file guarding path
func LockPath(path string) string {
	return path + lockSuffix
}

// withLock runs fn while holding the sidecar lock for path. The lock lives
// next to the data file so the atomic rename in write never swaps the
// locked inode.
func (m *Manager[T]) withLock(ctx context.Context, path string, exclusive bool, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock := flock.New(LockPath(path))

	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = lock.TryLockContext(lockCtx, lockRetryInterval)
	} else {
		locked, err = lock.TryRLockContext(lockCtx, lockRetryInterval)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrLockTimeout
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

// Read loads path under a shared lock. A missing file returns an error
// satisfying errors.Is(err, os.ErrNotExist).
func (m *Manager[T]) Read(ctx context.Context, path string) (*T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	var result *T
	err := m.withLock(ctx, path, false, func() error {
		var err error
		result, err = m.read(path)
		return err
	})
	return result, err
}

// Write replaces path atomically under an exclusive lock
func (m *Manager[T]) Write(ctx context.Context, path string, data *T) error {
	return m.withLock(ctx, path, true, func() error {
		return m.write(path, data)
	})
}

// Update applies fn to the current contents of path and writes the result
// back, holding the exclusive lock for the whole cycle. A missing file
// starts from the zero value of T.
func (m *Manager[T]) Update(ctx context.Context, path string, fn UpdateFunc[T]) error {
	return m.withLock(ctx, path, true, func() error {
		data, err := m.read(path)
		if errors.Is(err, os.ErrNotExist) {
			data = new(T)
		} else if err != nil {
			return err
		}

		if err := fn(data); err != nil {
			return fmt.Errorf("update function failed: %w", err)
		}

		return m.write(path, data)
	})
}

// Delete removes path under an exclusive lock. Removing a missing file is
// not an error.
func (m *Manager[T]) Delete(ctx context.Context, path string) error {
	return m.withLock(ctx, path, true, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	})
}

func (m *Manager[T]) read(path string) (*T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var result T
	if err := yaml.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return &result, nil
}

func (m *Manager[T]) write(path string, data *T) error {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}

	tempFile := fmt.Sprintf("%s.%d.%d.tmp", path, os.Getpid(), time.Now().UnixNano())
	f, err := os.OpenFile(tempFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, m.perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	_ = f.Sync()
	if err := f.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
