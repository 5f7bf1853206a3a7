// Package domfile reads and writes Dom documents on disk.
//
// Every access takes an advisory lock on a sibling ".lock" file: shared for
// reads, exclusive for writes. Writes go to a temporary file in the same
// directory and are renamed into place, so readers never see a partial
// document.
package domfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/roach88/appdom/internal/dom"
)

// LockTimeout bounds how long Read and Write wait for the lock.
const LockTimeout = 3 * time.Second

const retryInterval = 50 * time.Millisecond

// ErrLocked is returned when the lock could not be acquired in time.
var ErrLocked = errors.New("file is locked")

// LockPath returns the lock file guarding path.
func LockPath(path string) string {
	return path + ".lock"
}

// Read decodes the Dom stored at path, running migrations first.
func Read(ctx context.Context, path string, migrations ...dom.Migration) (*dom.Dom, error) {
	data, err := ReadBytes(ctx, path)
	if err != nil {
		return nil, err
	}
	d, err := dom.Decode(data, migrations...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ReadBytes returns the raw contents of path under a shared lock.
func ReadBytes(ctx context.Context, path string) ([]byte, error) {
	lock := flock.New(LockPath(path))
	if err := acquire(ctx, path, lock.TryRLockContext); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write encodes d canonically and replaces the file at path.
func Write(ctx context.Context, path string, d *dom.Dom) error {
	data, err := dom.Encode(d)
	if err != nil {
		return err
	}
	return WriteBytes(ctx, path, data)
}

// WritePatch encodes p canonically and replaces the file at path.
func WritePatch(ctx context.Context, path string, p dom.Patch) error {
	data, err := dom.EncodePatch(p)
	if err != nil {
		return err
	}
	return WriteBytes(ctx, path, data)
}

// ReadPatch decodes the patch stored at path.
func ReadPatch(ctx context.Context, path string) (dom.Patch, error) {
	data, err := ReadBytes(ctx, path)
	if err != nil {
		return dom.Patch{}, err
	}
	p, err := dom.DecodePatch(data)
	if err != nil {
		return dom.Patch{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WriteBytes atomically replaces path with data under an exclusive lock.
func WriteBytes(ctx context.Context, path string, data []byte) error {
	lock := flock.New(LockPath(path))
	if err := acquire(ctx, path, lock.TryLockContext); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func acquire(ctx context.Context, path string, try func(context.Context, time.Duration) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	locked, err := try(ctx, retryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return nil
}
