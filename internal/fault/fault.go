// Package fault defines the error kinds shared by external-tool adapters.
package fault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

var (
	// ErrBackendUnavailable marks a remote service that could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrToolNotFound marks a missing external binary.
	ErrToolNotFound = errors.New("tool not found")
	// ErrTimeout marks an operation cut off by its deadline.
	ErrTimeout = errors.New("timed out")
)

// Classify maps a raw exec/context error onto one of the package kinds.
// A missing binary shows up as exec.ErrNotFound for PATH lookups and ENOENT for absolute paths.
// Errors that match no kind are returned unchanged.
func Classify(ctx context.Context, name string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w: %w", name, ErrToolNotFound, err)
	case errors.Is(err, context.DeadlineExceeded),
		ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", name, ErrTimeout, err)
	default:
		return err
	}
}

// IsToolNotFound reports whether err carries ErrToolNotFound.
func IsToolNotFound(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}

// IsTimeout reports whether err carries ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
