package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// SocketName is the owner socket file inside $XDG_RUNTIME_DIR.
const SocketName = "lma.sock"

// ErrAlreadyRunning means a live owner answered on the socket.
var ErrAlreadyRunning = errors.New("assistant run already in progress")

// RuntimeSocketPath resolves $XDG_RUNTIME_DIR/lma.sock.
func RuntimeSocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, SocketName), nil
}

// Acquire makes this process the run owner by binding path. A socket left
// behind by a crashed owner is removed; a responsive owner yields
// ErrAlreadyRunning. A probe that neither connects nor is refused leaves the
// file alone.
func Acquire(ctx context.Context, path string, probeTimeout time.Duration, retries int) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	backoff := 25 * time.Millisecond
	for attempt := 0; ; attempt++ {
		listener, err := net.Listen("unix", path)
		if err == nil {
			if err := os.Chmod(path, 0o600); err != nil {
				_ = listener.Close()
				return nil, fmt.Errorf("restrict socket %s: %w", path, err)
			}
			return listener, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		alive, probeErr := Probe(ctx, path, probeTimeout)
		switch {
		case alive:
			return nil, ErrAlreadyRunning
		case probeErr != nil:
			return nil, fmt.Errorf("probe existing socket %s: %w", path, probeErr)
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
		}
		if attempt >= retries {
			return nil, fmt.Errorf("acquire socket %s: gave up after %d attempts", path, attempt+1)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
