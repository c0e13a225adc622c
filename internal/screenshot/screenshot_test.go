package screenshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/fault"
	"github.com/stretchr/testify/require"
)

func writeGrimStub(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "grim")
	script := "#!/bin/sh\n" + strings.TrimSpace(body) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newCapturer(t *testing.T, argv ...string) *Capturer {
	t.Helper()

	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	cfg := config.Default()
	cfg.ScreenshotCmd = config.CommandConfig{Argv: argv}
	return New(cfg)
}

func TestCaptureWritesFocusedMonitor(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.log")
	t.Setenv("ARGS_FILE", argsFile)
	stub := writeGrimStub(t, `
printf '%s\n' "$*" > "$ARGS_FILE"
for last; do :; done
printf 'png' > "$last"
`)

	c := newCapturer(t, stub)
	path, err := c.Capture(context.Background(), "DP-1")
	require.NoError(t, err)
	require.Equal(t, RuntimeDir(), filepath.Dir(path))
	require.True(t, strings.HasPrefix(filepath.Base(path), "screenshot-"))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "-o DP-1 "+path, strings.TrimSpace(string(data)))
}

func TestCaptureWithoutMonitorCapturesAllOutputs(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.log")
	t.Setenv("ARGS_FILE", argsFile)
	stub := writeGrimStub(t, `
printf '%s\n' "$*" > "$ARGS_FILE"
printf 'png' > "$1"
`)

	path, err := newCapturer(t, stub).Capture(context.Background(), "")
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, path, strings.TrimSpace(string(data)))
}

func TestCaptureMissingToolIsToolNotFound(t *testing.T) {
	_, err := newCapturer(t, "lma-missing-grim").Capture(context.Background(), "DP-1")
	require.Error(t, err)
	require.True(t, fault.IsToolNotFound(err))
}

func TestCaptureFailureRemovesFile(t *testing.T) {
	stub := writeGrimStub(t, `
echo "no outputs" >&2
exit 1
`)

	c := newCapturer(t, stub)
	_, err := c.Capture(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no outputs")

	entries, readErr := os.ReadDir(RuntimeDir())
	require.NoError(t, readErr)
	require.Empty(t, entries)
}

func TestCaptureRejectsEmptyFile(t *testing.T) {
	stub := writeGrimStub(t, `: > "$1"`)

	_, err := newCapturer(t, stub).Capture(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty file")
}
