package notify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/lma/internal/config"
	"github.com/stretchr/testify/require"
)

// installStubs puts the given scripts on an isolated PATH. Scripts run under
// /bin/sh and may only rely on shell builtins.
func installStubs(t *testing.T, stubs map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, body := range stubs {
		path := filepath.Join(dir, name)
		script := "#!/bin/sh\n" + strings.TrimSpace(body) + "\n"
		require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	}
	t.Setenv("PATH", dir)
	return dir
}

func argsLog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "args.log")
	t.Setenv("ARGS_FILE", path)
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

const recordArgs = `printf '%s\n' "$0 $*" >> "$ARGS_FILE"`

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Notify.SoundEnable = false
	cfg.TTS.Enable = false
	return cfg
}
