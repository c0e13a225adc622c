package desktop

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeEchoScript(t *testing.T, output string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "echo.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\nprintf '%s' \"" + output + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T, message string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fail.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\necho " + "\"" + message + "\"" + " >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func installHyprctlStub(t *testing.T) string {
	t.Helper()

	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)

	dir := t.TempDir()
	path := filepath.Join(dir, "hyprctl")
	script := `#!/usr/bin/env bash
set -euo pipefail
if [[ "${1:-}" == "-j" && "${2:-}" == "activewindow" ]]; then
  if [[ -n "${HYPR_ACTIVEWINDOW_JSON:-}" ]]; then
    echo "${HYPR_ACTIVEWINDOW_JSON}"
  else
    echo '{"address":"0xabc","class":"ghostty","initialClass":"ghostty"}'
  fi
  exit 0
fi
if [[ "${1:-}" == "-j" && "${2:-}" == "monitors" ]]; then
  if [[ -n "${HYPR_MONITORS_JSON:-}" ]]; then
    echo "${HYPR_MONITORS_JSON}"
  else
    echo '[{"name":"eDP-1","focused":true,"x":0,"y":0,"scale":1}]'
  fi
  exit 0
fi
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(script)+"\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return argsFile
}
