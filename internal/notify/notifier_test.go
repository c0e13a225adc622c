package notify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusIndicatorDispatchAndFocusedMonitorTracking(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{"hyprctl": `
if [ "$1" = "-j" ] && [ "$2" = "monitors" ]; then
  echo '[{"name":"DP-1","focused":true}]'
  exit 0
fi
printf '%s\n' "$*" >> "$ARGS_FILE"
`})

	n := New(quietConfig(), nil)
	n.ShowListening(context.Background())
	n.ShowThinking(context.Background())
	n.ShowError(context.Background(), "")
	n.Hide(context.Background())

	require.Equal(t, "DP-1", n.FocusedMonitor())

	lines := readLines(t, argsFile)
	require.Len(t, lines, 4)
	require.Equal(t, "--quiet dispatch notify 1 300000 rgb(89b4fa) Listening…", lines[0])
	require.Equal(t, "--quiet dispatch notify 1 300000 rgb(cba6f7) Thinking…", lines[1])
	require.Equal(t, "--quiet dispatch notify 3 1600 rgb(f38ba8) Assistant error", lines[2])
	require.Equal(t, "--quiet dispatch dismissnotify", lines[3])
}

func TestSendShowsResponseNotification(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{"hyprctl": `printf '%s\n' "$*" >> "$ARGS_FILE"`})

	New(quietConfig(), nil).Send(context.Background(), "  It is sunny.  ")

	require.Equal(t, []string{"--quiet dispatch notify 5 3000 rgb(a6e3a1) It is sunny."}, readLines(t, argsFile))
}

func TestSendSkipsEmptyText(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{"hyprctl": `printf '%s\n' "$*" >> "$ARGS_FILE"`})

	New(quietConfig(), nil).Send(context.Background(), "   ")

	_, err := os.Stat(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestSendSpeaksWithFallbackWhenPiperMissing(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{
		"hyprctl": `exit 0`,
		"espeak":  recordArgs,
	})

	cfg := quietConfig()
	cfg.TTS.Enable = true
	cfg.TTS.Engine = "piper"
	cfg.TTS.Fallback = "espeak"

	New(cfg, nil).Send(context.Background(), "hello there")

	lines := readLines(t, argsFile)
	require.Len(t, lines, 1)
	require.Equal(t, "espeak hello there", filepath.Base(lines[0]))
}

func TestDisabledNotifySkipsDispatch(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{"hyprctl": `printf '%s\n' "$*" >> "$ARGS_FILE"`})

	cfg := quietConfig()
	cfg.Notify.Enable = false

	n := New(cfg, nil)
	n.ShowListening(context.Background())
	n.ShowThinking(context.Background())
	n.ShowError(context.Background(), "ignored")
	n.Hide(context.Background())
	n.Send(context.Background(), "ignored")

	_, err := os.Stat(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestFocusedMonitorStaysEmptyWhenQueryFails(t *testing.T) {
	installStubs(t, map[string]string{"hyprctl": `exit 1`})

	n := New(quietConfig(), nil)
	n.ShowListening(context.Background())
	require.Empty(t, n.FocusedMonitor())
}

func TestErrorUsesZenityDialog(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{
		"zenity":  recordArgs,
		"hyprctl": recordArgs,
	})

	New(quietConfig(), nil).Error(context.Background(), "Command failed with code 2")

	lines := readLines(t, argsFile)
	require.Len(t, lines, 1)
	require.Equal(t, "zenity --error --title Error --text Command failed with code 2 --width 400", filepath.Base(lines[0]))
}

func TestErrorFallsBackToNotificationWithoutZenity(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{"hyprctl": `printf '%s\n' "$*" >> "$ARGS_FILE"`})

	New(quietConfig(), nil).Error(context.Background(), "boom")

	require.Equal(t, []string{"--quiet dispatch notify 3 1600 rgb(f38ba8) Error: boom"}, readLines(t, argsFile))
}

func TestDesktopBackendReplacesStatusNotification(t *testing.T) {
	argsFile := argsLog(t)
	installStubs(t, map[string]string{"busctl": `
printf '%s\n' "$*" >> "$ARGS_FILE"
echo "u 42"
`})

	cfg := quietConfig()
	cfg.Notify.Backend = "desktop"

	n := New(cfg, nil)
	n.ShowListening(context.Background())
	n.ShowThinking(context.Background())
	n.Hide(context.Background())

	lines := readLines(t, argsFile)
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "Notify susssasa{sv}i lma 0  Assistant Listening…")
	require.Contains(t, lines[1], "Notify susssasa{sv}i lma 42  Assistant Thinking…")
	require.Contains(t, lines[2], "CloseNotification u 42")
}
