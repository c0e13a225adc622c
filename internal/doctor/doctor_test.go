package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/lma/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
		{Name: "three", Pass: false, Optional: true, Message: "meh"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
	require.Contains(t, text, "[WARN] three: meh")
}

func TestReportOKIgnoresOptionalFailures(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Optional: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "wayland")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.EqualFold(v, "wayland") },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(config.CommandConfig{}, "clipboard_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestOptionalAppendsFallbackOnFailure(t *testing.T) {
	check := optional(checkBinary("definitely-not-a-real-binary", "unused"), "uses the terminal")
	require.True(t, check.Optional)
	require.Contains(t, check.Message, "; uses the terminal")

	check = optional(checkBinary("sh", "shell"), "unused")
	require.True(t, check.Pass)
	require.NotContains(t, check.Message, "unused;")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-bin")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env bash\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand(config.CommandConfig{Argv: []string{"fake-bin", "--arg"}}, "clipboard_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "clipboard_cmd command is available")
}

func TestCheckSpeechSkippedWhenDisabled(t *testing.T) {
	require.Empty(t, checkSpeech(config.TTSConfig{Enable: false, Engine: "piper"}))

	checks := checkSpeech(config.TTSConfig{Enable: true, Engine: "definitely-not-piper", Fallback: "sh"})
	require.Len(t, checks, 2)
	require.False(t, checks[0].Pass)
	require.True(t, checks[0].Optional)
	require.True(t, checks[1].Pass)
}

func TestCheckAPIKey(t *testing.T) {
	check := checkAPIKey(config.LLMConfig{Mode: "remote"})
	require.False(t, check.Pass)
	require.False(t, check.Optional)

	check = checkAPIKey(config.LLMConfig{Mode: "local"})
	require.False(t, check.Pass)
	require.True(t, check.Optional)

	check = checkAPIKey(config.LLMConfig{Mode: "remote", OpenAIAPIKey: "sk-test"})
	require.True(t, check.Pass)
	require.NotContains(t, check.Message, "sk-test")
}

func TestCheckLocalLLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte("Ollama is running"))
	}))
	t.Cleanup(server.Close)

	check := checkLocalLLM(context.Background(), config.LLMConfig{Mode: "local", LocalEndpoint: server.URL + "/api/generate"})
	require.True(t, check.Pass)
	require.False(t, check.Optional)
	require.Contains(t, check.Message, "reachable at")

	check = checkLocalLLM(context.Background(), config.LLMConfig{Mode: "remote", LocalEndpoint: "::bad"})
	require.False(t, check.Pass)
	require.True(t, check.Optional)
}

func TestCheckRivaReadySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/health/ready", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Riva.HTTP = strings.TrimPrefix(server.URL, "http://")
	cfg.Riva.HealthPath = "/v1/health/ready"

	check := checkRivaReady(context.Background(), cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "ready at")
}

func TestCheckRivaReadyFailureStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Riva.HTTP = strings.TrimPrefix(server.URL, "http://")
	cfg.Riva.HealthPath = "/v1/health/ready"

	check := checkRivaReady(context.Background(), cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 503")
}

func TestCheckRivaReadyPassesOnHTTP200NonReadyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("warming-up"))
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Riva.HTTP = strings.TrimPrefix(server.URL, "http://")
	cfg.Riva.HealthPath = "/v1/health/ready"

	check := checkRivaReady(context.Background(), cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 200")
}

func TestCheckRivaReadyEmptyBaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.Riva.HTTP = ""

	check := checkRivaReady(context.Background(), cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "riva.http is empty")
}

func TestCheckRivaGRPCEmptyEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Riva.GRPC = " "

	check := checkRivaGRPC(context.Background(), cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "riva.grpc is empty")
}

func TestCheckAudioSelectionFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioSelection(context.Background(), config.Default())
	require.False(t, check.Pass)
	require.Contains(t, check.Name, "audio.device")
}

func TestRunReportsToolsAndBackends(t *testing.T) {
	binDir := t.TempDir()
	for _, name := range []string{"hyprctl", "fake-copy", "fake-select"} {
		require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	}
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc123")

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Raw: "fake-copy", Argv: []string{"fake-copy"}}
	cfg.SelectionCmd = config.CommandConfig{Raw: "fake-select", Argv: []string{"fake-select"}}
	cfg.Riva.HTTP = ""
	cfg.Riva.GRPC = ""
	cfg.LLM.LocalEndpoint = ""

	report := Run(context.Background(), config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})
	require.False(t, report.OK())

	names := map[string]Check{}
	for _, check := range report.Checks {
		names[check.Name] = check
	}
	require.True(t, names["hyprctl"].Pass)
	require.True(t, names["fake-copy"].Pass)
	require.True(t, names["fake-select"].Pass)
	require.Contains(t, names, "llm.openai_api_key")
	require.Contains(t, names, "llm.local_endpoint")
	require.Contains(t, names, "riva.ready")
	require.Contains(t, names, "riva.grpc")
	require.Contains(t, names, "audio.device")
	require.True(t, names["zenity"].Optional)
}
