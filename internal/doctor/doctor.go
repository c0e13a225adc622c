// Package doctor runs runtime readiness diagnostics for config, tools, audio, Riva, and the LLM backends.
package doctor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/lma/internal/audio"
	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/riva"
)

const probeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
	// Optional failures have a working fallback and do not fail the report.
	Optional bool
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all required checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass && !check.Optional {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		switch {
		case check.Pass:
		case check.Optional:
			status = "WARN"
		default:
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkEnv("XDG_SESSION_TYPE", func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), "wayland")
	}, "session type is wayland", "expected XDG_SESSION_TYPE=wayland"))

	checks = append(checks, checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"))

	c := cfg.Config
	checks = append(checks, checkBinary("hyprctl", "cursor, shortcuts, and notifications"))
	checks = append(checks, checkCommand(c.Clipboard, "clipboard_cmd"))
	checks = append(checks, checkCommand(c.SelectionCmd, "selection_cmd"))
	checks = append(checks, optional(checkCommand(c.ScreenshotCmd, "screenshot_cmd"), "activate falls back to text-only prompts"))
	checks = append(checks, checkCommand(c.TypeCmd, "type_cmd"))
	checks = append(checks, checkCommand(c.ClickCmd, "click_cmd"))
	checks = append(checks, optional(checkBinary("zenity", "dialogs"), "confirmation falls back to a terminal prompt"))
	checks = append(checks, checkSpeech(c.TTS)...)

	checks = append(checks, checkAPIKey(c.LLM))
	checks = append(checks, checkLocalLLM(ctx, c.LLM))

	checks = append(checks, checkAudioSelection(ctx, c))
	checks = append(checks, checkRivaReady(ctx, c))
	checks = append(checks, checkRivaGRPC(ctx, c))

	return Report{Checks: checks}
}

// optional marks a check as non-fatal and names its fallback on failure.
func optional(check Check, fallback string) Check {
	check.Optional = true
	if !check.Pass {
		check.Message = check.Message + "; " + fallback
	}
	return check
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that a configured command resolves on PATH.
func checkCommand(cmd config.CommandConfig, name string) Check {
	bin := cmd.Binary()
	if bin == "" {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(bin, fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkSpeech reports the TTS engines; speech is always optional.
func checkSpeech(cfg config.TTSConfig) []Check {
	if !cfg.Enable {
		return nil
	}
	var checks []Check
	for _, engine := range []string{cfg.Engine, cfg.Fallback} {
		engine = strings.TrimSpace(engine)
		if engine == "" {
			continue
		}
		checks = append(checks, optional(checkBinary(engine, "text to speech"), "responses stay silent"))
	}
	return checks
}

// checkAPIKey requires a remote key unless the local backend is primary.
func checkAPIKey(cfg config.LLMConfig) Check {
	check := Check{Name: "llm.openai_api_key", Pass: strings.TrimSpace(cfg.OpenAIAPIKey) != ""}
	if check.Pass {
		check.Message = "remote API key configured"
	} else {
		check.Message = "remote API key is empty (set llm.openai_api_key, secrets_file, or OPENAI_API_KEY)"
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Mode), "local") {
		return optional(check, "local backend is primary")
	}
	return check
}

// checkLocalLLM probes the local inference server root.
func checkLocalLLM(ctx context.Context, cfg config.LLMConfig) Check {
	check := probeHTTP(ctx, "llm.local_endpoint", cfg.LocalEndpoint)
	if strings.EqualFold(strings.TrimSpace(cfg.Mode), "local") {
		return check
	}
	return optional(check, "only used as fallback")
}

func probeHTTP(ctx context.Context, name string, endpoint string) Check {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || parsed.Host == "" {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("invalid endpoint %q", endpoint)}
	}
	root := parsed.Scheme + "://" + parsed.Host + "/"

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root, nil)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, root)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("reachable at %s", root)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkRivaReady probes the configured Riva HTTP ready endpoint.
func checkRivaReady(ctx context.Context, cfg config.Config) Check {
	base := strings.TrimSpace(cfg.Riva.HTTP)
	if base == "" {
		return Check{Name: "riva.ready", Pass: false, Message: "riva.http is empty"}
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	url := strings.TrimRight(base, "/") + cfg.Riva.HealthPath
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Check{Name: "riva.ready", Pass: false, Message: err.Error()}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Check{Name: "riva.ready", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Check{Name: "riva.ready", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
	}

	bodyText := strings.ToLower(strings.TrimSpace(string(body)))
	if bodyText != "" && !strings.Contains(bodyText, "ready") {
		return Check{Name: "riva.ready", Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
	}

	return Check{Name: "riva.ready", Pass: true, Message: fmt.Sprintf("ready at %s", url)}
}

// checkRivaGRPC dials the recognizer endpoint and waits for the channel to be ready.
func checkRivaGRPC(ctx context.Context, cfg config.Config) Check {
	endpoint := strings.TrimSpace(cfg.Riva.GRPC)
	if endpoint == "" {
		return Check{Name: "riva.grpc", Pass: false, Message: "riva.grpc is empty"}
	}
	client, err := riva.Dial(ctx, riva.Config{Endpoint: endpoint, DialTimeout: probeTimeout})
	if err != nil {
		return Check{Name: "riva.grpc", Pass: false, Message: err.Error()}
	}
	_ = client.Close()
	return Check{Name: "riva.grpc", Pass: true, Message: fmt.Sprintf("connected to %s", endpoint)}
}
