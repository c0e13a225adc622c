package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/hypr"
)

const (
	typeTimeout   = 5 * time.Second
	hotkeyTimeout = 1200 * time.Millisecond
)

// Keyboard injects text and key combinations into the focused window.
type Keyboard struct {
	typeArgv []string
	logger   *slog.Logger
}

// NewKeyboard builds a keyboard adapter using type_cmd for text entry.
func NewKeyboard(cfg config.Config, logger *slog.Logger) *Keyboard {
	return &Keyboard{typeArgv: cfg.TypeCmd.Argv, logger: logger}
}

// TypeText streams text to the type command on stdin.
func (k *Keyboard) TypeText(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, typeTimeout)
	defer cancel()
	if err := runCommandWithInput(ctx, k.typeArgv, text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

// SendHotkey dispatches keys (modifiers first, one final key) to the active window.
func (k *Keyboard) SendHotkey(ctx context.Context, keys []string) error {
	ctx, cancel := context.WithTimeout(ctx, hotkeyTimeout)
	defer cancel()

	window, err := activeWindowWithRetry(ctx, 5, 10*time.Millisecond)
	if err != nil {
		return err
	}

	payload, err := buildShortcut(keys, window.Address)
	if err != nil {
		return err
	}
	return hypr.SendShortcut(ctx, payload)
}

var modifierNames = map[string]string{
	"ctrl":    "CTRL",
	"control": "CTRL",
	"shift":   "SHIFT",
	"alt":     "ALT",
	"super":   "SUPER",
	"win":     "SUPER",
	"meta":    "SUPER",
	"cmd":     "SUPER",
}

var keyNames = map[string]string{
	"enter":     "Return",
	"return":    "Return",
	"esc":       "Escape",
	"escape":    "Escape",
	"tab":       "Tab",
	"space":     "space",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"del":       "Delete",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Prior",
	"pagedown":  "Next",
}

// buildShortcut renders keys as a hyprctl sendshortcut payload "MODS,KEY,address:ADDR".
func buildShortcut(keys []string, windowAddress string) (string, error) {
	address := strings.TrimSpace(windowAddress)
	if address == "" {
		return "", fmt.Errorf("active window address is required")
	}

	var (
		mods []string
		key  string
	)
	for _, raw := range keys {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if mod, ok := modifierNames[name]; ok {
			mods = append(mods, mod)
			continue
		}
		if key != "" {
			return "", fmt.Errorf("hotkey %q has more than one non-modifier key", strings.Join(keys, "+"))
		}
		key = keyName(name)
	}
	if key == "" {
		return "", fmt.Errorf("hotkey %q has no non-modifier key", strings.Join(keys, "+"))
	}

	return fmt.Sprintf("%s,%s,address:%s", strings.Join(mods, " "), key, address), nil
}

func keyName(name string) string {
	if mapped, ok := keyNames[name]; ok {
		return mapped
	}
	return strings.ToUpper(name)
}

func activeWindowWithRetry(ctx context.Context, attempts int, delay time.Duration) (hypr.ActiveWindow, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		window, err := hypr.QueryActiveWindow(ctx)
		if err == nil {
			return window, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return hypr.ActiveWindow{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("active window unavailable")
	}
	return hypr.ActiveWindow{}, fmt.Errorf("resolve active window: %w", lastErr)
}
