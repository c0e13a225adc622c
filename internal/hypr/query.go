package hypr

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ActiveWindow contains the fields needed for shortcut dispatch targeting.
type ActiveWindow struct {
	Address      string `json:"address"`
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
}

// Monitor is one output in Hyprland's global layout. Width and Height are in
// physical pixels, which is what screenshots of the output contain.
type Monitor struct {
	Name    string  `json:"name"`
	Focused bool    `json:"focused"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Scale   float64 `json:"scale"`
}

// ToLayout maps pixel coordinates within a screenshot of m onto global layout
// coordinates, undoing the output scale.
func (m Monitor) ToLayout(x int, y int) (int, int) {
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	return m.X + int(math.Round(float64(x)/scale)), m.Y + int(math.Round(float64(y)/scale))
}

// QueryActiveWindow fetches and validates the active-window contract from hyprctl.
func QueryActiveWindow(ctx context.Context) (ActiveWindow, error) {
	output, err := runHyprctlJSON(ctx, "activewindow")
	if err != nil {
		return ActiveWindow{}, err
	}

	var window ActiveWindow
	if err := json.Unmarshal(output, &window); err != nil {
		return ActiveWindow{}, fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}
	window.Address = strings.TrimSpace(window.Address)
	window.Class = strings.TrimSpace(window.Class)
	window.InitialClass = strings.TrimSpace(window.InitialClass)
	if window.Address == "" {
		return ActiveWindow{}, fmt.Errorf("hyprctl activewindow returned empty address")
	}
	return window, nil
}

// QueryFocusedMonitor returns the focused monitor name.
func QueryFocusedMonitor(ctx context.Context) (string, error) {
	mon, err := QueryFocusedOutput(ctx)
	if err != nil {
		return "", err
	}
	return mon.Name, nil
}

// QueryFocusedOutput returns the focused monitor, or the first one when
// Hyprland reports none as focused.
func QueryFocusedOutput(ctx context.Context) (Monitor, error) {
	output, err := runHyprctlJSON(ctx, "monitors")
	if err != nil {
		return Monitor{}, err
	}

	var monitors []Monitor
	if err := json.Unmarshal(output, &monitors); err != nil {
		return Monitor{}, fmt.Errorf("decode hyprctl monitors json: %w", err)
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("hyprctl monitors returned no outputs")
	}

	focused := monitors[0]
	for _, mon := range monitors {
		if mon.Focused {
			focused = mon
			break
		}
	}
	focused.Name = strings.TrimSpace(focused.Name)
	return focused, nil
}

// MoveCursor warps the pointer to x, y.
func MoveCursor(ctx context.Context, x int, y int) error {
	return runHyprctl(ctx, "--quiet", "dispatch", "movecursor", strconv.Itoa(x), strconv.Itoa(y))
}

// SendShortcut sends a literal hyprctl sendshortcut payload.
func SendShortcut(ctx context.Context, shortcut string) error {
	shortcut = strings.TrimSpace(shortcut)
	if shortcut == "" {
		return fmt.Errorf("sendshortcut requires a non-empty payload")
	}
	return runHyprctl(ctx, "--quiet", "dispatch", "sendshortcut", shortcut)
}

// Notify sends a Hyprland notification payload.
func Notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if strings.TrimSpace(color) == "" {
		color = "rgb(89b4fa)"
	}
	return runHyprctl(
		ctx,
		"--quiet",
		"dispatch",
		"notify",
		strconv.Itoa(icon),
		strconv.Itoa(timeoutMS),
		color,
		text,
	)
}

// DismissNotify dismisses active Hyprland notifications.
func DismissNotify(ctx context.Context) error {
	return runHyprctl(ctx, "--quiet", "dispatch", "dismissnotify")
}

func runHyprctlJSON(ctx context.Context, target string) ([]byte, error) {
	return runHyprctlOutput(ctx, "-j", target)
}
