// Package hypr wraps the hyprctl commands lma uses for windows, input, and notifications.
package hypr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rbright/lma/internal/fault"
)

const binary = "hyprctl"

// Available reports whether hyprctl is on PATH.
func Available() bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

func runHyprctl(ctx context.Context, args ...string) error {
	_, err := runHyprctlOutput(ctx, args...)
	return err
}

func runHyprctlOutput(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		err = fault.Classify(ctx, binary, err)
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return nil, fmt.Errorf("hyprctl %v failed: %w", args, err)
		}
		return nil, fmt.Errorf("hyprctl %v failed: %w (%s)", args, err, trimmed)
	}
	return out, nil
}
