// Package desktop drives clipboard, keyboard, and mouse side effects through Wayland tools.
package desktop

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rbright/lma/internal/fault"
)

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], fault.Classify(ctx, argv[0], err))
	}

	var writeErr error
	if input != "" {
		_, writeErr = stdin.Write([]byte(input))
	}
	_ = stdin.Close()

	// A child that exits without draining stdin breaks the pipe; its exit status wins.
	if err := cmd.Wait(); err != nil {
		return commandError(ctx, argv[0], err, stderr.String())
	}
	if writeErr != nil {
		return fmt.Errorf("write stdin for %s: %w", argv[0], writeErr)
	}
	return nil
}

// runCommandOutput executes argv and returns its stdout.
func runCommandOutput(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("command argv cannot be empty")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", commandError(ctx, argv[0], err, stderr.String())
	}
	return stdout.String(), nil
}

func commandError(ctx context.Context, name string, err error, stderr string) error {
	err = fault.Classify(ctx, name, err)
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		return fmt.Errorf("%s: %w (%s)", name, err, trimmed)
	}
	return fmt.Errorf("%s: %w", name, err)
}
