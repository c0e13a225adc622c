// Package screenshot captures the focused monitor to a PNG for multimodal prompts.
package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/fault"
)

const captureTimeout = 5 * time.Second

// Capturer runs screenshot_cmd with an output path appended.
type Capturer struct {
	argv []string
	dir  string
}

// New builds a capturer writing into the runtime directory.
func New(cfg config.Config) *Capturer {
	return &Capturer{argv: cfg.ScreenshotCmd.Argv, dir: RuntimeDir()}
}

// RuntimeDir is $XDG_RUNTIME_DIR/lma, falling back to the system temp dir.
func RuntimeDir() string {
	base := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "lma")
}

// Capture saves a screenshot of monitor (all outputs when empty) and returns its path.
// The caller owns the file.
func (c *Capturer) Capture(ctx context.Context, monitor string) (string, error) {
	if len(c.argv) == 0 {
		return "", fmt.Errorf("screenshot command is not configured")
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	path := filepath.Join(c.dir, "screenshot-"+uuid.NewString()+".png")
	args := append([]string{}, c.argv[1:]...)
	if monitor = strings.TrimSpace(monitor); monitor != "" {
		args = append(args, "-o", monitor)
	}
	args = append(args, path)

	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(path)
		err = fault.Classify(ctx, c.argv[0], err)
		if trimmed := strings.TrimSpace(stderr.String()); trimmed != "" {
			return "", fmt.Errorf("capture screenshot: %w (%s)", err, trimmed)
		}
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(path)
		return "", fmt.Errorf("capture screenshot: %s wrote an empty file", c.argv[0])
	}
	return path, nil
}
