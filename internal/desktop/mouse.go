package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/hypr"
)

const mouseTimeout = 1500 * time.Millisecond

// Mouse warps the pointer through Hyprland and clicks through click_cmd.
// Coordinates are screenshot pixels on the focused monitor.
type Mouse struct {
	clickArgv []string
	locate    func(context.Context) (hypr.Monitor, error)
	logger    *slog.Logger
}

// NewMouse builds a mouse adapter.
func NewMouse(cfg config.Config, logger *slog.Logger) *Mouse {
	return &Mouse{clickArgv: cfg.ClickCmd.Argv, locate: hypr.QueryFocusedOutput, logger: logger}
}

// MoveTo places the pointer at x, y on the focused monitor. Without monitor
// geometry the coordinates are used as global layout coordinates.
func (m *Mouse) MoveTo(ctx context.Context, x int, y int) error {
	ctx, cancel := context.WithTimeout(ctx, mouseTimeout)
	defer cancel()

	gx, gy := x, y
	if mon, err := m.locate(ctx); err != nil {
		if m.logger != nil {
			m.logger.Debug("focused monitor unknown; using raw coordinates", "error", err.Error())
		}
	} else {
		gx, gy = mon.ToLayout(x, y)
	}

	if err := hypr.MoveCursor(ctx, gx, gy); err != nil {
		return fmt.Errorf("move cursor: %w", err)
	}
	return nil
}

// Click moves to x, y and presses the primary button.
func (m *Mouse) Click(ctx context.Context, x int, y int) error {
	if err := m.MoveTo(ctx, x, y); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, mouseTimeout)
	defer cancel()
	if err := runCommandWithInput(ctx, m.clickArgv, ""); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}
