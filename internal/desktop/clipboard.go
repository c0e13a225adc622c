package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/lma/internal/config"
)

const clipboardTimeout = 2 * time.Second

// Clipboard reads and writes the Wayland clipboard and primary selection.
type Clipboard struct {
	setArgv       []string
	getArgv       []string
	selectionArgv []string
	logger        *slog.Logger
}

// NewClipboard builds a clipboard adapter from the configured commands.
func NewClipboard(cfg config.Config, logger *slog.Logger) *Clipboard {
	return &Clipboard{
		setArgv:       cfg.Clipboard.Argv,
		getArgv:       cfg.ClipboardGet.Argv,
		selectionArgv: cfg.SelectionCmd.Argv,
		logger:        logger,
	}
}

// Set replaces the clipboard contents. Empty text is a no-op.
func (c *Clipboard) Set(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()
	if err := runCommandWithInput(ctx, c.setArgv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// Get returns the clipboard contents.
func (c *Clipboard) Get(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()
	out, err := runCommandOutput(ctx, c.getArgv)
	if err != nil {
		return "", fmt.Errorf("get clipboard: %w", err)
	}
	return out, nil
}

// Selection returns the primary selection, i.e. the currently highlighted text.
func (c *Clipboard) Selection(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()
	out, err := runCommandOutput(ctx, c.selectionArgv)
	if err != nil {
		return "", fmt.Errorf("get selection: %w", err)
	}
	return out, nil
}

// SelectedText returns the primary selection, or the clipboard when nothing is highlighted.
func (c *Clipboard) SelectedText(ctx context.Context) (string, error) {
	selected, selErr := c.Selection(ctx)
	if strings.TrimSpace(selected) != "" {
		return selected, nil
	}
	copied, err := c.Get(ctx)
	if err != nil {
		if selErr != nil {
			return "", errors.Join(selErr, err)
		}
		return "", err
	}
	if selErr != nil && c.logger != nil {
		c.logger.Debug("primary selection unavailable; using clipboard", "error", selErr.Error())
	}
	return copied, nil
}
