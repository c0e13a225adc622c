package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rbright/lma/internal/fault"
)

const busctl = "busctl"

// desktopNotify sends a freedesktop notification over DBus via busctl.
// It returns the notification ID assigned by the server.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, body string, timeoutMS int) (uint32, error) {
	args := []string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"Notify",
		"susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"",
		summary,
		body,
		"0", // actions
		"0", // hints
		strconv.Itoa(timeoutMS),
	}

	out, err := exec.CommandContext(ctx, busctl, args...).CombinedOutput()
	if err != nil {
		return 0, busctlError(ctx, "desktop notify", err, out)
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("desktop notify invalid response: %q", strings.TrimSpace(string(out)))
	}

	value, parseErr := strconv.ParseUint(fields[1], 10, 32)
	if parseErr != nil {
		return 0, fmt.Errorf("desktop notify parse id %q: %w", fields[1], parseErr)
	}
	return uint32(value), nil
}

// desktopDismiss requests explicit close by notification ID.
func desktopDismiss(ctx context.Context, id uint32) error {
	args := []string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"CloseNotification",
		"u",
		strconv.FormatUint(uint64(id), 10),
	}

	out, err := exec.CommandContext(ctx, busctl, args...).CombinedOutput()
	if err != nil {
		return busctlError(ctx, "desktop dismiss", err, out)
	}
	return nil
}

func busctlError(ctx context.Context, op string, err error, out []byte) error {
	err = fault.Classify(ctx, busctl, err)
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	return fmt.Errorf("%s failed: %w (%s)", op, err, trimmed)
}
