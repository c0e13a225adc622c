package app

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rbright/lma/internal/audio"
	"github.com/rbright/lma/internal/audit"
	"github.com/rbright/lma/internal/config"
)

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			yesNo(device.Available),
			yesNo(device.Muted),
		)
	}

	return 0
}

// commandAudit prints the most recent audit rows, newest first.
func (r Runner) commandAudit(ctx context.Context, cfg config.Config, limit int) int {
	path, err := auditPath(cfg.Audit)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	store, err := audit.Open(ctx, path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.Stdout, "no audit entries")
		return 0
	}

	tw := tabwriter.NewWriter(r.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tKIND\tVERDICT\tOUTCOME\tSUBJECT")
	for _, entry := range entries {
		verdict := entry.Verdict
		if verdict == "" {
			verdict = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Timestamp.Local().Format(time.DateTime),
			shortRunID(entry.RunID),
			entry.Kind,
			verdict,
			entry.Outcome,
			entry.Subject,
		)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
