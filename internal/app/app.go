// Package app wires configuration, logging, and collaborators behind the lma CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/lma/internal/cli"
	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/doctor"
	"github.com/rbright/lma/internal/ipc"
	"github.com/rbright/lma/internal/logging"
	"github.com/rbright/lma/internal/session"
	"github.com/rbright/lma/internal/version"
)

// Runner executes one CLI invocation. Zero-value fields fall back to process defaults.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	// IsTerminal reports whether Stdout is a TTY; nil probes os.Stdout.
	IsTerminal func() bool
}

// Execute runs args and returns the process exit code: 0 ok, 1 failure, 2 usage.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// invocation is the loaded state shared by every configured command.
type invocation struct {
	parsed cli.Parsed
	loaded config.Loaded
	logger *slog.Logger
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(version.Name))
		return 2
	}

	switch {
	case parsed.ShowHelp:
		fmt.Fprint(r.Stdout, cli.HelpText(version.Name))
		return 0
	case parsed.Command == cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	inv, closeLog, err := r.bootstrap(parsed)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	if run, ok := r.commands()[parsed.Command]; ok {
		return run(ctx, inv)
	}
	if mode, ok := session.ParseMode(string(parsed.Command)); ok {
		return r.commandTrigger(ctx, inv.loaded.Config, inv.logger, mode)
	}

	fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
	return 2
}

// bootstrap loads config, opens the log, and surfaces config warnings.
func (r Runner) bootstrap(parsed cli.Parsed) (invocation, func(), error) {
	loaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		return invocation{}, nil, err
	}

	logRuntime, err := logging.New(loaded.Config.Logging)
	if err != nil {
		return invocation{}, nil, fmt.Errorf("setup logging: %w", err)
	}

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range loaded.Warnings {
		if w.Line > 0 {
			fmt.Fprintf(r.Stderr, "warning: line %d: %s\n", w.Line, w.Message)
		} else {
			fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	if phrases, _, err := config.BuildSpeechPhrases(loaded.Config); err == nil {
		logger.Debug("speech context plan", "phrase_count", len(phrases))
	}
	logger.Info("command start",
		"command", parsed.Command,
		"config", loaded.Path,
		"log", logRuntime.Path,
		"version", version.Version,
	)

	return invocation{parsed: parsed, loaded: loaded, logger: logger}, func() { _ = logRuntime.Close() }, nil
}

// commands maps the non-trigger commands to their handlers.
func (r Runner) commands() map[cli.Command]func(context.Context, invocation) int {
	return map[cli.Command]func(context.Context, invocation) int{
		cli.CommandDoctor: func(ctx context.Context, inv invocation) int {
			report := doctor.Run(ctx, inv.loaded)
			fmt.Fprintln(r.Stdout, report.String())
			if report.OK() {
				return 0
			}
			return 1
		},
		cli.CommandDevices: func(ctx context.Context, _ invocation) int {
			return r.commandDevices(ctx)
		},
		cli.CommandAudit: func(ctx context.Context, inv invocation) int {
			return r.commandAudit(ctx, inv.loaded.Config, inv.parsed.Limit)
		},
		cli.CommandStatus: func(ctx context.Context, _ invocation) int {
			return r.commandStatus(ctx)
		},
		cli.CommandStop: func(ctx context.Context, _ invocation) int {
			return r.forwardOrFail(ctx, ipc.CommandStop)
		},
		cli.CommandCancel: func(ctx context.Context, _ invocation) int {
			return r.forwardOrFail(ctx, ipc.CommandCancel)
		},
	}
}
