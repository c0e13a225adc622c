// Package executor runs approved shell commands with a hard wall-clock limit.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/lma/internal/fault"
)

const (
	// DefaultTimeout is the wall-clock limit for one command.
	DefaultTimeout = 30 * time.Second
	// DefaultShell interprets command text.
	DefaultShell = "/bin/sh"

	waitDelay = 2 * time.Second
)

// Result captures one execution. ExitCode is -1 when the process produced none.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Err      error
	Duration time.Duration
}

// Failed reports whether the command did not exit cleanly.
func (r Result) Failed() bool {
	return r.TimedOut || r.Err != nil || r.ExitCode != 0
}

// Summary renders the user-facing outcome line.
func (r Result) Summary() string {
	switch {
	case r.TimedOut:
		return fmt.Sprintf("Command timed out: %s", r.Command)
	case r.Err != nil:
		return fmt.Sprintf("Command could not run: %v", r.Err)
	case r.ExitCode == 0:
		if out := strings.TrimSpace(r.Stdout); out != "" {
			return out
		}
		return "Command executed successfully"
	default:
		if stderr := strings.TrimSpace(r.Stderr); stderr != "" {
			return stderr
		}
		return fmt.Sprintf("Command failed with code %d", r.ExitCode)
	}
}

// Executor runs commands through a shell in their own process group.
type Executor struct {
	Shell   string
	Timeout time.Duration
	logger  *slog.Logger
}

// New returns an executor using DefaultShell and DefaultTimeout.
func New(logger *slog.Logger) *Executor {
	return &Executor{Shell: DefaultShell, Timeout: DefaultTimeout, logger: logger}
}

// Execute runs command and waits for it or its timeout. It never retries.
func (e *Executor) Execute(ctx context.Context, command string) Result {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	shell := e.Shell
	if shell == "" {
		shell = DefaultShell
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, shell, "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	started := time.Now()
	err := cmd.Run()
	result := Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
		Duration: time.Since(started),
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.TimedOut = true
		result.Err = nil
	case ctx.Err() != nil:
		result.Err = ctx.Err()
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.Err = fault.Classify(ctx, shell, err)
	}

	e.log().Info("command finished",
		"command", command,
		"exit_code", result.ExitCode,
		"timed_out", result.TimedOut,
		"duration_ms", result.Duration.Milliseconds(),
		"error", errorString(result.Err),
	)
	return result
}

func (e *Executor) log() *slog.Logger {
	if e.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.logger
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
