package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbright/lma/internal/ipc"
)

const forwardTimeout = 220 * time.Millisecond

// errBusy is the owner's answer to a trigger that arrives after listening ended.
const errBusy = "busy"

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.CommandStatus)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		line := resp.State
		if resp.Mode != "" {
			line = fmt.Sprintf("%s (mode=%s run=%s)", resp.State, resp.Mode, resp.RunID)
		}
		fmt.Fprintln(r.Stdout, line)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active lma run\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// reportForwarded prints an owner's reply to a forwarded trigger. A busy owner
// drops the trigger and that is not a failure.
func (r Runner) reportForwarded(resp ipc.Response, err error) int {
	if err != nil {
		if resp.Error == errBusy {
			fmt.Fprintf(r.Stdout, "busy (%s); trigger ignored\n", resp.State)
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if ipc.NoOwner(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}
