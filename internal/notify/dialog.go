package notify

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rbright/lma/internal/fault"
)

const zenity = "zenity"

// ErrDialogCanceled is returned when the user dismisses an input dialog.
var ErrDialogCanceled = errors.New("dialog canceled")

// Confirm asks a yes/no question and blocks until answered.
//
// zenity is used when present; otherwise a terminal prompt is shown only when
// stdin is a TTY. Every other outcome, including ctx cancellation, is a denial.
func (n *Notifier) Confirm(ctx context.Context, message string, title string) bool {
	if title == "" {
		title = "Confirmation"
	}

	err := runZenity(ctx, "--question", "--title", title, "--text", message, "--width", "400")
	switch {
	case err == nil:
		return true
	case fault.IsToolNotFound(err):
		answer, promptErr := n.prompt(ctx, fmt.Sprintf("%s: %s (y/N): ", title, message))
		if promptErr != nil {
			n.log("confirmation prompt unavailable", promptErr)
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	default:
		n.log("confirmation dialog declined", err)
		return false
	}
}

// InputDialog asks for a line of text.
func (n *Notifier) InputDialog(ctx context.Context, prompt string, title string) (string, error) {
	if title == "" {
		title = "Input"
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, zenity, "--entry", "--title", title, "--text", prompt, "--width", "400")
	cmd.Stdout = &stdout
	err := cmd.Run()
	switch {
	case err == nil:
		return strings.TrimSpace(stdout.String()), nil
	case errors.Is(err, exec.ErrNotFound):
		answer, promptErr := n.prompt(ctx, fmt.Sprintf("%s: %s: ", title, prompt))
		if promptErr != nil {
			return "", fmt.Errorf("input dialog: %w", promptErr)
		}
		return answer, nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		return "", fmt.Errorf("%w: %w", ErrDialogCanceled, err)
	}
}

func runZenity(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, zenity, args...)
	if err := cmd.Run(); err != nil {
		return fault.Classify(ctx, zenity, err)
	}
	return nil
}

var errNoTerminal = errors.New("stdin is not a terminal")

// prompt writes question to the terminal and reads one trimmed line.
func (n *Notifier) prompt(ctx context.Context, question string) (string, error) {
	if !n.isTerminal() {
		return "", errNoTerminal
	}

	n.promptMu.Lock()
	defer n.promptMu.Unlock()

	_, _ = io.WriteString(n.promptOut, question)

	type reply struct {
		line string
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		line, err := bufio.NewReader(n.promptIn).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			replies <- reply{err: err}
			return
		}
		replies <- reply{line: strings.TrimSpace(line)}
	}()

	select {
	case <-ctx.Done():
		_, _ = io.WriteString(n.promptOut, "\n")
		return "", ctx.Err()
	case r := <-replies:
		return r.line, r.err
	}
}
