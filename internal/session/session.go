// Package session coordinates one assistant run from trigger to executed reply.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/lma/internal/fsm"
	"github.com/rbright/lma/internal/ipc"
	"github.com/rbright/lma/internal/llm"
	"github.com/rbright/lma/internal/notify"
	"github.com/rbright/lma/internal/respond"
	"github.com/rbright/lma/internal/transcript"
)

type action int

const (
	actionStop action = iota + 1
	actionCancel
)

const (
	askPrompt = "What would you like to ask?"
	askTitle  = "Ask Assistant"
)

var (
	// ErrNoSelection indicates selection mode found no selected text.
	ErrNoSelection = errors.New("no text selected")
	// ErrEmptyQuestion indicates ask mode received an empty question.
	ErrEmptyQuestion = errors.New("no question entered")
	// ErrUnknownMode indicates Run was called with an unsupported trigger mode.
	ErrUnknownMode = errors.New("unknown trigger mode")
)

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	RunID          string
	Mode           Mode
	State          fsm.State
	Prompt         string
	Reply          string
	Report         respond.Report
	Screenshot     bool
	Cancelled      bool
	Err            error
	AudioDevice    string
	BytesCaptured  int64
	ASRLatency     time.Duration
	StartedAt      time.Time
	FinishedAt     time.Time
	FocusedMonitor string
}

// Outcome labels the result for metrics and logs.
func (r Result) Outcome() string {
	switch {
	case r.Cancelled:
		return "cancelled"
	case r.Err != nil:
		return "error"
	default:
		return "ok"
	}
}

// Indicator is the session-facing subset of notifier behavior.
type Indicator interface {
	ShowListening(context.Context)
	ShowThinking(context.Context)
	ShowError(context.Context, string)
	Error(context.Context, string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
	Hide(context.Context)
	FocusedMonitor() string
}

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowListening(context.Context)     {}
func (noopIndicator) ShowThinking(context.Context)      {}
func (noopIndicator) ShowError(context.Context, string) {}
func (noopIndicator) Error(context.Context, string)     {}
func (noopIndicator) CueStop(context.Context)           {}
func (noopIndicator) CueComplete(context.Context)       {}
func (noopIndicator) CueCancel(context.Context)         {}
func (noopIndicator) Hide(context.Context)              {}
func (noopIndicator) FocusedMonitor() string            { return "" }

// Selector reads the current text selection.
type Selector interface {
	SelectedText(context.Context) (string, error)
}

// Prompter asks the user for free text.
type Prompter interface {
	InputDialog(ctx context.Context, prompt string, title string) (string, error)
}

// Screenshotter captures the screen to a file and returns its path.
type Screenshotter interface {
	Capture(ctx context.Context, monitor string) (string, error)
}

// Observer receives run counters; *metrics.Recorder satisfies it.
type Observer interface {
	ObserveRun(mode string, outcome string, elapsed time.Duration)
}

// Deps are the collaborators of a Controller. Nil members degrade to no-ops
// or to an error for the modes that need them.
type Deps struct {
	Transcriber   Transcriber
	Indicator     Indicator
	Assistant     Assistant
	Responder     Responder
	Selector      Selector
	Prompter      Prompter
	Screenshotter Screenshotter
	// Monitor names the output a screenshot should cover; empty means all.
	Monitor  func(context.Context) (string, error)
	Observer Observer
}

// Controller orchestrates session state transitions and side effects.
type Controller struct {
	logger *slog.Logger
	deps   Deps

	mu    sync.RWMutex
	state fsm.State
	runID string
	mode  Mode

	actions chan action
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(logger *slog.Logger, deps Deps) *Controller {
	if deps.Transcriber == nil {
		deps.Transcriber = missingTranscriber{}
	}
	if deps.Indicator == nil {
		deps.Indicator = noopIndicator{}
	}
	if deps.Responder == nil {
		deps.Responder = ResponderFunc(func(_ context.Context, _ string, raw string) respond.Report {
			return respond.Report{Text: raw}
		})
	}

	return &Controller{
		logger:  logger,
		deps:    deps,
		state:   fsm.StateIdle,
		actions: make(chan action, 1),
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Run executes one owner lifecycle from trigger to completion or failure.
func (c *Controller) Run(ctx context.Context, mode Mode) Result {
	result := Result{RunID: uuid.NewString(), Mode: mode, StartedAt: time.Now()}
	c.mu.Lock()
	c.runID, c.mode = result.RunID, mode
	c.mu.Unlock()

	c.execute(ctx, &result)

	result.State = c.State()
	result.FinishedAt = time.Now()
	result.FocusedMonitor = c.deps.Indicator.FocusedMonitor()
	if c.deps.Observer != nil {
		c.deps.Observer.ObserveRun(string(mode), result.Outcome(), result.FinishedAt.Sub(result.StartedAt))
	}
	return result
}

func (c *Controller) execute(ctx context.Context, result *Result) {
	var (
		prompt llm.Prompt
		ok     bool
	)

	switch {
	case result.Mode.Voice():
		if result.Mode == ModeActivate {
			prompt.ImagePath = c.capture(ctx, result.RunID)
			if prompt.ImagePath != "" {
				result.Screenshot = true
				defer func() { _ = os.Remove(prompt.ImagePath) }()
			}
		}
		prompt.Text, ok = c.listen(ctx, result)
	case result.Mode == ModeSelection:
		prompt.Text, ok = c.selection(ctx, result)
	case result.Mode == ModeAsk:
		prompt.Text, ok = c.ask(ctx, result)
	default:
		result.Err = fmt.Errorf("%w: %q", ErrUnknownMode, result.Mode)
		return
	}
	if !ok {
		return
	}

	result.Prompt = prompt.Text
	c.answer(ctx, result, prompt)
}

// listen records until stop, cancel, the length cap, or ctx ends, then transcribes.
func (c *Controller) listen(ctx context.Context, result *Result) (string, bool) {
	ind := c.deps.Indicator
	if err := c.transition(fsm.EventListen); err != nil {
		result.Err = err
		return "", false
	}

	ind.ShowListening(ctx)

	if err := c.deps.Transcriber.Start(ctx); err != nil {
		ind.ShowError(ctx, "Unable to start recording")
		c.toErrorAndReset()
		result.Err = err
		return "", false
	}

	select {
	case <-ctx.Done():
		_ = c.deps.Transcriber.Cancel(context.Background())
		ind.CueCancel(context.Background())
		ind.ShowError(context.Background(), "Cancelled")
		c.toErrorAndReset()
		result.Err = ctx.Err()
		return "", false
	case <-c.deps.Transcriber.Full():
		c.logInfo("recording reached length cap", "run_id", result.RunID)
	case a := <-c.actions:
		switch a {
		case actionCancel:
			_ = c.deps.Transcriber.Cancel(context.Background())
			ind.CueCancel(context.Background())
			c.hide()
			_ = c.transition(fsm.EventCancel)
			result.Cancelled = true
			return "", false
		case actionStop:
		default:
			c.toErrorAndReset()
			result.Err = fmt.Errorf("unknown action %d", a)
			return "", false
		}
	}

	if err := c.transition(fsm.EventStop); err != nil {
		c.toErrorAndReset()
		result.Err = err
		return "", false
	}
	ind.ShowThinking(ctx)

	stopResult, err := c.deps.Transcriber.StopAndTranscribe(ctx)
	ind.CueStop(context.Background())
	result.AudioDevice = stopResult.AudioDevice
	result.BytesCaptured = stopResult.BytesCaptured
	result.ASRLatency = stopResult.ASRLatency
	if err != nil && !errors.Is(err, ErrEmptyTranscript) {
		ind.ShowError(context.Background(), "Speech recognition failed")
		c.toErrorAndReset()
		result.Err = err
		return "", false
	}

	text := strings.TrimSpace(stopResult.Transcript)
	if text == "" {
		ind.ShowError(context.Background(), "No speech detected")
		c.toErrorAndReset()
		result.Err = ErrEmptyTranscript
		return "", false
	}
	return text, true
}

// selection submits the selected text with the default instruction.
func (c *Controller) selection(ctx context.Context, result *Result) (string, bool) {
	if c.deps.Selector == nil {
		result.Err = fmt.Errorf("%w: selection reader not configured", ErrPipelineUnavailable)
		return "", false
	}

	selected, err := c.deps.Selector.SelectedText(ctx)
	if err != nil {
		c.deps.Indicator.Error(context.Background(), "Unable to read the selected text")
		result.Err = fmt.Errorf("read selection: %w", err)
		return "", false
	}
	if strings.TrimSpace(selected) == "" {
		c.deps.Indicator.Error(context.Background(), "No text selected")
		result.Err = ErrNoSelection
		return "", false
	}

	if err := c.transition(fsm.EventSubmit); err != nil {
		result.Err = err
		return "", false
	}
	c.deps.Indicator.ShowThinking(ctx)
	return transcript.Prompt(transcript.Parts{Selection: selected}), true
}

// ask collects a typed question; the dialog is open while the state is still idle.
func (c *Controller) ask(ctx context.Context, result *Result) (string, bool) {
	if c.deps.Prompter == nil {
		result.Err = fmt.Errorf("%w: input dialog not configured", ErrPipelineUnavailable)
		return "", false
	}

	question, err := c.deps.Prompter.InputDialog(ctx, askPrompt, askTitle)
	switch {
	case errors.Is(err, notify.ErrDialogCanceled):
		result.Cancelled = true
		return "", false
	case err != nil:
		result.Err = fmt.Errorf("read question: %w", err)
		return "", false
	}

	question = strings.TrimSpace(question)
	if question == "" {
		result.Err = ErrEmptyQuestion
		return "", false
	}

	if err := c.transition(fsm.EventSubmit); err != nil {
		result.Err = err
		return "", false
	}
	c.deps.Indicator.ShowThinking(ctx)
	return question, true
}

// answer sends the prompt and hands the reply to the responder.
func (c *Controller) answer(ctx context.Context, result *Result, prompt llm.Prompt) {
	ind := c.deps.Indicator
	if c.deps.Assistant == nil {
		c.hide()
		c.toErrorAndReset()
		result.Err = fmt.Errorf("%w: assistant not configured", ErrPipelineUnavailable)
		return
	}

	reply, err := c.deps.Assistant.Send(ctx, prompt)
	if err != nil {
		c.hide()
		ind.Error(context.Background(), "Failed to get a response from the assistant")
		c.toErrorAndReset()
		result.Err = err
		return
	}
	result.Reply = reply

	// Status must be gone before reply notifications go out.
	c.hide()
	if err := c.transition(fsm.EventAnswer); err != nil {
		c.toErrorAndReset()
		result.Err = err
		return
	}

	result.Report = c.deps.Responder.Handle(ctx, result.RunID, reply)
	ind.CueComplete(context.Background())

	if err := c.transition(fsm.EventDone); err != nil {
		result.Err = err
	}
}

// capture takes the activate-mode screenshot; failures fall back to a text-only prompt.
func (c *Controller) capture(ctx context.Context, runID string) string {
	if c.deps.Screenshotter == nil {
		return ""
	}

	monitor := ""
	if c.deps.Monitor != nil {
		name, err := c.deps.Monitor(ctx)
		if err != nil {
			c.logWarn("focused monitor unavailable", "run_id", runID, "error", err.Error())
		}
		monitor = name
	}

	path, err := c.deps.Screenshotter.Capture(ctx, monitor)
	if err != nil {
		c.logWarn("screenshot unavailable; continuing without image", "run_id", runID, "error", err.Error())
		return ""
	}
	return path
}

// Handle serves IPC commands for the active owner session.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		c.mu.RLock()
		defer c.mu.RUnlock()
		return ipc.Response{OK: true, State: string(c.state), RunID: c.runID, Mode: string(c.mode), Message: "status"}
	case ipc.CommandStop:
		return c.requestStop("stop")
	case ipc.CommandCancel:
		return c.requestCancel()
	default:
		if _, ok := ParseMode(req.Command); ok {
			return c.retrigger(req.Command)
		}
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// retrigger treats a second trigger as stop while listening and busy otherwise.
func (c *Controller) retrigger(source string) ipc.Response {
	state := c.State()
	if state == fsm.StateListening {
		return c.requestStop(source)
	}
	return ipc.Response{OK: false, State: string(state), Error: "busy"}
}

// requestStop enqueues a stop action when state permits it.
func (c *Controller) requestStop(source string) ipc.Response {
	state := c.State()
	if state.Busy() {
		return ipc.Response{OK: false, State: string(state), Error: "busy"}
	}
	if state != fsm.StateListening {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot %s from state %s", source, state)}
	}

	select {
	case c.actions <- actionStop:
		return ipc.Response{OK: true, State: string(state), Message: "stop requested"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "stop already requested"}
	}
}

// requestCancel enqueues a cancel action when state permits it.
func (c *Controller) requestCancel() ipc.Response {
	state := c.State()
	if state.Busy() {
		return ipc.Response{OK: false, State: string(state), Error: "cannot cancel while " + string(state)}
	}
	if state != fsm.StateListening {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot cancel from state %s", state)}
	}

	select {
	case c.actions <- actionCancel:
		return ipc.Response{OK: true, State: string(state), Message: "cancel requested"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "cancel already requested"}
	}
}

// toErrorAndReset transitions to error and back to idle best-effort.
func (c *Controller) toErrorAndReset() {
	_ = c.transition(fsm.EventFail)
	_ = c.transition(fsm.EventReset)
}

func (c *Controller) hide() {
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()
	c.deps.Indicator.Hide(cleanupCtx)
}

func (c *Controller) logInfo(message string, args ...any) {
	if c.logger != nil {
		c.logger.Info(message, args...)
	}
}

func (c *Controller) logWarn(message string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(message, args...)
	}
}

// IsPipelineUnavailable reports whether an error represents missing pipeline wiring.
func IsPipelineUnavailable(err error) bool {
	return errors.Is(err, ErrPipelineUnavailable)
}
