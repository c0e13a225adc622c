// Package respond interprets one model response and carries out what it asks for.
package respond

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/lma/internal/audit"
	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/executor"
	"github.com/rbright/lma/internal/extract"
	"github.com/rbright/lma/internal/security"
)

const (
	confirmTitle = "Command Confirmation"

	outcomeApplied  = "applied"
	outcomeFailed   = "failed"
	outcomeSkipped  = "skipped"
	outcomeDeclined = "declined"
	outcomeSuccess  = "success"
)

// Notifier surfaces text to the user.
type Notifier interface {
	Send(ctx context.Context, text string)
	Error(ctx context.Context, text string)
}

// Mouse applies pointer actions.
type Mouse interface {
	MoveTo(ctx context.Context, x int, y int) error
	Click(ctx context.Context, x int, y int) error
}

// Keyboard applies typing and shortcut actions.
type Keyboard interface {
	TypeText(ctx context.Context, text string) error
	SendHotkey(ctx context.Context, keys []string) error
}

// Executor runs one shell command.
type Executor interface {
	Execute(ctx context.Context, command string) executor.Result
}

// Observer receives handler counters; *metrics.Recorder satisfies it.
type Observer interface {
	ObserveVerdict(verdict string)
	ObserveExecution(outcome string)
	ObserveAction(kind string, outcome string)
}

// Options carries the collaborators of a Handler.
type Options struct {
	Notifier  Notifier
	Confirmer Confirmer
	Mouse     Mouse
	Keyboard  Keyboard
	Executor  Executor
	Audit     audit.Recorder
	Observer  Observer
	Logger    *slog.Logger
}

// Report summarizes what Handle did with one response.
type Report struct {
	Text     string
	Actions  []extract.Action
	Failed   int
	Denied   []string
	Declined []string
	Results  []executor.Result
}

// Handler turns a model response into notifications, actions, and commands.
type Handler struct {
	notifier   Notifier
	gate       *Gate
	mouse      Mouse
	keyboard   Keyboard
	executor   Executor
	automation *extract.Automation
	policy     security.Policy
	sanitize   bool
	audit      audit.Recorder
	observer   Observer
	logger     *slog.Logger
}

// New builds a Handler from configuration and collaborators.
func New(cfg config.Config, opts Options) *Handler {
	recorder := opts.Audit
	if recorder == nil {
		recorder = audit.Nop{}
	}
	timeout := time.Duration(cfg.Security.ConfirmTimeoutSeconds) * time.Second
	return &Handler{
		notifier:   opts.Notifier,
		gate:       NewGate(opts.Confirmer, timeout),
		mouse:      opts.Mouse,
		keyboard:   opts.Keyboard,
		executor:   opts.Executor,
		automation: extract.NewAutomation(security.BoundsFromConfig(cfg.Screen), opts.Logger),
		policy:     security.PolicyFromConfig(cfg.Security),
		sanitize:   cfg.Security.SanitizeInputs,
		audit:      recorder,
		observer:   opts.Observer,
		logger:     opts.Logger,
	}
}

// Handle processes raw model output for the run identified by runID.
//
// Automation actions apply before any command runs. Commands run strictly in
// extraction order and a failure never stops the remaining candidates.
func (h *Handler) Handle(ctx context.Context, runID string, raw string) Report {
	text := security.SanitizeInput(raw, h.sanitize)
	h.log().Info("model response", "run_id", runID, "text", security.Redact(text))

	report := Report{Text: text}
	if h.notifier != nil {
		h.notifier.Send(ctx, text)
	}

	for _, action := range h.automation.Extract(text) {
		if err := h.apply(ctx, action); err != nil {
			report.Failed++
			h.log().Error("automation action failed", "run_id", runID, "action", action.String(), "error", err.Error())
			h.observeAction(action, outcomeFailed)
			h.record(ctx, runID, audit.KindAction, action.String(), "", outcomeFailed, err.Error())
			continue
		}
		report.Actions = append(report.Actions, action)
		h.log().Warn("automation action applied without confirmation", "run_id", runID, "action", action.String())
		h.observeAction(action, outcomeApplied)
		h.record(ctx, runID, audit.KindAction, action.String(), "", outcomeApplied, "")
	}

	for _, candidate := range extract.Commands(text) {
		command := string(candidate)
		verdict := h.policy.Classify(command)
		h.observeVerdict(verdict)

		switch verdict {
		case security.Denied:
			h.log().Warn("command denied by policy", "run_id", runID, "command", command)
			report.Denied = append(report.Denied, command)
			h.record(ctx, runID, audit.KindCommand, command, verdict.String(), outcomeSkipped, "")
			continue
		case security.RequiresConfirmation:
			if !h.gate.Confirm(ctx, fmt.Sprintf("Execute command: %s?", command), confirmTitle) {
				h.log().Info("command declined", "run_id", runID, "command", command)
				report.Declined = append(report.Declined, command)
				h.record(ctx, runID, audit.KindCommand, command, verdict.String(), outcomeDeclined, "")
				continue
			}
		}

		result := h.execute(ctx, command)
		report.Results = append(report.Results, result)
		h.deliver(ctx, runID, verdict, result)
	}

	return report
}

func (h *Handler) apply(ctx context.Context, action extract.Action) error {
	switch action.Kind {
	case extract.ActionClick:
		if h.mouse == nil {
			return errMissing("mouse")
		}
		return h.mouse.Click(ctx, action.X, action.Y)
	case extract.ActionMove:
		if h.mouse == nil {
			return errMissing("mouse")
		}
		return h.mouse.MoveTo(ctx, action.X, action.Y)
	case extract.ActionType:
		if h.keyboard == nil {
			return errMissing("keyboard")
		}
		return h.keyboard.TypeText(ctx, action.Text)
	case extract.ActionHotkey:
		if h.keyboard == nil {
			return errMissing("keyboard")
		}
		return h.keyboard.SendHotkey(ctx, action.Keys)
	default:
		return fmt.Errorf("unsupported action kind %q", action.Kind)
	}
}

func (h *Handler) execute(ctx context.Context, command string) executor.Result {
	if h.executor == nil {
		return executor.Result{Command: command, ExitCode: -1, Err: errMissing("executor")}
	}
	return h.executor.Execute(ctx, command)
}

func (h *Handler) deliver(ctx context.Context, runID string, verdict security.Verdict, result executor.Result) {
	summary := result.Summary()
	if result.Failed() {
		h.log().Error("command failed",
			"run_id", runID,
			"command", result.Command,
			"exit_code", result.ExitCode,
			"timed_out", result.TimedOut,
		)
		h.observeExecution(outcomeFailed)
		h.record(ctx, runID, audit.KindCommand, result.Command, verdict.String(), outcomeFailed, summary)
		if h.notifier != nil {
			h.notifier.Error(ctx, summary)
		}
		return
	}

	h.log().Info("command executed",
		"run_id", runID,
		"command", result.Command,
		"duration_ms", result.Duration.Milliseconds(),
	)
	h.observeExecution(outcomeSuccess)
	h.record(ctx, runID, audit.KindCommand, result.Command, verdict.String(), outcomeSuccess, summary)
	if h.notifier != nil {
		h.notifier.Send(ctx, summary)
	}
}

func (h *Handler) record(ctx context.Context, runID string, kind audit.Kind, subject, verdict, outcome, detail string) {
	err := h.audit.Record(ctx, audit.Entry{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Kind:      kind,
		Subject:   security.Redact(subject),
		Verdict:   verdict,
		Outcome:   outcome,
		Detail:    security.Redact(detail),
	})
	if err != nil {
		h.log().Warn("audit record failed", "run_id", runID, "error", err.Error())
	}
}

func (h *Handler) observeVerdict(verdict security.Verdict) {
	if h.observer != nil {
		h.observer.ObserveVerdict(verdict.String())
	}
}

func (h *Handler) observeExecution(outcome string) {
	if h.observer != nil {
		h.observer.ObserveExecution(outcome)
	}
}

func (h *Handler) observeAction(action extract.Action, outcome string) {
	if h.observer != nil {
		h.observer.ObserveAction(string(action.Kind), outcome)
	}
}

func (h *Handler) log() *slog.Logger {
	if h.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.logger
}

func errMissing(name string) error {
	return fmt.Errorf("no %s configured", name)
}
