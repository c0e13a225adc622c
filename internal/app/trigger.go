package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rbright/lma/internal/audit"
	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/desktop"
	"github.com/rbright/lma/internal/executor"
	"github.com/rbright/lma/internal/hypr"
	"github.com/rbright/lma/internal/ipc"
	"github.com/rbright/lma/internal/llm"
	"github.com/rbright/lma/internal/metrics"
	"github.com/rbright/lma/internal/notify"
	"github.com/rbright/lma/internal/pipeline"
	"github.com/rbright/lma/internal/respond"
	"github.com/rbright/lma/internal/screenshot"
	"github.com/rbright/lma/internal/session"
)

// commandTrigger forwards to a live owner or becomes the owner for one run.
func (r Runner) commandTrigger(ctx context.Context, cfg config.Config, logger *slog.Logger, mode session.Mode) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, string(mode))
	if handled {
		return r.reportForwarded(resp, err)
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			resp, _, forwardErr := tryForward(ctx, socketPath, string(mode))
			return r.reportForwarded(resp, forwardErr)
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	recorder := metrics.New()
	store := openAudit(ctx, cfg.Audit, logger)
	defer func() { _ = store.Close() }()

	notifier := notify.New(cfg, logger)
	clipboard := desktop.NewClipboard(cfg, logger)
	handler := respond.New(cfg, respond.Options{
		Notifier:  notifier,
		Confirmer: notifier,
		Mouse:     desktop.NewMouse(cfg, logger),
		Keyboard:  desktop.NewKeyboard(cfg, logger),
		Executor:  executor.New(logger),
		Audit:     store,
		Observer:  recorder,
		Logger:    logger,
	})
	controller := session.NewController(logger, session.Deps{
		Transcriber:   pipeline.NewTranscriber(cfg, logger),
		Indicator:     notifier,
		Assistant:     llm.FromConfig(cfg.LLM, logger, llm.WithObserver(recorder)),
		Responder:     handler,
		Selector:      clipboard,
		Prompter:      notifier,
		Screenshotter: screenshot.New(cfg),
		Monitor:       hypr.QueryFocusedMonitor,
		Observer:      recorder,
	})

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	result := controller.Run(ctx, mode)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logSessionResult(logger, result)
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn("metrics textfile write failed", "path", cfg.Metrics.Textfile, "error", err.Error())
	}

	if result.Cancelled {
		fmt.Fprintln(r.Stdout, "cancelled")
		return 0
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}

	reply := strings.TrimSpace(result.Report.Text)
	if reply != "" {
		fmt.Fprintln(r.Stdout, r.renderReply(reply, cfg.Output))
		if cfg.Output.CopyReply {
			if err := clipboard.Set(ctx, reply); err != nil {
				logger.Warn("copy reply to clipboard failed", "run_id", result.RunID, "error", err.Error())
			}
		}
	}
	return 0
}

// runStore is the audit sink used by one run.
type runStore interface {
	audit.Recorder
	Close() error
}

type nopStore struct{ audit.Nop }

func (nopStore) Close() error { return nil }

// openAudit opens the audit database; failures degrade to a no-op recorder.
func openAudit(ctx context.Context, cfg config.AuditConfig, logger *slog.Logger) runStore {
	if !cfg.Enable {
		return nopStore{}
	}
	path, err := auditPath(cfg)
	if err != nil {
		logger.Warn("audit disabled", "error", err.Error())
		return nopStore{}
	}
	store, err := audit.Open(ctx, path)
	if err != nil {
		logger.Warn("audit disabled", "path", path, "error", err.Error())
		return nopStore{}
	}
	return store
}

func auditPath(cfg config.AuditConfig) (string, error) {
	if path := strings.TrimSpace(cfg.Path); path != "" {
		return path, nil
	}
	return audit.DefaultPath()
}

func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"run_id", result.RunID,
		"mode", string(result.Mode),
		"state", result.State,
		"cancelled", result.Cancelled,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"audio_device", result.AudioDevice,
		"bytes_captured", result.BytesCaptured,
		"asr_latency_ms", result.ASRLatency.Milliseconds(),
		"screenshot", result.Screenshot,
		"prompt_length", len(result.Prompt),
		"reply_length", len(result.Reply),
		"actions", len(result.Report.Actions),
		"commands_run", len(result.Report.Results),
		"commands_denied", len(result.Report.Denied),
		"commands_declined", len(result.Report.Declined),
		"focused_monitor", result.FocusedMonitor,
	}

	if result.Err != nil {
		logger.Error("run failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("run complete", fields...)
}
