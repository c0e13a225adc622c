// Package notify shows responses, errors, dialogs, status indicators, and speech.
package notify

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/hypr"
	"golang.org/x/term"
)

const (
	iconInfo  = 1
	iconError = 3
	iconOK    = 5

	colorListening = "rgb(89b4fa)"
	colorThinking  = "rgb(cba6f7)"
	colorError     = "rgb(f38ba8)"
	colorResponse  = "rgb(a6e3a1)"

	statusTimeoutMS = 300000
	dispatchTimeout = 400 * time.Millisecond
)

// Notifier routes user-facing output through Hyprland or freedesktop
// notifications, zenity dialogs, and the TTS engine.
type Notifier struct {
	cfg      config.NotifyConfig
	logger   *slog.Logger
	messages messages
	speaker  *speaker

	promptIn   io.Reader
	promptOut  io.Writer
	isTerminal func() bool
	promptMu   sync.Mutex

	mu             sync.Mutex
	focusedMonitor string
	statusID       uint32
	soundMu        sync.Mutex
}

// New builds a notifier from config.
func New(cfg config.Config, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:       cfg.Notify,
		logger:    logger,
		messages:  messagesFromEnv(),
		speaker:   newSpeaker(cfg.TTS),
		promptIn:  os.Stdin,
		promptOut: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Send shows a response notification and speaks it when TTS is enabled.
func (n *Notifier) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if n.cfg.Enable {
		n.run(ctx, func(ctx context.Context) error {
			return n.show(ctx, iconOK, n.timeout(), colorResponse, text)
		})
	}
	if err := n.speaker.Speak(ctx, text); err != nil {
		n.log("speech unavailable", err)
	}
}

// Error shows a blocking error dialog, or an error notification without zenity.
func (n *Notifier) Error(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = n.messages.errorText
	}

	err := runZenity(ctx, "--error", "--title", "Error", "--text", text, "--width", "400")
	if err == nil {
		return
	}
	n.log("error dialog unavailable", err)
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.show(ctx, iconError, n.errorTimeout(), colorError, "Error: "+text)
	})
}

// ShowListening marks the start of audio capture and plays the start cue.
func (n *Notifier) ShowListening(ctx context.Context) {
	n.playCue(cueListen)
	if !n.cfg.Enable {
		return
	}
	n.ensureFocusedMonitor(ctx)
	n.run(ctx, func(ctx context.Context) error {
		return n.status(ctx, iconInfo, statusTimeoutMS, colorListening, n.messages.listening)
	})
}

// ShowThinking marks transcription and model work in progress.
func (n *Notifier) ShowThinking(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.status(ctx, iconInfo, statusTimeoutMS, colorThinking, n.messages.thinking)
	})
}

// ShowError shows a short-lived error status.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if !n.cfg.Enable {
		return
	}
	if text == "" {
		text = n.messages.errorText
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.status(ctx, iconError, n.errorTimeout(), colorError, text)
	})
}

// CueStop plays the end-of-capture cue.
func (n *Notifier) CueStop(context.Context) { n.playCue(cueStop) }

// CueComplete plays the run-complete cue.
func (n *Notifier) CueComplete(context.Context) { n.playCue(cueComplete) }

// CueCancel plays the cancel cue.
func (n *Notifier) CueCancel(context.Context) { n.playCue(cueCancel) }

// Hide dismisses the status indicator.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, n.dismiss)
}

// FocusedMonitor returns the monitor captured when listening began.
func (n *Notifier) FocusedMonitor() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.focusedMonitor
}

func (n *Notifier) ensureFocusedMonitor(ctx context.Context) {
	n.mu.Lock()
	alreadySet := n.focusedMonitor != ""
	n.mu.Unlock()
	if alreadySet {
		return
	}

	monitor, err := hypr.QueryFocusedMonitor(ctx)
	if err != nil {
		n.log("focused monitor query failed", err)
		return
	}

	n.mu.Lock()
	n.focusedMonitor = monitor
	n.mu.Unlock()
}

func (n *Notifier) desktopBackend() bool {
	return strings.EqualFold(strings.TrimSpace(n.cfg.Backend), "desktop")
}

// status updates the single replaceable status notification.
func (n *Notifier) status(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if !n.desktopBackend() {
		return hypr.Notify(ctx, icon, timeoutMS, color, text)
	}

	n.mu.Lock()
	replaceID := n.statusID
	n.mu.Unlock()

	id, err := desktopNotify(ctx, n.appName(), replaceID, n.messages.title, text, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.statusID = id
	n.mu.Unlock()
	return nil
}

// show posts a standalone notification that outlives the status indicator.
func (n *Notifier) show(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if !n.desktopBackend() {
		return hypr.Notify(ctx, icon, timeoutMS, color, text)
	}
	_, err := desktopNotify(ctx, n.appName(), 0, n.messages.title, text, timeoutMS)
	return err
}

func (n *Notifier) dismiss(ctx context.Context) error {
	if !n.desktopBackend() {
		return hypr.DismissNotify(ctx)
	}

	n.mu.Lock()
	id := n.statusID
	n.statusID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

func (n *Notifier) appName() string {
	if name := strings.TrimSpace(n.cfg.DesktopAppName); name != "" {
		return name
	}
	return "lma"
}

func (n *Notifier) timeout() int {
	if n.cfg.TimeoutMS <= 0 {
		return 3000
	}
	return n.cfg.TimeoutMS
}

func (n *Notifier) errorTimeout() int {
	if n.cfg.ErrorTimeoutMS <= 0 {
		return 1200
	}
	return n.cfg.ErrorTimeoutMS
}

// run executes a notification dispatch with a bounded timeout.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("notification dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	go func() {
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := emitCue(ctx, kind); err != nil {
			n.log("audio cue failed", err)
		}
	}()
}

func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}
