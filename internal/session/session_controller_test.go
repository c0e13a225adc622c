package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rbright/lma/internal/fsm"
	"github.com/rbright/lma/internal/ipc"
	"github.com/rbright/lma/internal/llm"
	"github.com/rbright/lma/internal/notify"
	"github.com/rbright/lma/internal/respond"
	"github.com/stretchr/testify/require"
)

type fakeSelector struct {
	text string
	err  error
}

func (f fakeSelector) SelectedText(context.Context) (string, error) { return f.text, f.err }

type fakePrompter struct {
	answer string
	err    error
	prompt string
	title  string
}

func (f *fakePrompter) InputDialog(_ context.Context, prompt string, title string) (string, error) {
	f.prompt = prompt
	f.title = title
	return f.answer, f.err
}

type runObservation struct {
	mode    string
	outcome string
}

type fakeObserver struct {
	runs []runObservation
}

func (f *fakeObserver) ObserveRun(mode string, outcome string, _ time.Duration) {
	f.runs = append(f.runs, runObservation{mode: mode, outcome: outcome})
}

func TestHandleStatusAndUnknownCommand(t *testing.T) {
	ctrl := NewController(nil, Deps{Transcriber: &fakeTranscriber{}, Indicator: &fakeIndicator{}})

	status := ctrl.Handle(context.Background(), ipc.Request{Command: "status"})
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateIdle), status.State)

	require.Empty(t, status.RunID)

	unknown := ctrl.Handle(context.Background(), ipc.Request{Command: "definitely-unknown"})
	require.False(t, unknown.OK)
	require.Contains(t, unknown.Error, "unknown command")
}

func TestRequestStopAndCancelStateGuards(t *testing.T) {
	ctrl := NewController(nil, Deps{Transcriber: &fakeTranscriber{}, Indicator: &fakeIndicator{}})

	stopFromIdle := ctrl.Handle(context.Background(), ipc.Request{Command: "stop"})
	require.False(t, stopFromIdle.OK)
	require.Contains(t, stopFromIdle.Error, "cannot stop from state idle")

	cancelFromIdle := ctrl.Handle(context.Background(), ipc.Request{Command: "cancel"})
	require.False(t, cancelFromIdle.OK)
	require.Contains(t, cancelFromIdle.Error, "cannot cancel from state idle")

	for _, state := range []fsm.State{fsm.StateThinking, fsm.StateActing} {
		ctrl.mu.Lock()
		ctrl.state = state
		ctrl.mu.Unlock()

		stop := ctrl.Handle(context.Background(), ipc.Request{Command: "stop"})
		require.False(t, stop.OK)
		require.Equal(t, "busy", stop.Error)

		cancel := ctrl.Handle(context.Background(), ipc.Request{Command: "cancel"})
		require.False(t, cancel.OK)
		require.Equal(t, "cannot cancel while "+string(state), cancel.Error)
	}
}

func TestRetriggerIsBusyOutsideListening(t *testing.T) {
	ctrl := NewController(nil, Deps{})

	for _, state := range []fsm.State{fsm.StateIdle, fsm.StateThinking, fsm.StateActing} {
		ctrl.mu.Lock()
		ctrl.state = state
		ctrl.mu.Unlock()

		for _, mode := range Modes {
			resp := ctrl.Handle(context.Background(), ipc.Request{Command: string(mode)})
			require.False(t, resp.OK, "%s during %s", mode, state)
			require.Equal(t, "busy", resp.Error)
			require.Equal(t, string(state), resp.State)
		}
	}

	ctrl.mu.Lock()
	ctrl.state = fsm.StateListening
	ctrl.mu.Unlock()

	resp := ctrl.Handle(context.Background(), ipc.Request{Command: "activate"})
	require.True(t, resp.OK)
	require.Equal(t, "stop requested", resp.Message)
}

func TestRequestStopAndCancelAlreadyRequested(t *testing.T) {
	ctrl := NewController(nil, Deps{Transcriber: &fakeTranscriber{}, Indicator: &fakeIndicator{}})

	ctrl.mu.Lock()
	ctrl.state = fsm.StateListening
	ctrl.mu.Unlock()

	ctrl.actions <- actionStop
	stop := ctrl.requestStop("stop")
	require.True(t, stop.OK)
	require.Equal(t, "stop already requested", stop.Message)

	<-ctrl.actions
	ctrl.actions <- actionCancel
	cancel := ctrl.requestCancel()
	require.True(t, cancel.OK)
	require.Equal(t, "cancel already requested", cancel.Message)
}

func TestRunStartFailure(t *testing.T) {
	transcriber := &fakeTranscriber{startErr: errors.New("start failed")}
	indicator := &fakeIndicator{}
	observer := &fakeObserver{}
	ctrl := NewController(nil, Deps{Transcriber: transcriber, Indicator: indicator, Observer: observer})

	result := ctrl.Run(context.Background(), ModeVoice)
	require.Error(t, result.Err)
	require.Equal(t, fsm.StateIdle, result.State)
	require.NotZero(t, result.FinishedAt)
	require.Equal(t, "DP-1", result.FocusedMonitor)
	require.Equal(t, int32(0), indicator.stopCues.Load())
	require.Equal(t, int32(0), indicator.completeCues.Load())
	require.Equal(t, []runObservation{{mode: "voice", outcome: "error"}}, observer.runs)
}

func TestRunAssistantFailure(t *testing.T) {
	indicator := &fakeIndicator{}
	responder := &fakeResponder{}
	ctrl := NewController(nil, Deps{
		Transcriber: &fakeTranscriber{transcript: "hello world"},
		Indicator:   indicator,
		Assistant:   &fakeAssistant{err: fmt.Errorf("send: %w", llm.ErrBackendExhausted)},
		Responder:   responder,
	})

	cancel, resultCh := startVoiceRun(t, ctrl, ModeVoice)
	defer cancel()
	require.True(t, ctrl.Handle(context.Background(), ipc.Request{Command: "stop"}).OK)

	result := <-resultCh
	require.ErrorIs(t, result.Err, llm.ErrBackendExhausted)
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, []string{"Failed to get a response from the assistant"}, indicator.errorTexts())
	require.Empty(t, responder.replies)
	require.Equal(t, int32(0), indicator.completeCues.Load())
}

func TestRunContextCancelled(t *testing.T) {
	indicator := &fakeIndicator{}
	ctrl := NewController(nil, Deps{Transcriber: &fakeTranscriber{}, Indicator: indicator})

	cancel, resultCh := startVoiceRun(t, ctrl, ModeVoice)
	cancel()

	result := <-resultCh
	require.ErrorIs(t, result.Err, context.Canceled)
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, int32(1), indicator.cancelCues.Load())
	require.False(t, result.Cancelled)
	require.Equal(t, "error", result.Outcome())
}

func TestRunUnknownAction(t *testing.T) {
	ctrl := NewController(nil, Deps{Transcriber: &fakeTranscriber{}, Indicator: &fakeIndicator{}})

	cancel, resultCh := startVoiceRun(t, ctrl, ModeVoice)
	defer cancel()

	status := ctrl.Handle(context.Background(), ipc.Request{Command: "status"})
	require.Equal(t, "voice", status.Mode)
	require.NotEmpty(t, status.RunID)

	ctrl.actions <- action(99)

	result := <-resultCh
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "unknown action")
	require.Equal(t, fsm.StateIdle, result.State)
}

func TestRunUnknownMode(t *testing.T) {
	result := NewController(nil, Deps{}).Run(context.Background(), Mode("dance"))
	require.ErrorIs(t, result.Err, ErrUnknownMode)
	require.Equal(t, fsm.StateIdle, result.State)
}

func TestRunSelection(t *testing.T) {
	assistant := &fakeAssistant{reply: "It is a haiku."}
	responder := &fakeResponder{}
	observer := &fakeObserver{}
	ctrl := NewController(nil, Deps{
		Selector:  fakeSelector{text: "old pond\nfrog leaps in"},
		Assistant: assistant,
		Responder: responder,
		Observer:  observer,
	})

	result := ctrl.Run(context.Background(), ModeSelection)
	require.NoError(t, result.Err)
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, "Help me with the following selected text.\n\nSelected text:\nold pond\nfrog leaps in", result.Prompt)
	require.Equal(t, []llm.Prompt{{Text: result.Prompt}}, assistant.sent())
	require.Equal(t, []string{"It is a haiku."}, responder.replies)
	require.Equal(t, []runObservation{{mode: "selection", outcome: "ok"}}, observer.runs)
}

func TestRunSelectionEmpty(t *testing.T) {
	indicator := &fakeIndicator{}
	assistant := &fakeAssistant{}
	ctrl := NewController(nil, Deps{Selector: fakeSelector{text: "  \n"}, Assistant: assistant, Indicator: indicator})

	result := ctrl.Run(context.Background(), ModeSelection)
	require.ErrorIs(t, result.Err, ErrNoSelection)
	require.Empty(t, assistant.sent())
	require.Equal(t, []string{"No text selected"}, indicator.errorTexts())
}

func TestRunSelectionReadFailure(t *testing.T) {
	ctrl := NewController(nil, Deps{Selector: fakeSelector{err: errors.New("wl-paste missing")}})

	result := ctrl.Run(context.Background(), ModeSelection)
	require.ErrorContains(t, result.Err, "read selection: wl-paste missing")
}

func TestRunAsk(t *testing.T) {
	prompter := &fakePrompter{answer: "  how do I list files?  "}
	assistant := &fakeAssistant{reply: "Use ls."}
	ctrl := NewController(nil, Deps{Prompter: prompter, Assistant: assistant})

	result := ctrl.Run(context.Background(), ModeAsk)
	require.NoError(t, result.Err)
	require.Equal(t, "What would you like to ask?", prompter.prompt)
	require.Equal(t, "Ask Assistant", prompter.title)
	require.Equal(t, []llm.Prompt{{Text: "how do I list files?"}}, assistant.sent())
	require.Equal(t, "Use ls.", result.Report.Text)
}

func TestRunAskCanceledDialog(t *testing.T) {
	assistant := &fakeAssistant{}
	observer := &fakeObserver{}
	ctrl := NewController(nil, Deps{
		Prompter:  &fakePrompter{err: fmt.Errorf("%w: exit status 1", notify.ErrDialogCanceled)},
		Assistant: assistant,
		Observer:  observer,
	})

	result := ctrl.Run(context.Background(), ModeAsk)
	require.NoError(t, result.Err)
	require.True(t, result.Cancelled)
	require.Empty(t, assistant.sent())
	require.Equal(t, []runObservation{{mode: "ask", outcome: "cancelled"}}, observer.runs)
}

func TestRunAskEmptyQuestion(t *testing.T) {
	result := NewController(nil, Deps{Prompter: &fakePrompter{answer: " "}, Assistant: &fakeAssistant{}}).Run(context.Background(), ModeAsk)
	require.ErrorIs(t, result.Err, ErrEmptyQuestion)
}

func TestRunWithoutAssistant(t *testing.T) {
	result := NewController(nil, Deps{Selector: fakeSelector{text: "text"}}).Run(context.Background(), ModeSelection)
	require.True(t, IsPipelineUnavailable(result.Err))
	require.Equal(t, fsm.StateIdle, result.State)
}

func TestParseMode(t *testing.T) {
	mode, ok := ParseMode(" Activate ")
	require.True(t, ok)
	require.Equal(t, ModeActivate, mode)
	require.True(t, mode.Voice())

	mode, ok = ParseMode("selection")
	require.True(t, ok)
	require.False(t, mode.Voice())

	_, ok = ParseMode("toggle")
	require.False(t, ok)
}

func TestIsPipelineUnavailable(t *testing.T) {
	require.True(t, IsPipelineUnavailable(ErrPipelineUnavailable))
	require.False(t, IsPipelineUnavailable(errors.New("different error")))
	require.False(t, IsPipelineUnavailable(nil))
}

func TestVoiceRunWithoutTranscriberFailsToStart(t *testing.T) {
	indicator := &fakeIndicator{}
	assistant := &fakeAssistant{reply: "unused"}
	ctrl := NewController(nil, Deps{Indicator: indicator, Assistant: assistant})

	result := ctrl.Run(context.Background(), ModeVoice)
	require.ErrorIs(t, result.Err, ErrPipelineUnavailable)
	require.ErrorContains(t, result.Err, "no transcriber configured")
	require.Equal(t, fsm.StateIdle, result.State)
	require.Empty(t, assistant.prompts)
}

func TestFuncAdaptersDelegate(t *testing.T) {
	assistant := AssistantFunc(func(_ context.Context, prompt llm.Prompt) (string, error) {
		return "echo: " + prompt.Text, nil
	})
	reply, err := assistant.Send(context.Background(), llm.Prompt{Text: "hi"})
	require.NoError(t, err)
	require.Equal(t, "echo: hi", reply)

	responder := ResponderFunc(func(_ context.Context, runID string, raw string) respond.Report {
		return respond.Report{Text: runID + ":" + raw}
	})
	require.Equal(t, "r1:ok", responder.Handle(context.Background(), "r1", "ok").Text)
}

func TestResultTimestampsAdvance(t *testing.T) {
	ctrl := NewController(nil, Deps{Transcriber: &fakeTranscriber{transcript: "ok"}, Indicator: &fakeIndicator{}, Assistant: &fakeAssistant{reply: "ok"}})

	cancel, resultCh := startVoiceRun(t, ctrl, ModeVoice)
	defer cancel()
	require.True(t, ctrl.Handle(context.Background(), ipc.Request{Command: "stop"}).OK)
	result := <-resultCh

	require.False(t, result.StartedAt.IsZero())
	require.False(t, result.FinishedAt.IsZero())
	require.True(t, result.FinishedAt.After(result.StartedAt) || result.FinishedAt.Equal(result.StartedAt))
	require.LessOrEqual(t, result.FinishedAt.Sub(result.StartedAt), 2*time.Second)
	require.NotEmpty(t, result.RunID)
}
