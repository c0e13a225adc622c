package session

import (
	"context"
	"errors"
	"time"

	"github.com/rbright/lma/internal/llm"
	"github.com/rbright/lma/internal/respond"
)

var (
	// ErrPipelineUnavailable marks a run whose capture, ASR, or model wiring is missing.
	ErrPipelineUnavailable = errors.New("audio capture and ASR pipeline not available")
	// ErrEmptyTranscript indicates stop completed but no usable speech was recognized.
	ErrEmptyTranscript = errors.New("no speech recognized; check microphone input or mute state")
)

// StopResult is what a voice capture produced.
type StopResult struct {
	Transcript    string
	AudioDevice   string
	BytesCaptured int64
	ASRLatency    time.Duration
}

// Transcriber records the microphone and turns the recording into text.
type Transcriber interface {
	Start(context.Context) error
	// Full is closed once the recording hits its length cap; nil means no cap.
	Full() <-chan struct{}
	StopAndTranscribe(context.Context) (StopResult, error)
	Cancel(context.Context) error
}

// Assistant sends one prompt to a model and returns its reply.
type Assistant interface {
	Send(context.Context, llm.Prompt) (string, error)
}

// AssistantFunc adapts a function to the Assistant interface.
type AssistantFunc func(context.Context, llm.Prompt) (string, error)

func (f AssistantFunc) Send(ctx context.Context, prompt llm.Prompt) (string, error) {
	return f(ctx, prompt)
}

// Responder acts on a model reply.
type Responder interface {
	Handle(ctx context.Context, runID string, raw string) respond.Report
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(context.Context, string, string) respond.Report

func (f ResponderFunc) Handle(ctx context.Context, runID string, raw string) respond.Report {
	return f(ctx, runID, raw)
}

// missingTranscriber stands in when no capture pipeline is wired; voice runs
// fail at Start instead of listening forever.
type missingTranscriber struct{}

func (missingTranscriber) Start(context.Context) error {
	return errors.Join(ErrPipelineUnavailable, errors.New("no transcriber configured"))
}

func (missingTranscriber) Full() <-chan struct{} { return nil }

func (missingTranscriber) StopAndTranscribe(context.Context) (StopResult, error) {
	return StopResult{}, ErrPipelineUnavailable
}

func (missingTranscriber) Cancel(context.Context) error { return nil }
