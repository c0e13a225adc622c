// Package pipeline records a spoken request and transcribes it with Riva.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/lma/internal/audio"
	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/riva"
	"github.com/rbright/lma/internal/session"
	"github.com/rbright/lma/internal/transcript"
)

const recognizeTimeout = 20 * time.Second

type recording interface {
	Device() audio.Device
	Full() <-chan struct{}
	Stop() []byte
}

type recognizer interface {
	Recognize(ctx context.Context, pcm []byte) ([]string, error)
	Close() error
}

// Transcriber owns one capture -> ASR -> transcript instance.
type Transcriber struct {
	cfg    config.Config
	logger *slog.Logger

	startRecording func(ctx context.Context) (recording, error)
	dialRecognizer func(ctx context.Context) (recognizer, error)

	mu        sync.Mutex
	started   bool
	recording recording
}

// NewTranscriber constructs a transcriber backed by PulseAudio and Riva.
func NewTranscriber(cfg config.Config, logger *slog.Logger) *Transcriber {
	t := &Transcriber{cfg: cfg, logger: logger}
	t.startRecording = t.recordFromPulse
	t.dialRecognizer = t.dialRiva
	return t
}

// Start selects the input device and begins recording.
func (t *Transcriber) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("transcriber already started")
	}

	rec, err := t.startRecording(ctx)
	if err != nil {
		return err
	}
	t.recording = rec
	t.started = true
	return nil
}

// Full is closed when the recording reaches audio.max_seconds.
func (t *Transcriber) Full() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recording == nil {
		return nil
	}
	return t.recording.Full()
}

// StopAndTranscribe ends recording and returns the recognized transcript.
func (t *Transcriber) StopAndTranscribe(ctx context.Context) (session.StopResult, error) {
	rec := t.take()
	if rec == nil {
		return session.StopResult{}, session.ErrPipelineUnavailable
	}

	pcm := rec.Stop()
	t.writeDebugAudio(pcm)
	result := session.StopResult{
		AudioDevice:   rec.Device().String(),
		BytesCaptured: int64(len(pcm)),
	}
	if len(pcm) == 0 {
		return result, session.ErrEmptyTranscript
	}

	client, err := t.dialRecognizer(ctx)
	if err != nil {
		return result, err
	}
	defer func() { _ = client.Close() }()

	recognizeCtx, cancel := context.WithTimeout(ctx, recognizeTimeout)
	defer cancel()

	startedAt := time.Now()
	segments, err := client.Recognize(recognizeCtx, pcm)
	result.ASRLatency = time.Since(startedAt)
	if err != nil {
		return result, fmt.Errorf("transcribe audio: %w", err)
	}

	result.Transcript = transcript.Assemble(segments)
	return result, nil
}

// Cancel stops recording without transcribing.
func (t *Transcriber) Cancel(context.Context) error {
	rec := t.take()
	if rec == nil {
		return nil
	}
	t.writeDebugAudio(rec.Stop())
	return nil
}

// take detaches the active recording so stop/cancel run once.
func (t *Transcriber) take() recording {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.recording
	t.recording = nil
	t.started = false
	return rec
}

func (t *Transcriber) recordFromPulse(ctx context.Context) (recording, error) {
	selection, err := audio.SelectDevice(ctx, t.cfg.Audio.Input, t.cfg.Audio.Fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" {
		t.logWarn(selection.Warning)
	}

	maxDuration := time.Duration(t.cfg.Audio.MaxSeconds) * time.Second
	return audio.Record(ctx, selection.Device, maxDuration)
}

func (t *Transcriber) dialRiva(ctx context.Context) (recognizer, error) {
	phrases, _, err := config.BuildSpeechPhrases(t.cfg)
	if err != nil {
		return nil, fmt.Errorf("build speech contexts: %w", err)
	}

	rivaPhrases := make([]riva.SpeechPhrase, 0, len(phrases))
	for _, phrase := range phrases {
		rivaPhrases = append(rivaPhrases, riva.SpeechPhrase{Phrase: phrase.Phrase, Boost: phrase.Boost})
	}

	client, err := riva.Dial(ctx, riva.Config{
		Endpoint:             t.cfg.Riva.GRPC,
		LanguageCode:         t.cfg.Riva.LanguageCode,
		Model:                t.cfg.Riva.Model,
		AutomaticPunctuation: t.cfg.Riva.AutomaticPunctuation,
		SpeechPhrases:        rivaPhrases,
		DialTimeout:          3 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// logWarn emits warning-level logs when a logger is configured.
func (t *Transcriber) logWarn(message string, args ...any) {
	if t.logger == nil {
		return
	}
	t.logger.Warn(message, args...)
}

var _ session.Transcriber = (*Transcriber)(nil)
