package notify

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rbright/lma/internal/config"
	"github.com/rbright/lma/internal/fault"
)

// piper --output-raw emits mono s16le at the voice's rate; the stock voices use 22050 Hz.
const piperSampleRate = 22050

var errUnknownEngine = errors.New("unknown tts engine")

// speaker renders text to audio with the configured engine and falls back once.
type speaker struct {
	cfg  config.TTSConfig
	play func(ctx context.Context, samples []int16, sampleRate int, mediaName string) error
}

func newSpeaker(cfg config.TTSConfig) *speaker {
	return &speaker{cfg: cfg, play: playPCM}
}

// Speak tries the primary engine, then the fallback. Both missing is ErrToolNotFound.
func (s *speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if !s.cfg.Enable || text == "" {
		return nil
	}

	primary := strings.ToLower(strings.TrimSpace(s.cfg.Engine))
	err := s.speakWith(ctx, primary, text)
	if err == nil {
		return nil
	}

	fallback := strings.ToLower(strings.TrimSpace(s.cfg.Fallback))
	if fallback == "" || fallback == "none" || fallback == primary || ctx.Err() != nil {
		return err
	}
	if fallbackErr := s.speakWith(ctx, fallback, text); fallbackErr != nil {
		return errors.Join(err, fallbackErr)
	}
	return nil
}

func (s *speaker) speakWith(ctx context.Context, engine string, text string) error {
	switch engine {
	case "piper":
		return s.speakPiper(ctx, text)
	case "espeak", "espeak-ng":
		return speakEspeak(ctx, engine, text)
	case "", "none":
		return nil
	default:
		return fmt.Errorf("%w %q", errUnknownEngine, engine)
	}
}

func (s *speaker) speakPiper(ctx context.Context, text string) error {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "piper", "--model", s.cfg.Voice, "--output-raw")
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		err = fault.Classify(ctx, "piper", err)
		if trimmed := strings.TrimSpace(stderr.String()); trimmed != "" {
			return fmt.Errorf("piper: %w (%s)", err, trimmed)
		}
		return fmt.Errorf("piper: %w", err)
	}

	samples := pcmFromBytes(stdout.Bytes())
	if len(samples) == 0 {
		return fmt.Errorf("piper produced no audio")
	}
	return s.play(ctx, samples, piperSampleRate, "lma speech")
}

func speakEspeak(ctx context.Context, binary string, text string) error {
	out, err := exec.CommandContext(ctx, binary, text).CombinedOutput()
	if err != nil {
		err = fault.Classify(ctx, binary, err)
		if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
			return fmt.Errorf("%s: %w (%s)", binary, err, trimmed)
		}
		return fmt.Errorf("%s: %w", binary, err)
	}
	return nil
}

// pcmFromBytes decodes little-endian 16-bit samples; a trailing odd byte is dropped.
func pcmFromBytes(raw []byte) []int16 {
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return samples
}
