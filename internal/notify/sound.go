package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

type cueKind int

const (
	cueListen cueKind = iota + 1
	cueStop
	cueComplete
	cueCancel
)

const cueSampleRate = 16000

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

var (
	listenCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 880, duration: 70 * time.Millisecond, volume: 0.18},
		{frequencyHz: 1175, duration: 70 * time.Millisecond, volume: 0.18},
	})
	stopCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 620, duration: 120 * time.Millisecond, volume: 0.18},
	})
	completeCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 740, duration: 65 * time.Millisecond, volume: 0.18},
		{frequencyHz: 988, duration: 90 * time.Millisecond, volume: 0.18},
	})
	cancelCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 480, duration: 75 * time.Millisecond, volume: 0.18},
		{frequencyHz: 360, duration: 90 * time.Millisecond, volume: 0.18},
	})
)

func emitCue(ctx context.Context, kind cueKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	samples := cueSamples(kind)
	if len(samples) == 0 {
		return nil
	}
	return playPCM(ctx, samples, cueSampleRate, "lma cue")
}

// playPCM plays mono 16-bit samples on the default PulseAudio sink and waits for drain.
func playPCM(ctx context.Context, samples []int16, sampleRate int, mediaName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("lma"),
		pulse.ClientApplicationIconName("audio-speakers"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) || ctx.Err() != nil {
			return 0, pulse.EndOfData
		}

		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName(mediaName),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play %s: %w", mediaName, err)
	}
	return ctx.Err()
}

func cueSamples(kind cueKind) []int16 {
	switch kind {
	case cueListen:
		return listenCuePCM
	case cueStop:
		return stopCuePCM
	case cueComplete:
		return completeCuePCM
	case cueCancel:
		return cancelCuePCM
	default:
		return nil
	}
}

func synthesizeCue(parts []toneSpec) []int16 {
	if len(parts) == 0 {
		return nil
	}
	gapSamples := samplesForDuration(22 * time.Millisecond)

	var pcm []int16
	for i, part := range parts {
		pcm = append(pcm, synthesizeTone(part)...)
		if i < len(parts)-1 && gapSamples > 0 {
			pcm = append(pcm, make([]int16, gapSamples)...)
		}
	}
	return pcm
}

func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	ramp := min(n/10, cueSampleRate/200) // at most 5ms
	ramp = max(ramp, 1)

	pcm := make([]int16, n)
	for i := range n {
		envelope := 1.0
		if i < ramp {
			envelope = float64(i) / float64(ramp)
		}
		if tail := n - i - 1; tail < ramp {
			envelope = math.Min(envelope, float64(tail)/float64(ramp))
		}
		t := float64(i) / cueSampleRate
		sample := math.Sin(2 * math.Pi * spec.frequencyHz * t)
		pcm[i] = int16(math.Round(sample * spec.volume * envelope * 32767))
	}
	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
