package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	// SampleRate is the capture rate in Hz (mono, s16le).
	SampleRate     = 16000
	bytesPerSecond = SampleRate * 2
	fragmentBytes  = 640 // 20ms
)

// Recording buffers one utterance from a Pulse source until stopped or full.
type Recording struct {
	device   Device
	maxBytes int

	client *pulse.Client
	stream *pulse.RecordStream

	full chan struct{}

	mu       sync.Mutex
	pcm      []byte
	stopped  bool
	fullOnce sync.Once
}

// Record starts a 16 kHz mono s16 recording capped at maxDuration (0 = uncapped).
// Cancelling ctx stops the recording.
func Record(ctx context.Context, selected Device, maxDuration time.Duration) (*Recording, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	rec := newRecording(selected, maxDuration)
	rec.client = client

	writer := pulse.NewWriter(writerFunc(rec.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(fragmentBytes),
		pulse.RecordMediaName("lma voice request"),
	)
	if err != nil {
		rec.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	rec.stream = stream
	stream.Start()

	go func() {
		select {
		case <-ctx.Done():
			rec.Stop()
		case <-rec.full:
		}
	}()
	return rec, nil
}

func newRecording(device Device, maxDuration time.Duration) *Recording {
	maxBytes := 0
	if maxDuration > 0 {
		maxBytes = int(maxDuration.Seconds() * bytesPerSecond)
		maxBytes -= maxBytes % 2
	}
	return &Recording{device: device, maxBytes: maxBytes, full: make(chan struct{})}
}

// Device returns the source being recorded.
func (r *Recording) Device() Device {
	return r.device
}

// Full is closed once the duration cap is reached.
func (r *Recording) Full() <-chan struct{} {
	return r.full
}

// Len reports the number of buffered PCM bytes.
func (r *Recording) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pcm)
}

// Duration reports the buffered audio length.
func (r *Recording) Duration() time.Duration {
	return time.Duration(r.Len()) * time.Second / bytesPerSecond
}

// Stop ends the recording and returns the buffered PCM. It is idempotent.
func (r *Recording) Stop() []byte {
	r.mu.Lock()
	alreadyStopped := r.stopped
	r.stopped = true
	r.mu.Unlock()

	if !alreadyStopped {
		if r.stream != nil {
			r.stream.Stop()
			r.stream.Close()
		}
		if r.client != nil {
			r.client.Close()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.pcm...)
}

// onPCM appends frames until stopped or the cap is reached.
func (r *Recording) onPCM(buffer []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return 0, io.EOF
	}
	if len(buffer) == 0 {
		return 0, nil
	}

	accepted := buffer
	if r.maxBytes > 0 {
		room := r.maxBytes - len(r.pcm)
		if room <= 0 {
			r.markFull()
			return 0, io.EOF
		}
		if len(accepted) > room {
			accepted = accepted[:room]
		}
	}
	r.pcm = append(r.pcm, accepted...)

	if r.maxBytes > 0 && len(r.pcm) >= r.maxBytes {
		r.markFull()
	}
	return len(buffer), nil
}

func (r *Recording) markFull() {
	r.fullOnce.Do(func() { close(r.full) })
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
