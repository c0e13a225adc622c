//go:build integration

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Needs a running PulseAudio or PipeWire-pulse server with an unmuted source.
func TestDefaultSourceRecordsUntilCap(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	devices, err := ListDevices(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, devices)

	selection, err := SelectDevice(ctx, "default", "")
	require.NoError(t, err)
	t.Logf("recording from %s", selection.Device)

	rec, err := Record(ctx, selection.Device, 300*time.Millisecond)
	require.NoError(t, err)

	select {
	case <-rec.Full():
	case <-ctx.Done():
		t.Fatal("recording never reached its cap")
	}

	pcm := rec.Stop()
	require.Equal(t, 0, len(pcm)%2, "s16le frames must be whole")
	require.InDelta(t, 300*time.Millisecond, rec.Duration(), float64(50*time.Millisecond))
}
