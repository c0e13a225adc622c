package audio

import (
	"context"
	"io"
	"reflect"
	"testing"
	"time"

	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"
)

func TestSelectDeviceFromListPrimaryDefault(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	selection, err := selectDeviceFromList(devices, "default", "default")
	require.NoError(t, err)
	require.Equal(t, "elgato", selection.Device.ID)
	require.Empty(t, selection.Warning)
}

func TestSelectDeviceFromListMutedPrimaryUsesFallback(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	selection, err := selectDeviceFromList(devices, "elgato", "sony")
	require.NoError(t, err)
	require.Equal(t, "sony", selection.Device.ID)
	require.Contains(t, selection.Warning, "muted")
	require.True(t, selection.Fallback)
}

func TestSelectDeviceFromListFailsWhenSelectedAndFallbackMuted(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
	}

	_, err := selectDeviceFromList(devices, "default", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "muted")
}

func TestSelectDeviceFromListUnknownInput(t *testing.T) {
	devices := []Device{{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Default: true}}

	_, err := selectDeviceFromList(devices, "missing", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not match")
}

func TestDeviceMatchesByIDAndDescription(t *testing.T) {
	dev := Device{ID: "alsa_input.usb-elgato", Description: "Elgato Wave 3 Mono"}
	require.True(t, deviceMatches(dev, "elgato"))
	require.True(t, deviceMatches(dev, "wave 3"))
	require.False(t, deviceMatches(dev, "missing"))
}

func TestListDevicesFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := ListDevices(context.Background())
	require.Error(t, err)
}

func TestSelectDeviceFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := SelectDevice(context.Background(), "default", "default")
	require.Error(t, err)
}

func TestSourceStateString(t *testing.T) {
	require.Equal(t, "running", sourceStateString(0))
	require.Equal(t, "idle", sourceStateString(1))
	require.Equal(t, "suspended", sourceStateString(2))
	require.Equal(t, "unknown(99)", sourceStateString(99))
}

func TestSourceAvailable(t *testing.T) {
	require.False(t, sourceAvailable(nil))
	require.True(t, sourceAvailable(&pulseproto.GetSourceInfoReply{})) // no ports => available

	available := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setSourcePorts(t, available, []sourcePort{{name: "mic", available: 2}})
	require.True(t, sourceAvailable(available))

	notAvailable := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setSourcePorts(t, notAvailable, []sourcePort{{name: "mic", available: 1}})
	require.False(t, sourceAvailable(notAvailable))
}

func TestWriterFuncDelegatesWrite(t *testing.T) {
	called := false
	writer := writerFunc(func(b []byte) (int, error) {
		called = true
		require.Equal(t, []byte{1, 2, 3}, b)
		return len(b), nil
	})

	n, err := writer.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.True(t, called)
}

func TestDevicesFromReplyMarksDefault(t *testing.T) {
	reply := pulseproto.GetSourceInfoListReply{
		{SourceName: "mic-a", Device: "Desk Mic", State: 1},
		nil,
		{SourceName: "mic-b", Device: "Headset", Mute: true},
	}

	devices := devicesFromReply(reply, "mic-b")
	require.Len(t, devices, 2)
	require.Equal(t, Device{ID: "mic-a", Description: "Desk Mic", State: "idle", Available: true}, devices[0])
	require.True(t, devices[1].Default)
	require.True(t, devices[1].Muted)
}

func TestDeviceString(t *testing.T) {
	require.Equal(t, "Desk Mic (mic-a)", Device{ID: "mic-a", Description: "Desk Mic"}.String())
	require.Equal(t, "mic-a", Device{ID: "mic-a"}.String())
	require.Equal(t, "Desk Mic", Device{Description: "Desk Mic"}.String())
}

func TestRecordingBuffersUntilStopped(t *testing.T) {
	rec := newRecording(Device{ID: "mic-1"}, 0)

	n, err := rec.onPCM([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 4, n)
	_, err = rec.onPCM([]byte{5, 6})
	require.NoError(t, err)

	require.Equal(t, "mic-1", rec.Device().ID)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, rec.Stop())
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, rec.Stop())

	n, err = rec.onPCM([]byte{7, 8})
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestRecordingCapSignalsFull(t *testing.T) {
	rec := newRecording(Device{}, 250*time.Millisecond)
	require.Equal(t, 8000, rec.maxBytes)

	chunk := make([]byte, 6000)
	n, err := rec.onPCM(chunk)
	require.NoError(t, err)
	require.Equal(t, 6000, n)

	select {
	case <-rec.Full():
		t.Fatal("recording reported full too early")
	default:
	}

	_, err = rec.onPCM(chunk)
	require.NoError(t, err)
	require.Equal(t, 8000, rec.Len())
	require.Equal(t, 250*time.Millisecond, rec.Duration())

	select {
	case <-rec.Full():
	case <-time.After(time.Second):
		t.Fatal("recording never reported full")
	}

	_, err = rec.onPCM(chunk)
	require.ErrorIs(t, err, io.EOF)
	require.Len(t, rec.Stop(), 8000)
}

func TestRecordFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := Record(context.Background(), Device{ID: "mic-1"}, time.Second)
	require.Error(t, err)
}

type sourcePort struct {
	name      string
	available uint32
}

func setSourcePorts(t *testing.T, reply *pulseproto.GetSourceInfoReply, ports []sourcePort) {
	t.Helper()

	sliceType := reflect.TypeOf(reply.Ports)
	sliceValue := reflect.MakeSlice(sliceType, len(ports), len(ports))

	for i, port := range ports {
		item := sliceValue.Index(i)
		item.FieldByName("Name").SetString(port.name)
		item.FieldByName("Available").SetUint(uint64(port.available))
	}

	replyValue := reflect.ValueOf(reply).Elem().FieldByName("Ports")
	replyValue.Set(sliceValue)
}
