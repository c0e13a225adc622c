// Package audio discovers PulseAudio input sources and records utterances from them.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// String formats the device for logs and status output.
func (d Device) String() string {
	description := strings.TrimSpace(d.Description)
	id := strings.TrimSpace(d.ID)
	switch {
	case description == "":
		return id
	case id == "":
		return description
	default:
		return fmt.Sprintf("%s (%s)", description, id)
	}
}

// Selection is the resolved capture source plus an optional fallback warning.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

func newClient() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("lma"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// ListDevices returns Pulse input sources with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return devicesFromReply(sourceInfos, defaultSource.ID()), nil
}

func devicesFromReply(sources pulseproto.GetSourceInfoListReply, defaultID string) []Device {
	devices := make([]Device, 0, len(sources))
	for _, source := range sources {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			State:       sourceStateString(source.State),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices
}

// SelectDevice resolves audio.input/audio.fallback preferences against live devices.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectDeviceFromList(devices, input, fallback)
}

// selectDeviceFromList applies the selection policy to a pre-fetched device list.
// "default" or an empty preference means the server default source.
func selectDeviceFromList(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	input = normalizePreference(input)
	fallback = normalizePreference(fallback)

	primary, err := findDevice(devices, input)
	if err != nil {
		return Selection{}, fmt.Errorf("audio.input: %w", err)
	}
	if usable(primary) {
		return Selection{Device: *primary}, nil
	}

	reason := "unavailable"
	if primary.Muted {
		reason = "muted"
	}

	alternate, err := findDevice(devices, fallback)
	if err != nil {
		return Selection{}, fmt.Errorf("primary input %q is %s and no usable fallback: %w", primary.ID, reason, err)
	}
	if !alternate.Available {
		return Selection{}, fmt.Errorf("audio fallback device %q is not available", alternate.ID)
	}
	if alternate.Muted {
		return Selection{}, fmt.Errorf("audio fallback device %q is muted", alternate.ID)
	}

	return Selection{
		Device:   *alternate,
		Warning:  fmt.Sprintf("audio.input %q is %s; falling back to %q", primary.ID, reason, alternate.ID),
		Fallback: primary.ID != alternate.ID,
	}, nil
}

func normalizePreference(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "default" {
		return ""
	}
	return raw
}

func findDevice(devices []Device, term string) (*Device, error) {
	for i := range devices {
		dev := &devices[i]
		if term == "" && dev.Default {
			return dev, nil
		}
		if term != "" && deviceMatches(*dev, term) {
			return dev, nil
		}
	}
	if term == "" {
		return nil, errors.New("default audio source is unavailable")
	}
	return nil, fmt.Errorf("%q did not match any device", term)
}

func usable(dev *Device) bool {
	return dev.Available && !dev.Muted
}

// deviceMatches reports whether a search term matches a device id or description.
func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(device.ID), term) ||
		strings.Contains(strings.ToLower(device.Description), term)
}

// sourceStateString maps Pulse source state constants to readable values.
func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sourceAvailable maps Pulse port availability to a boolean.
func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available != 1
	}
	return true
}
