package session

import "strings"

// Mode is the trigger that started a run.
type Mode string

const (
	// ModeActivate captures the screen, then listens.
	ModeActivate Mode = "activate"
	// ModeVoice listens without a screenshot.
	ModeVoice Mode = "voice"
	// ModeSelection submits the selected text.
	ModeSelection Mode = "selection"
	// ModeAsk submits a typed question.
	ModeAsk Mode = "ask"
)

// Modes lists every trigger mode in help order.
var Modes = []Mode{ModeActivate, ModeVoice, ModeSelection, ModeAsk}

// ParseMode resolves a command name to a trigger mode.
func ParseMode(name string) (Mode, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, mode := range Modes {
		if string(mode) == name {
			return mode, true
		}
	}
	return "", false
}

// Voice reports whether the mode records audio.
func (m Mode) Voice() bool {
	return m == ModeActivate || m == ModeVoice
}
