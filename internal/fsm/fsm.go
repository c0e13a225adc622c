// Package fsm defines the assistant run lifecycle.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
	StateThinking  State = "thinking"
	StateActing    State = "acting"
	StateError     State = "error"
)

const (
	// EventListen begins a voice run.
	EventListen Event = "listen"
	// EventSubmit begins a text run (selection or typed question).
	EventSubmit Event = "submit"
	EventStop   Event = "stop"
	EventCancel Event = "cancel"
	// EventAnswer marks a model reply ready to act on.
	EventAnswer Event = "answer"
	EventDone   Event = "done"
	EventFail   Event = "fail"
	EventReset  Event = "reset"
)

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventListen: StateListening,
		EventSubmit: StateThinking,
	},
	StateListening: {
		EventStop:   StateThinking,
		EventCancel: StateIdle,
	},
	StateThinking: {
		EventAnswer: StateActing,
	},
	StateActing: {
		EventDone: StateIdle,
	},
	StateError: {
		EventReset: StateIdle,
	},
}

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	edges, ok := transitions[current]
	if !ok {
		return current, fmt.Errorf("unknown state %q", current)
	}
	next, ok := edges[event]
	if !ok {
		return current, invalidTransition(current, event)
	}
	return next, nil
}

// Busy reports whether a run is past listening and can no longer be stopped.
func (s State) Busy() bool {
	return s == StateThinking || s == StateActing
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
