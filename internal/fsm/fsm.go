// Package fsm defines the pipeline lifecycle states and their legal transitions.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)

const (
	EventStart   Event = "start"
	EventReady   Event = "ready"
	EventStop    Event = "stop"
	EventStopped Event = "stopped"
	EventFail    Event = "fail"
	EventClose   Event = "close"
)

// Transition returns the state reached by applying event to current.
//
// EventFail returns any live state to idle so a later start can retry.
func Transition(current State, event Event) (State, error) {
	if event == EventFail && current != StateStopped {
		if !Known(current) {
			return current, fmt.Errorf("unknown state %q", current)
		}
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateLoading, nil
		case EventClose:
			return StateStopped, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateLoading:
		switch event {
		case EventReady:
			return StateRunning, nil
		case EventStop:
			return StateStopping, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRunning:
		switch event {
		case EventStop:
			return StateStopping, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopping:
		switch event {
		case EventStopped:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopped:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Active reports whether a session currently owns capture resources.
func Active(state State) bool {
	switch state {
	case StateLoading, StateRunning, StateStopping:
		return true
	default:
		return false
	}
}

// Known reports whether state is one of the declared lifecycle states.
func Known(state State) bool {
	switch state {
	case StateIdle, StateLoading, StateRunning, StateStopping, StateStopped:
		return true
	default:
		return false
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
