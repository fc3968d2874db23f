package sandboxes

import (
	"github.com/reusee/itera/signals"
)

type OutcomeKind uint8

const (
	OutcomeOK OutcomeKind = iota + 1
	OutcomePaused
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomePaused:
		return "paused"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Action is what a program's top level concluded, delivered by the listen and
// exit builtins. A program that runs to the end without either has no action.
type Action interface {
	action()
}

// Listen ends the program successfully, handing the turn back for more input.
type Listen struct{}

func (Listen) action() {}

// Exit ends the program through a declared exit, carrying a value already
// validated against the exit's schema.
type Exit struct {
	Name  string
	Value any
}

func (Exit) action() {}

// Outcome is the result of one program execution. Exactly one of Action,
// Signal or Err is meaningful, selected by Kind. Variables holds the
// program's globals as far as execution got.
type Outcome struct {
	Kind      OutcomeKind
	Action    Action
	Signal    signals.Signal
	Err       error
	Variables map[string]any
	Lines     int
	Steps     uint64
}
