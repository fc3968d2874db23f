package engines

import (
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/sandboxes"
	"github.com/reusee/itera/signals"
	"github.com/reusee/itera/snapshots"
)

type Status uint8

const (
	StatusSuccess Status = iota + 1
	StatusInterrupted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInterrupted:
		return "interrupted"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Hooks observe a run from the outside. All are optional.
type Hooks struct {
	OnIterationStart func(c *contexts.Context, iteration int)
	OnIterationEnd   func(c *contexts.Context, record *contexts.IterationRecord)
	OnTrace          func(trace contexts.Trace)
}

// RunResult is the terminal outcome of one run. Iterations always carries
// every attempt, including the fatal one.
type RunResult struct {
	Status     Status
	Context    *contexts.Context
	Iterations []*contexts.IterationRecord

	// StatusSuccess
	Action sandboxes.Action

	// StatusInterrupted
	Snapshot *snapshots.Snapshot

	Signal signals.Signal

	// StatusError
	Err error
}
