package snapshots

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/itera/bindings"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/signals"
)

// ErrConsumed reports a resolve or reject on a snapshot that was already
// consumed.
var ErrConsumed = errors.New("snapshot already consumed")

// Snapshot captures a suspended iteration. Tool declarations hold funcs and
// do not serialize; the caller re-supplies them at resume time and the
// journal replays the calls already completed.
type Snapshot struct {
	ID        uuid.UUID
	CreatedAt time.Time

	// the pending call
	Tool         string
	InputSchema  string
	OutputSchema string
	Args         map[string]any
	Payload      any

	// resumption state
	Program string
	Journal []bindings.CallRecord

	// context state at suspension time
	Instructions string
	Transcript   []contexts.Message
	Variables    map[string]any
	Model        string
	Loop         int

	consumed atomic.Bool
}

func New(
	interrupt *signals.Interrupt,
	program string,
	journal []bindings.CallRecord,
	c *contexts.Context,
) *Snapshot {
	return &Snapshot{
		ID:           uuid.New(),
		CreatedAt:    time.Now(),
		Tool:         interrupt.Tool,
		InputSchema:  interrupt.InputSchema,
		OutputSchema: interrupt.OutputSchema,
		Args:         interrupt.Args,
		Payload:      interrupt.Payload,
		Program:      program,
		Journal:      journal,
		Instructions: c.Instructions,
		Transcript:   append([]contexts.Message(nil), c.Transcript...),
		Variables:    c.Variables,
		Model:        c.Model,
		Loop:         c.Loop,
	}
}

// Consume marks the snapshot used. The second call fails.
func (s *Snapshot) Consume() error {
	if !s.consumed.CompareAndSwap(false, true) {
		return ErrConsumed
	}
	return nil
}
