package contexts

import (
	"time"

	"github.com/reusee/itera/signals"
)

type IterationStatus string

const (
	IterationSuccess IterationStatus = "success"
	IterationPartial IterationStatus = "partial"
	IterationError   IterationStatus = "error"
)

// ModelMetrics captures one model invocation.
type ModelMetrics struct {
	InputTokens  int
	OutputTokens int
	InputCost    float64
	OutputCost   float64
	Cached       bool
	Provider     string
	Model        string
	Latency      time.Duration
}

// IterationRecord is the immutable log entry of one loop cycle. Created
// exactly once per cycle and never mutated after being appended.
type IterationRecord struct {
	ID        string
	Status    IterationStatus
	Program   string
	Variables map[string]any
	Signal    signals.Signal
	Mutations []Mutation
	Traces    []Trace
	Metrics   *ModelMetrics
	StartedAt time.Time
	EndedAt   time.Time
	Err       error
}
