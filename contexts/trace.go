package contexts

import "time"

type TraceKind uint8

const (
	TraceModelCall TraceKind = iota + 1
	TraceToolCall
	TraceSlowTool
	TracePropertyWrite
	TraceSignal
	TraceExecution
)

func (k TraceKind) String() string {
	switch k {
	case TraceModelCall:
		return "model_call"
	case TraceToolCall:
		return "tool_call"
	case TraceSlowTool:
		return "slow_tool"
	case TracePropertyWrite:
		return "property_write"
	case TraceSignal:
		return "signal"
	case TraceExecution:
		return "execution"
	}
	return "unknown"
}

// Trace is one observable event within an iteration. Append-only, never
// reordered. Which fields are set depends on Kind.
type Trace struct {
	Kind     TraceKind
	Time     time.Time
	Duration time.Duration

	// tool calls and slow-tool warnings
	Tool   string
	Args   map[string]any
	Result any
	OK     bool
	Err    string

	// property writes
	Object   string
	Property string
	Before   any
	After    any

	// raised signals
	Signal string

	// model calls
	Model        string
	InputTokens  int
	OutputTokens int

	// code execution summary
	Lines int
	Steps uint64
}

// Mutation records one accepted property write, collected per iteration
// independently of the trace stream.
type Mutation struct {
	Object   string
	Property string
	Before   any
	After    any
}
