package bindings

import (
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/itera/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}

// SlowCallThreshold is how long a tool call may run before a slow-tool
// trace is emitted. The call itself is never cancelled.
type SlowCallThreshold time.Duration

func (Module) SlowCallThreshold() SlowCallThreshold {
	return SlowCallThreshold(15 * time.Second)
}

// ToolConcurrency caps tool calls running at the same time within one
// execution.
type ToolConcurrency int

func (Module) ToolConcurrency() ToolConcurrency {
	return 8
}
