package signals

// Think is raised when a program explicitly asks to pause and let the model
// reconsider. Variables and Context are folded into the run's injected
// variables before the next cycle.
type Think struct {
	Variables map[string]any
	Context   map[string]any
}

var _ Signal = new(Think)

func (t *Think) Error() string {
	return "think"
}

func (*Think) signal() {}

// ExecutePause returns control to the driving caller without necessarily
// re-invoking the model. Used for host-controlled single-stepping.
type ExecutePause struct {
	Variables map[string]any
}

var _ Signal = new(ExecutePause)

func (e *ExecutePause) Error() string {
	return "execute pause"
}

func (*ExecutePause) signal() {}
