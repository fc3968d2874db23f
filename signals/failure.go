package signals

import "fmt"

// InvalidCode reports a program that failed to parse or violated sandbox
// constraints before any execution.
type InvalidCode struct {
	Msg string
	Err error
}

var _ Signal = new(InvalidCode)

func (i *InvalidCode) Error() string {
	if i.Err != nil {
		return fmt.Sprintf("invalid code: %s", i.Err)
	}
	return "invalid code: " + i.Msg
}

func (i *InvalidCode) Unwrap() error {
	return i.Err
}

func (*InvalidCode) signal() {}

// ExecutionError reports a program that parsed and started but raised an
// unhandled error during execution, including a rejected property assignment.
type ExecutionError struct {
	Err error
}

var _ Signal = new(ExecutionError)

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error: %s", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (*ExecutionError) signal() {}

// LoopExceeded reports that the per-run iteration counter reached the
// configured budget. Fatal for the whole run, never retried.
type LoopExceeded struct {
	Limit int
}

var _ Signal = new(LoopExceeded)

func (l *LoopExceeded) Error() string {
	return fmt.Sprintf("loop budget exceeded: %d", l.Limit)
}

func (*LoopExceeded) signal() {}
