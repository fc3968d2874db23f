package signals

// A Signal is a control-flow value raised by a generated program or a tool
// call to stop execution mid-program for a reason other than returning a
// value. Signals travel as errors so they can cross the sandbox boundary, but
// only LoopExceeded is fatal for a whole run.
type Signal interface {
	error
	signal()
}

// From extracts the innermost Signal from an error chain, if any.
func From(err error) (Signal, bool) {
	for err != nil {
		if sig, ok := err.(Signal); ok {
			return sig, true
		}
		switch e := err.(type) {
		case interface{ Unwrap() error }:
			err = e.Unwrap()
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				if sig, ok := From(inner); ok {
					return sig, true
				}
			}
			return nil, false
		default:
			return nil, false
		}
	}
	return nil, false
}
