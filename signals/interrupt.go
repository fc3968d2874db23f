package signals

import "fmt"

// Interrupt is raised by a tool whose call cannot complete synchronously and
// must hand control to an external actor. Tool, schemas and Args are filled
// in by the instrumentation layer before the signal surfaces.
type Interrupt struct {
	Tool         string
	InputSchema  string
	OutputSchema string
	Args         map[string]any
	Payload      any
}

var _ Signal = new(Interrupt)

func (i *Interrupt) Error() string {
	if i.Tool == "" {
		return "interrupt"
	}
	return fmt.Sprintf("interrupt: awaiting %s", i.Tool)
}

func (*Interrupt) signal() {}
