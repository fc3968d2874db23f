package sandboxes

import (
	"github.com/reusee/dscope"
	"github.com/reusee/itera/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}

func (Module) Sandbox(
	logger logs.Logger,
) Sandbox {
	return NewStarlark(logger)
}
