package versions

import (
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
}

func (Module) Version() Version {
	return new(Default)
}
