package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/itera/configs"
	"github.com/reusee/itera/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
