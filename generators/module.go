package generators

import (
	"github.com/reusee/dscope"
	"github.com/reusee/itera/configs"
	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/nets"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Nets    nets.Module
	Logs    logs.Module
}
