package iteraconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/itera/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
