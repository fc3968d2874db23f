package iteraconfigs

import (
	"github.com/reusee/itera/cmds"
	"github.com/reusee/itera/configs"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/vars"
)

type DefaultLoop int

var loopFlag = cmds.Var[int]("-loop")

func (Module) DefaultLoop(
	loader configs.Loader,
) DefaultLoop {
	return DefaultLoop(vars.FirstNonZero(
		*loopFlag,
		configs.First[int](loader, "loop"),
		contexts.DefaultLoop,
	))
}
