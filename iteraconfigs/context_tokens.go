package iteraconfigs

import (
	"math"

	"github.com/reusee/itera/cmds"
	"github.com/reusee/itera/configs"
)

// MaxContextTokens caps the token budget regardless of what the model's
// context window allows.
type MaxContextTokens int

var contextTokensFlag = cmds.Var[int]("-context-tokens")

func (Module) MaxContextTokens(
	loader configs.Loader,
) MaxContextTokens {
	maxTokens := math.MaxInt

	// flag
	if *contextTokensFlag != 0 {
		maxTokens = min(maxTokens, *contextTokensFlag)
	}

	// config
	if n := configs.First[int](loader, "context_tokens"); n != 0 {
		maxTokens = min(maxTokens, n)
	}

	return MaxContextTokens(maxTokens)
}
