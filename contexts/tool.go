package contexts

import (
	"context"

	"github.com/reusee/itera/schemas"
)

// Tool is a callable declared to the model. Params lists argument names in
// positional order; Input and Output constrain the argument map and the
// result.
type Tool struct {
	Name        string
	Aliases     []string
	Description string
	Params      []string
	Input       *schemas.Schema
	Output      *schemas.Schema
	Func        func(ctx context.Context, args map[string]any) (any, error)
}
