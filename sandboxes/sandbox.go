package sandboxes

import (
	"context"

	"github.com/reusee/itera/bindings"
)

// Sandbox runs one candidate program against a binding set. Signals raised by
// programs or tools surface in the returned outcome, never swallowed.
type Sandbox interface {
	Execute(ctx context.Context, program string, set *bindings.Set) *Outcome
}
