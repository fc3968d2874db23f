package truncates

import (
	"github.com/reusee/dscope"
	"github.com/reusee/itera/generators"
)

type Module struct {
	dscope.Module
	Generators generators.Module
}

// Estimate approximates token counts with the BPE counter when it loads,
// falling back to a bytes/4 heuristic. Approximate is fine here, the budget
// already reserves headroom.
func (Module) Estimate(
	count generators.BPETokenCounter,
) Estimate {
	return func(text string) int {
		n, err := count(text)
		if err != nil {
			return len(text) / 4
		}
		return n
	}
}
