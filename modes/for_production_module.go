package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

// ModuleForProduction selects production mode. T resolves to nil so that
// test-only providers can detect they are outside a test.
type ModuleForProduction struct {
	dscope.Module
}

func ForProduction() ModuleForProduction {
	return ModuleForProduction{}
}

func (ModuleForProduction) T() *testing.T {
	return nil
}

func (ModuleForProduction) Mode() Mode {
	return ModeProduction
}
