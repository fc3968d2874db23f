package engines

import (
	"github.com/reusee/dscope"
	"github.com/reusee/itera/bindings"
	"github.com/reusee/itera/generators"
	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/sandboxes"
	"github.com/reusee/itera/truncates"
	"github.com/reusee/itera/versions"
)

type Module struct {
	dscope.Module
	Bindings   bindings.Module
	Generators generators.Module
	Sandboxes  sandboxes.Module
	Truncates  truncates.Module
	Versions   versions.Module
	Logs       logs.Module
}
