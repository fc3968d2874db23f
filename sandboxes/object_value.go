package sandboxes

import (
	"context"
	"fmt"
	"sort"

	"github.com/reusee/itera/bindings"
	"go.starlark.net/starlark"
)

// objectValue exposes a bound object to programs. Its attribute set is
// sealed: only declared properties and tools resolve, and assignment goes
// through the binding's validation.
type objectValue struct {
	ctx    context.Context
	object *bindings.BoundObject
}

var _ starlark.HasAttrs = new(objectValue)

var _ starlark.HasSetField = new(objectValue)

func (o *objectValue) String() string {
	return fmt.Sprintf("<object %s>", o.object.Object.Name)
}

func (o *objectValue) Type() string {
	return "object"
}

func (o *objectValue) Freeze() {}

func (o *objectValue) Truth() starlark.Bool {
	return true
}

func (o *objectValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: object")
}

func (o *objectValue) Attr(name string) (starlark.Value, error) {
	for _, tool := range o.object.Tools {
		if tool.Name == name {
			return toolBuiltin(o.ctx, tool), nil
		}
	}
	if prop := o.object.Object.Property(name); prop != nil {
		value, err := o.object.Get(name)
		if err != nil {
			return nil, err
		}
		return toStarlarkValue(value), nil
	}
	// nil, nil reports no such attribute
	return nil, nil
}

func (o *objectValue) AttrNames() []string {
	var names []string
	for _, prop := range o.object.Object.Properties {
		names = append(names, prop.Name)
	}
	for _, tool := range o.object.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

func (o *objectValue) SetField(name string, value starlark.Value) error {
	return o.object.Set(name, fromStarlarkValue(value))
}
