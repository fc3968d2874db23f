package bindings

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/reusee/itera/contexts"
)

// ObjectBinding guards one declared object. The property table is sealed at
// build time: reads and writes of undeclared names fail instead of creating
// new slots.
type ObjectBinding struct {
	object   *contexts.Object
	recorder *Recorder
	mu       sync.Mutex
}

func (b *ObjectBinding) Name() string {
	return b.object.Name
}

func (b *ObjectBinding) Get(name string) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prop := b.object.Property(name)
	if prop == nil {
		return nil, fmt.Errorf("object %s has no property %s", b.object.Name, name)
	}
	return prop.Value, nil
}

func (b *ObjectBinding) Set(name string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prop := b.object.Property(name)
	if prop == nil {
		return fmt.Errorf("object %s has no property %s", b.object.Name, name)
	}
	if !prop.Writable {
		return fmt.Errorf("property %s.%s is read-only", b.object.Name, name)
	}
	// writing back the same value is a no-op, no trace, no mutation, and no
	// validation: a stored value predating a stricter schema stays rewritable
	if reflect.DeepEqual(prop.Value, value) {
		return nil
	}

	if err := prop.Schema.Validate(value); err != nil {
		return fmt.Errorf("property %s.%s: %w", b.object.Name, name, err)
	}

	before := prop.Value
	prop.Value = value

	b.recorder.Add(contexts.Trace{
		Kind:     contexts.TracePropertyWrite,
		Object:   b.object.Name,
		Property: name,
		Before:   before,
		After:    value,
	})
	b.recorder.AddMutation(contexts.Mutation{
		Object:   b.object.Name,
		Property: name,
		Before:   before,
		After:    value,
	})

	return nil
}
