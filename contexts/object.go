package contexts

import (
	"github.com/reusee/itera/schemas"
)

// Property is one named slot on a declared object. Value holds the current
// value; mutation goes through the sandbox binding layer only.
type Property struct {
	Name     string
	Value    any
	Writable bool
	Schema   *schemas.Schema
}

// Object is a named bundle of properties and bound tools exposed to
// generated programs.
type Object struct {
	Name        string
	Description string
	Properties  []*Property
	Tools       []*Tool
}

func (o *Object) Property(name string) *Property {
	for _, prop := range o.Properties {
		if prop.Name == name {
			return prop
		}
	}
	return nil
}
