package contexts

import (
	"fmt"
	"maps"
	"slices"
)

const DefaultLoop = 8

type Options struct {
	Instructions string
	Objects      []*Object
	Tools        []*Tool
	Exits        []*Exit
	Transcript   []Message
	Variables    map[string]any
	Loop         int
	Temperature  *float32
	Model        string
}

// Context is the mutable state of one task run. It is exclusively owned by
// the run driving it and is never shared across concurrent runs.
type Context struct {
	Instructions string
	Objects      []*Object
	Tools        []*Tool
	Exits        []*Exit
	Transcript   []Message
	Variables    map[string]any
	Iterations   []*IterationRecord
	Loop         int
	Temperature  *float32
	Model        string

	// partial-execution messages appended mid-run, folded into the
	// effective message list until the next fully successful iteration
	Partials []Message

	// iteration counter, reset to zero whenever an iteration fully succeeds
	Iteration int
}

func New(options Options) (*Context, error) {
	if options.Loop == 0 {
		options.Loop = DefaultLoop
	}
	if options.Loop < 0 {
		return nil, fmt.Errorf("loop budget must be positive, got %d", options.Loop)
	}

	names := make(map[string]bool)
	declare := func(kind, name string) error {
		if name == "" {
			return fmt.Errorf("%s name must not be empty", kind)
		}
		if names[name] {
			return fmt.Errorf("duplicated %s name: %s", kind, name)
		}
		names[name] = true
		return nil
	}
	for _, tool := range options.Tools {
		if err := declare("tool", tool.Name); err != nil {
			return nil, err
		}
		for _, alias := range tool.Aliases {
			if err := declare("tool alias", alias); err != nil {
				return nil, err
			}
		}
	}
	for _, object := range options.Objects {
		if err := declare("object", object.Name); err != nil {
			return nil, err
		}
		propNames := make(map[string]bool)
		for _, prop := range object.Properties {
			if propNames[prop.Name] {
				return nil, fmt.Errorf("duplicated property %s on object %s", prop.Name, object.Name)
			}
			propNames[prop.Name] = true
		}
	}
	exitNames := make(map[string]bool)
	for _, exit := range options.Exits {
		if exitNames[exit.Name] {
			return nil, fmt.Errorf("duplicated exit name: %s", exit.Name)
		}
		exitNames[exit.Name] = true
	}

	variables := make(map[string]any)
	maps.Copy(variables, options.Variables)

	return &Context{
		Instructions: options.Instructions,
		Objects:      options.Objects,
		Tools:        options.Tools,
		Exits:        options.Exits,
		Transcript:   slices.Clone(options.Transcript),
		Variables:    variables,
		Loop:         options.Loop,
		Temperature:  options.Temperature,
		Model:        options.Model,
	}, nil
}

// EffectiveMessages is the message list for the next model invocation: the
// base transcript, any pending partial-execution messages, and the
// synthesized system message.
func (c *Context) EffectiveMessages(systemPrompt string) []Message {
	ret := make([]Message, 0, len(c.Transcript)+len(c.Partials)+1)
	ret = append(ret, Message{
		Role:    RoleSystem,
		Content: systemPrompt,
	})
	ret = append(ret, c.Transcript...)
	ret = append(ret, c.Partials...)
	return ret
}

// FoldVariables merges values raised by a think pause into the injected
// variables visible to every future program.
func (c *Context) FoldVariables(values ...map[string]any) {
	for _, m := range values {
		maps.Copy(c.Variables, m)
	}
}

func (c *Context) AppendPartials(messages ...Message) {
	c.Partials = append(c.Partials, messages...)
}

func (c *Context) ClearPartials() {
	c.Partials = nil
}

func (c *Context) Exit(name string) *Exit {
	for _, exit := range c.Exits {
		if exit.Name == name {
			return exit
		}
	}
	return nil
}
