package schemas

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema is a cue expression constraining a value, e.g. `int & >0` or
// `{name: string, age?: int}`.
type Schema struct {
	source  string
	compile func() (*compiled, error)
}

type compiled struct {
	value cue.Value
	ctx   *cue.Context
}

func New(source string) *Schema {
	return &Schema{
		source: source,
		compile: sync.OnceValues(func() (*compiled, error) {
			ctx := cuecontext.New()
			value := ctx.CompileString(source)
			if err := value.Err(); err != nil {
				return nil, err
			}
			return &compiled{
				value: value,
				ctx:   ctx,
			}, nil
		}),
	}
}

func (s *Schema) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

func (s *Schema) Validate(v any) error {
	if s == nil {
		return nil
	}
	c, err := s.compile()
	if err != nil {
		return fmt.Errorf("bad schema %q: %w", s.source, err)
	}
	encoded := c.ctx.Encode(v)
	if err := encoded.Err(); err != nil {
		return err
	}
	if err := c.value.Unify(encoded).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("value does not satisfy %q: %w", s.source, err)
	}
	return nil
}
