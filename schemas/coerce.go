package schemas

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
)

// Coerce adjusts tool-call arguments toward the schema's declared kinds.
// Best effort only: values that cannot be coerced are passed through
// unchanged, never rejected, since model outputs are often loosely typed.
func Coerce(s *Schema, args map[string]any) map[string]any {
	if s == nil || len(args) == 0 {
		return args
	}
	c, err := s.compile()
	if err != nil {
		return args
	}
	ret := make(map[string]any, len(args))
	for name, value := range args {
		field := c.value.LookupPath(cue.MakePath(cue.Str(name)))
		if field.Err() != nil {
			ret[name] = value
			continue
		}
		ret[name] = coerceValue(field.IncompleteKind(), value)
	}
	return ret
}

func coerceValue(kind cue.Kind, value any) any {
	switch kind {

	case cue.StringKind:
		switch v := value.(type) {
		case string:
			return v
		case int, int64, float64, bool:
			return fmt.Sprint(v)
		}

	case cue.IntKind:
		switch v := value.(type) {
		case int, int64:
			return v
		case float64:
			if v == float64(int64(v)) {
				return int64(v)
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}

	case cue.NumberKind, cue.FloatKind:
		switch v := value.(type) {
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}

	case cue.BoolKind:
		switch v := value.(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}

	}

	return value
}
