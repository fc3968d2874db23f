package sandboxes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reusee/itera/bindings"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/signals"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

type Starlark struct {
	logger logs.Logger
}

var _ Sandbox = new(Starlark)

func NewStarlark(logger logs.Logger) *Starlark {
	return &Starlark{
		logger: logger,
	}
}

// stopError carries the action of a listen or exit call out of the
// interpreter.
type stopError struct {
	action Action
}

func (s *stopError) Error() string {
	return "stop"
}

func (s *Starlark) Execute(ctx context.Context, program string, set *bindings.Set) *Outcome {
	lines := strings.Count(strings.TrimRight(program, "\n"), "\n") + 1

	file, err := fileOptions.Parse("program.star", program, 0)
	if err != nil {
		return &Outcome{
			Kind:  OutcomeFailed,
			Err:   &signals.InvalidCode{Err: err},
			Lines: lines,
		}
	}

	predeclared := make(starlark.StringDict)
	for name, value := range set.Variables {
		predeclared[name] = toStarlarkValue(value)
	}
	for _, tool := range set.Tools {
		predeclared[tool.Name] = toolBuiltin(ctx, tool)
	}
	for _, object := range set.Objects {
		predeclared[object.Object.Name] = &objectValue{
			ctx:    ctx,
			object: object,
		}
	}
	predeclared["think"] = thinkBuiltin()
	predeclared["pause"] = pauseBuiltin()
	predeclared["listen"] = listenBuiltin()
	predeclared["exit"] = exitBuiltin(set.Exits)

	prog, err := starlark.FileProgram(file, predeclared.Has)
	if err != nil {
		return &Outcome{
			Kind:  OutcomeFailed,
			Err:   &signals.InvalidCode{Err: err},
			Lines: lines,
		}
	}

	thread := &starlark.Thread{
		Name: "program",
	}
	execDone := make(chan struct{})
	defer close(execDone)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel("aborted")
		case <-execDone:
		}
	}()

	globals, err := prog.Init(thread, predeclared)

	s.logger.DebugContext(ctx, "program executed",
		"lines", lines,
		"steps", thread.Steps,
	)

	outcome := &Outcome{
		Variables: globalVariables(globals),
		Lines:     lines,
		Steps:     thread.Steps,
	}

	if err == nil {
		outcome.Kind = OutcomeOK
		return outcome
	}

	var stop *stopError
	if errors.As(err, &stop) {
		outcome.Kind = OutcomeOK
		outcome.Action = stop.action
		return outcome
	}

	if sig, ok := signals.From(err); ok {
		switch sig.(type) {
		case *signals.Think, *signals.ExecutePause, *signals.Interrupt:
			outcome.Kind = OutcomePaused
			outcome.Signal = sig
			return outcome
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		outcome.Kind = OutcomeFailed
		outcome.Err = ctxErr
		return outcome
	}

	outcome.Kind = OutcomeFailed
	outcome.Err = &signals.ExecutionError{Err: err}
	return outcome
}

func globalVariables(globals starlark.StringDict) map[string]any {
	ret := make(map[string]any)
	for name, value := range globals {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if _, isCallable := value.(starlark.Callable); isCallable {
			continue
		}
		ret[name] = fromStarlarkValue(value)
	}
	return ret
}

func toolBuiltin(ctx context.Context, tool *bindings.BoundTool) *starlark.Builtin {
	return starlark.NewBuiltin(tool.Name, func(
		thread *starlark.Thread,
		b *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {

		params := tool.Tool.Params
		if len(args) > len(params) {
			return nil, fmt.Errorf("%s: expected at most %d positional arguments, got %d",
				b.Name(), len(params), len(args))
		}
		callArgs := make(map[string]any, len(args)+len(kwargs))
		for i, arg := range args {
			callArgs[params[i]] = fromStarlarkValue(arg)
		}
		for _, kv := range kwargs {
			name, ok := starlark.AsString(kv[0])
			if !ok {
				return nil, fmt.Errorf("%s: bad keyword", b.Name())
			}
			callArgs[name] = fromStarlarkValue(kv[1])
		}

		result, err := tool.Func(ctx, callArgs)
		if err != nil {
			return nil, err
		}
		return toStarlarkValue(result), nil
	})
}

func thinkBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("think", func(
		thread *starlark.Thread,
		b *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {

		sig := new(signals.Think)

		if len(args) > 1 {
			return nil, fmt.Errorf("think: expected at most one positional argument")
		}
		if len(args) == 1 {
			switch v := fromStarlarkValue(args[0]).(type) {
			case map[string]any:
				sig.Context = v
			default:
				sig.Context = map[string]any{
					"note": v,
				}
			}
		}

		if len(kwargs) > 0 {
			sig.Variables = make(map[string]any, len(kwargs))
			for _, kv := range kwargs {
				name, ok := starlark.AsString(kv[0])
				if !ok {
					return nil, fmt.Errorf("think: bad keyword")
				}
				sig.Variables[name] = fromStarlarkValue(kv[1])
			}
		}

		return nil, sig
	})
}

func pauseBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("pause", func(
		thread *starlark.Thread,
		b *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {

		if len(args) > 0 {
			return nil, fmt.Errorf("pause: expected no positional arguments")
		}
		sig := new(signals.ExecutePause)
		if len(kwargs) > 0 {
			sig.Variables = make(map[string]any, len(kwargs))
			for _, kv := range kwargs {
				name, ok := starlark.AsString(kv[0])
				if !ok {
					return nil, fmt.Errorf("pause: bad keyword")
				}
				sig.Variables[name] = fromStarlarkValue(kv[1])
			}
		}
		return nil, sig
	})
}

func listenBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("listen", func(
		thread *starlark.Thread,
		b *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {

		if len(args) > 0 || len(kwargs) > 0 {
			return nil, fmt.Errorf("listen: expected no arguments")
		}
		return nil, &stopError{
			action: Listen{},
		}
	})
}

func exitBuiltin(exits []*contexts.Exit) *starlark.Builtin {
	return starlark.NewBuiltin("exit", func(
		thread *starlark.Thread,
		b *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {

		var name string
		var value starlark.Value = starlark.None
		if err := starlark.UnpackPositionalArgs("exit", args, kwargs, 1, &name, &value); err != nil {
			return nil, err
		}

		var decl *contexts.Exit
		for _, exit := range exits {
			if exit.Name == name {
				decl = exit
				break
			}
		}
		if decl == nil {
			return nil, fmt.Errorf("unknown exit: %s", name)
		}

		goValue := fromStarlarkValue(value)
		if err := decl.Schema.Validate(goValue); err != nil {
			return nil, fmt.Errorf("exit %s: %w", name, err)
		}

		return nil, &stopError{
			action: Exit{
				Name:  name,
				Value: goValue,
			},
		}
	})
}
