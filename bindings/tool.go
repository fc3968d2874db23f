package bindings

import (
	"context"
	"time"

	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/schemas"
	"github.com/reusee/itera/signals"
	"github.com/reusee/itera/syncs"
)

// BoundTool is one callable name visible to generated programs. Aliases fan
// out to separate bound tools sharing one instrumented func, so every alias
// traces under the primary tool name.
type BoundTool struct {
	Name string
	Tool *contexts.Tool
	Func func(ctx context.Context, args map[string]any) (any, error)
}

func instrument(
	tool *contexts.Tool,
	recorder *Recorder,
	replay *replayState,
	semaphore syncs.Semaphore,
	slowThreshold time.Duration,
) func(ctx context.Context, args map[string]any) (any, error) {
	return func(ctx context.Context, args map[string]any) (any, error) {
		args = schemas.Coerce(tool.Input, args)

		if result, served, err := replay.next(tool.Name); served || err != nil {
			if err != nil {
				if annotate(tool, args, err) {
					return nil, err
				}
				recorder.Add(contexts.Trace{
					Kind: contexts.TraceToolCall,
					Tool: tool.Name,
					Args: args,
					Err:  err.Error(),
				})
				return nil, err
			}
			recorder.Add(contexts.Trace{
				Kind:   contexts.TraceToolCall,
				Tool:   tool.Name,
				Args:   args,
				Result: result,
				OK:     true,
			})
			return result, nil
		}

		if err := semaphore.AcquireContext(ctx); err != nil {
			return nil, err
		}
		defer semaphore.Release()

		slowTimer := time.AfterFunc(slowThreshold, func() {
			recorder.Add(contexts.Trace{
				Kind:     contexts.TraceSlowTool,
				Tool:     tool.Name,
				Args:     args,
				Duration: slowThreshold,
			})
		})
		defer slowTimer.Stop()

		t0 := time.Now()
		result, err := tool.Func(ctx, args)
		duration := time.Since(t0)

		if err != nil {
			if annotate(tool, args, err) {
				sig, _ := signals.From(err)
				recorder.Add(contexts.Trace{
					Kind:     contexts.TraceSignal,
					Tool:     tool.Name,
					Args:     args,
					Signal:   sig.Error(),
					Duration: duration,
				})
				return nil, err
			}
			recorder.Add(contexts.Trace{
				Kind:     contexts.TraceToolCall,
				Tool:     tool.Name,
				Args:     args,
				Err:      err.Error(),
				Duration: duration,
			})
			return nil, err
		}

		if validateErr := tool.Output.Validate(result); validateErr != nil {
			recorder.Add(contexts.Trace{
				Kind:     contexts.TraceToolCall,
				Tool:     tool.Name,
				Args:     args,
				Result:   result,
				Err:      validateErr.Error(),
				Duration: duration,
			})
			return nil, validateErr
		}

		recorder.Add(contexts.Trace{
			Kind:     contexts.TraceToolCall,
			Tool:     tool.Name,
			Args:     args,
			Result:   result,
			OK:       true,
			Duration: duration,
		})
		replay.append(CallRecord{
			Tool:   tool.Name,
			Args:   args,
			Result: result,
		})

		return result, nil
	}
}

// annotate fills interrupt signals with the calling tool's identity and
// schemas so the caller can resolve them without the original declaration.
// Reports whether err carries a signal.
func annotate(tool *contexts.Tool, args map[string]any, err error) bool {
	sig, ok := signals.From(err)
	if !ok {
		return false
	}
	if interrupt, ok := sig.(*signals.Interrupt); ok {
		interrupt.Tool = tool.Name
		interrupt.InputSchema = tool.Input.Source()
		interrupt.OutputSchema = tool.Output.Source()
		interrupt.Args = args
	}
	return true
}
