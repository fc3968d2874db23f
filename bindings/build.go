package bindings

import (
	"maps"
	"time"

	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/syncs"
)

// BoundObject pairs an object declaration with its guarded binding and the
// instrumented tools bound to it.
type BoundObject struct {
	Object  *contexts.Object
	Tools   []*BoundTool
	binding *ObjectBinding
}

func (b *BoundObject) Get(name string) (any, error) {
	return b.binding.Get(name)
}

func (b *BoundObject) Set(name string, value any) error {
	return b.binding.Set(name, value)
}

// Set is everything one execution exposes to a generated program.
type Set struct {
	Objects   []*BoundObject
	Tools     []*BoundTool
	Exits     []*contexts.Exit
	Variables map[string]any
	Recorder  *Recorder

	replay *replayState
}

// Journal is the ordered record of tool calls completed so far, suitable for
// snapshotting an interrupted execution.
func (s *Set) Journal() []CallRecord {
	return s.replay.journal()
}

type BuildOptions struct {
	// Journal replays previously completed calls during resumption.
	Journal []CallRecord
	// Resolution feeds the call that interrupted the snapshotted execution.
	Resolution *Resolution
	OnTrace    OnTrace
}

type Build func(c *contexts.Context, options BuildOptions) *Set

func (Module) Build(
	slowThreshold SlowCallThreshold,
	concurrency ToolConcurrency,
) Build {
	return func(c *contexts.Context, options BuildOptions) *Set {

		recorder := NewRecorder(options.OnTrace)
		replay := &replayState{
			pending:    append([]CallRecord(nil), options.Journal...),
			resolution: options.Resolution,
		}
		semaphore := syncs.NewSemaphore(int(concurrency))

		bindTools := func(tools []*contexts.Tool) []*BoundTool {
			var ret []*BoundTool
			for _, tool := range tools {
				fn := instrument(tool, recorder, replay, semaphore, time.Duration(slowThreshold))
				ret = append(ret, &BoundTool{
					Name: tool.Name,
					Tool: tool,
					Func: fn,
				})
				for _, alias := range tool.Aliases {
					ret = append(ret, &BoundTool{
						Name: alias,
						Tool: tool,
						Func: fn,
					})
				}
			}
			return ret
		}

		set := &Set{
			Tools:     bindTools(c.Tools),
			Exits:     c.Exits,
			Variables: maps.Clone(c.Variables),
			Recorder:  recorder,
			replay:    replay,
		}

		for _, object := range c.Objects {
			set.Objects = append(set.Objects, &BoundObject{
				Object: object,
				Tools:  bindTools(object.Tools),
				binding: &ObjectBinding{
					object:   object,
					recorder: recorder,
				},
			})
		}

		return set
	}
}
