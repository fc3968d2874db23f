package engines

import (
	"context"

	"github.com/reusee/itera/bindings"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/generators"
	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/snapshots"
	"github.com/reusee/itera/vars"
)

// ResumeOptions re-supplies what a snapshot cannot carry: the declarations
// with their live funcs.
type ResumeOptions struct {
	Objects     []*contexts.Object
	Tools       []*contexts.Tool
	Exits       []*contexts.Exit
	Temperature *float32
	Hooks       Hooks
}

type Resume func(
	ctx context.Context,
	snapshot *snapshots.Snapshot,
	options ResumeOptions,
	resolution *bindings.Resolution,
) *RunResult

func (Module) Resume(
	getClient generators.GetClient,
	defaultModel generators.DefaultModelName,
	newEngine NewEngine,
	newSpan logs.NewSpan,
) Resume {
	return func(
		ctx context.Context,
		snapshot *snapshots.Snapshot,
		options ResumeOptions,
		resolution *bindings.Resolution,
	) *RunResult {
		ctx, _ = newSpan(ctx, "")

		if err := snapshot.Consume(); err != nil {
			return &RunResult{
				Status: StatusError,
				Err:    wrap(err),
			}
		}

		c, err := contexts.New(contexts.Options{
			Instructions: snapshot.Instructions,
			Objects:      options.Objects,
			Tools:        options.Tools,
			Exits:        options.Exits,
			Transcript:   snapshot.Transcript,
			Variables:    snapshot.Variables,
			Loop:         snapshot.Loop,
			Temperature:  options.Temperature,
			Model:        snapshot.Model,
		})
		if err != nil {
			return &RunResult{
				Status: StatusError,
				Err:    wrap(err),
			}
		}
		c.Model = vars.FirstNonZero(c.Model, string(defaultModel))

		client, err := getClient(c.Model)
		if err != nil {
			return &RunResult{
				Status:  StatusError,
				Context: c,
				Err:     wrap(err),
			}
		}

		return newEngine(client, options.Hooks).run(ctx, c, &resumption{
			program: snapshot.Program,
			build: bindings.BuildOptions{
				Journal:    snapshot.Journal,
				Resolution: resolution,
			},
		})
	}
}

// Resolve consumes a snapshot, supplying value as the result of the call
// that suspended it, and continues the run.
type Resolve func(
	ctx context.Context,
	snapshot *snapshots.Snapshot,
	options ResumeOptions,
	value any,
) *RunResult

func (Module) Resolve(
	resume Resume,
) Resolve {
	return func(
		ctx context.Context,
		snapshot *snapshots.Snapshot,
		options ResumeOptions,
		value any,
	) *RunResult {
		return resume(ctx, snapshot, options, &bindings.Resolution{
			Value: value,
		})
	}
}

// Reject consumes a snapshot, raising reason at the suspension point
// instead of a result.
type Reject func(
	ctx context.Context,
	snapshot *snapshots.Snapshot,
	options ResumeOptions,
	reason error,
) *RunResult

func (Module) Reject(
	resume Resume,
) Reject {
	return func(
		ctx context.Context,
		snapshot *snapshots.Snapshot,
		options ResumeOptions,
		reason error,
	) *RunResult {
		return resume(ctx, snapshot, options, &bindings.Resolution{
			Err: reason,
		})
	}
}
