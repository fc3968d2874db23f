package engines

import (
	"context"

	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/generators"
	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/vars"
)

// Run drives one task to a terminal outcome.
type Run func(ctx context.Context, options contexts.Options, hooks Hooks) *RunResult

func (Module) Run(
	getClient generators.GetClient,
	defaultModel generators.DefaultModelName,
	newEngine NewEngine,
	newSpan logs.NewSpan,
) Run {
	return func(ctx context.Context, options contexts.Options, hooks Hooks) *RunResult {
		ctx, _ = newSpan(ctx, "")

		c, err := contexts.New(options)
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

		return newEngine(client, hooks).run(ctx, c, nil)
	}
}
