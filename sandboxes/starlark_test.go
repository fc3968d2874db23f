package sandboxes

import (
	"context"
	"errors"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/itera/bindings"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/schemas"
	"github.com/reusee/itera/signals"
)

func testScope() dscope.Scope {
	return dscope.New(
		new(Module),
		new(bindings.Module),
	)
}

func testSet(t *testing.T, build bindings.Build, options contexts.Options) *bindings.Set {
	t.Helper()
	c, err := contexts.New(options)
	if err != nil {
		t.Fatal(err)
	}
	return build(c, bindings.BuildOptions{})
}

func TestExecuteToolCall(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name:   "add",
					Params: []string{"a", "b"},
					Input:  schemas.New("{a: int, b: int}"),
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						return args["a"].(int64) + args["b"].(int64), nil
					},
				},
			},
		})

		outcome := sandbox.Execute(context.Background(), `
r = add(2, 3)
listen()
`, set)

		if outcome.Kind != OutcomeOK {
			t.Fatalf("got %+v", outcome)
		}
		if _, ok := outcome.Action.(Listen); !ok {
			t.Fatalf("got %+v", outcome.Action)
		}
		if outcome.Variables["r"] != int64(5) {
			t.Fatalf("got %+v", outcome.Variables)
		}
		if outcome.Steps == 0 {
			t.Fatalf("got %+v", outcome)
		}

		traces := set.Recorder.Traces()
		if len(traces) != 1 || traces[0].Tool != "add" || !traces[0].OK {
			t.Fatalf("got %+v", traces)
		}
	})
}

func TestExecuteInvalidCode(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{})

		outcome := sandbox.Execute(context.Background(), `def broken(:`, set)
		if outcome.Kind != OutcomeFailed {
			t.Fatalf("got %+v", outcome)
		}
		sig, ok := signals.From(outcome.Err)
		if !ok {
			t.Fatalf("got %v", outcome.Err)
		}
		if _, ok := sig.(*signals.InvalidCode); !ok {
			t.Fatalf("got %v", sig)
		}
	})
}

func TestExecuteRuntimeError(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{})

		outcome := sandbox.Execute(context.Background(), `x = 1 // 0`, set)
		if outcome.Kind != OutcomeFailed {
			t.Fatalf("got %+v", outcome)
		}
		sig, ok := signals.From(outcome.Err)
		if !ok {
			t.Fatalf("got %v", outcome.Err)
		}
		if _, ok := sig.(*signals.ExecutionError); !ok {
			t.Fatalf("got %v", sig)
		}
	})
}

func TestExecuteThink(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{})

		outcome := sandbox.Execute(context.Background(), `
plan = "first sum, then report"
think(step=1, plan=plan)
`, set)

		if outcome.Kind != OutcomePaused {
			t.Fatalf("got %+v", outcome)
		}
		think, ok := outcome.Signal.(*signals.Think)
		if !ok {
			t.Fatalf("got %v", outcome.Signal)
		}
		if think.Variables["step"] != int64(1) {
			t.Fatalf("got %+v", think.Variables)
		}
		if think.Variables["plan"] != "first sum, then report" {
			t.Fatalf("got %+v", think.Variables)
		}
	})
}

func TestExecutePauseBuiltin(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{})

		outcome := sandbox.Execute(context.Background(), `pause(cursor=3)`, set)
		if outcome.Kind != OutcomePaused {
			t.Fatalf("got %+v", outcome)
		}
		pause, ok := outcome.Signal.(*signals.ExecutePause)
		if !ok {
			t.Fatalf("got %v", outcome.Signal)
		}
		if pause.Variables["cursor"] != int64(3) {
			t.Fatalf("got %+v", pause.Variables)
		}
	})
}

func TestExecuteObject(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		newSet := func() *bindings.Set {
			return testSet(t, build, contexts.Options{
				Objects: []*contexts.Object{
					{
						Name: "counter",
						Properties: []*contexts.Property{
							{
								Name:     "value",
								Value:    int64(1),
								Writable: true,
								Schema:   schemas.New("int & >=0"),
							},
							{
								Name:  "unit",
								Value: "items",
							},
						},
						Tools: []*contexts.Tool{
							{
								Name: "describe",
								Func: func(ctx context.Context, args map[string]any) (any, error) {
									return "a counter", nil
								},
							},
						},
					},
				},
			})
		}

		set := newSet()
		outcome := sandbox.Execute(context.Background(), `
counter.value = counter.value + 1
d = counter.describe()
`, set)
		if outcome.Kind != OutcomeOK {
			t.Fatalf("got %+v", outcome)
		}
		if outcome.Variables["d"] != "a counter" {
			t.Fatalf("got %+v", outcome.Variables)
		}
		v, err := set.Objects[0].Get("value")
		if err != nil {
			t.Fatal(err)
		}
		if v != int64(2) {
			t.Fatalf("got %v", v)
		}
		mutations := set.Recorder.Mutations()
		if len(mutations) != 1 {
			t.Fatalf("got %+v", mutations)
		}

		// read-only assignment fails the program
		outcome = sandbox.Execute(context.Background(), `counter.unit = "things"`, newSet())
		if outcome.Kind != OutcomeFailed {
			t.Fatalf("got %+v", outcome)
		}

		// undeclared attributes do not resolve
		outcome = sandbox.Execute(context.Background(), `x = counter.missing`, newSet())
		if outcome.Kind != OutcomeFailed {
			t.Fatalf("got %+v", outcome)
		}
	})
}

func TestExecuteExit(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		newSet := func() *bindings.Set {
			return testSet(t, build, contexts.Options{
				Exits: []*contexts.Exit{
					{
						Name:   "done",
						Schema: schemas.New("string"),
					},
				},
			})
		}

		outcome := sandbox.Execute(context.Background(), `exit("done", "all set")`, newSet())
		if outcome.Kind != OutcomeOK {
			t.Fatalf("got %+v", outcome)
		}
		exit, ok := outcome.Action.(Exit)
		if !ok {
			t.Fatalf("got %+v", outcome.Action)
		}
		if exit.Name != "done" || exit.Value != "all set" {
			t.Fatalf("got %+v", exit)
		}

		outcome = sandbox.Execute(context.Background(), `exit("done", 42)`, newSet())
		if outcome.Kind != OutcomeFailed {
			t.Fatalf("got %+v", outcome)
		}

		outcome = sandbox.Execute(context.Background(), `exit("nope", "x")`, newSet())
		if outcome.Kind != OutcomeFailed {
			t.Fatalf("got %+v", outcome)
		}
	})
}

func TestExecuteInterrupt(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name:   "ask_user",
					Params: []string{"question"},
					Input:  schemas.New("{question: string}"),
					Output: schemas.New("string"),
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						return nil, new(signals.Interrupt)
					},
				},
			},
		})

		outcome := sandbox.Execute(context.Background(), `answer = ask_user("proceed?")`, set)
		if outcome.Kind != OutcomePaused {
			t.Fatalf("got %+v", outcome)
		}
		interrupt, ok := outcome.Signal.(*signals.Interrupt)
		if !ok {
			t.Fatalf("got %v", outcome.Signal)
		}
		if interrupt.Tool != "ask_user" {
			t.Fatalf("got %+v", interrupt)
		}
		if interrupt.Args["question"] != "proceed?" {
			t.Fatalf("got %+v", interrupt)
		}
	})
}

func TestExecuteCancelled(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		outcome := sandbox.Execute(ctx, `
while True:
	pass
`, set)
		if outcome.Kind != OutcomeFailed {
			t.Fatalf("got %+v", outcome)
		}
		if !errors.Is(outcome.Err, context.Canceled) {
			t.Fatalf("got %v", outcome.Err)
		}
	})
}

func TestExecuteControlFlow(t *testing.T) {
	testScope().Call(func(
		sandbox Sandbox,
		build bindings.Build,
	) {
		set := testSet(t, build, contexts.Options{})

		outcome := sandbox.Execute(context.Background(), `
total = 0
n = 1
while n <= 4:
	total += n
	n += 1
seen = set()
seen.add(total)
`, set)
		if outcome.Kind != OutcomeOK {
			t.Fatalf("got %+v", outcome)
		}
		if outcome.Variables["total"] != int64(10) {
			t.Fatalf("got %+v", outcome.Variables)
		}
	})
}
