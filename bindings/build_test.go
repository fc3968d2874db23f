package bindings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/schemas"
	"github.com/reusee/itera/signals"
)

func testContext(t *testing.T, options contexts.Options) *contexts.Context {
	t.Helper()
	c, err := contexts.New(options)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestObjectBinding(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {

		c := testContext(t, contexts.Options{
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
				},
			},
		})

		set := build(c, BuildOptions{})
		obj := set.Objects[0]

		if _, err := obj.Get("nope"); err == nil {
			t.Fatal("should fail")
		}
		if err := obj.Set("nope", 1); err == nil {
			t.Fatal("should fail")
		}

		if err := obj.Set("unit", "things"); err == nil ||
			!strings.Contains(err.Error(), "read-only") {
			t.Fatalf("got %v", err)
		}

		if err := obj.Set("value", int64(-1)); err == nil {
			t.Fatal("should reject schema violation")
		}

		// no-op write leaves no trace
		if err := obj.Set("value", int64(1)); err != nil {
			t.Fatal(err)
		}
		if len(set.Recorder.Traces()) != 0 {
			t.Fatalf("got %+v", set.Recorder.Traces())
		}

		if err := obj.Set("value", int64(2)); err != nil {
			t.Fatal(err)
		}
		v, err := obj.Get("value")
		if err != nil {
			t.Fatal(err)
		}
		if v != int64(2) {
			t.Fatalf("got %v", v)
		}

		traces := set.Recorder.Traces()
		if len(traces) != 1 {
			t.Fatalf("got %+v", traces)
		}
		if traces[0].Kind != contexts.TracePropertyWrite {
			t.Fatalf("got %+v", traces[0])
		}
		if traces[0].Before != int64(1) || traces[0].After != int64(2) {
			t.Fatalf("got %+v", traces[0])
		}

		mutations := set.Recorder.Mutations()
		if len(mutations) != 1 {
			t.Fatalf("got %+v", mutations)
		}
		if mutations[0].Object != "counter" || mutations[0].Property != "value" {
			t.Fatalf("got %+v", mutations[0])
		}
	})
}

func TestNoopWriteSkipsValidation(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {

		// the stored value predates the schema and violates it
		c := testContext(t, contexts.Options{
			Objects: []*contexts.Object{
				{
					Name: "legacy",
					Properties: []*contexts.Property{
						{
							Name:     "count",
							Value:    "many",
							Writable: true,
							Schema:   schemas.New("int"),
						},
					},
				},
			},
		})

		set := build(c, BuildOptions{})
		obj := set.Objects[0]

		// rewriting the same value is a no-op, never a schema error
		if err := obj.Set("count", "many"); err != nil {
			t.Fatal(err)
		}
		if len(set.Recorder.Traces()) != 0 {
			t.Fatalf("got %+v", set.Recorder.Traces())
		}

		// an actual change still validates
		if err := obj.Set("count", "lots"); err == nil {
			t.Fatal("should reject schema violation")
		}
		if err := obj.Set("count", int64(3)); err != nil {
			t.Fatal(err)
		}
	})
}

func TestInstrumentedTool(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {

		var gotArgs map[string]any
		c := testContext(t, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name:    "add",
					Aliases: []string{"plus"},
					Params:  []string{"a", "b"},
					Input:   schemas.New("{a: int, b: int}"),
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						gotArgs = args
						return args["a"].(int64) + args["b"].(int64), nil
					},
				},
			},
		})

		set := build(c, BuildOptions{})
		if len(set.Tools) != 2 {
			t.Fatalf("got %+v", set.Tools)
		}
		if set.Tools[1].Name != "plus" {
			t.Fatalf("got %+v", set.Tools[1])
		}

		// string args coerced toward the input schema
		result, err := set.Tools[1].Func(context.Background(), map[string]any{
			"a": "1",
			"b": int64(2),
		})
		if err != nil {
			t.Fatal(err)
		}
		if result != int64(3) {
			t.Fatalf("got %v", result)
		}
		if gotArgs["a"] != int64(1) {
			t.Fatalf("got %+v", gotArgs)
		}

		traces := set.Recorder.Traces()
		if len(traces) != 1 {
			t.Fatalf("got %+v", traces)
		}
		// alias calls trace under the primary name
		if traces[0].Tool != "add" {
			t.Fatalf("got %+v", traces[0])
		}
		if !traces[0].OK {
			t.Fatalf("got %+v", traces[0])
		}

		journal := set.Journal()
		if len(journal) != 1 {
			t.Fatalf("got %+v", journal)
		}
		if journal[0].Result != int64(3) {
			t.Fatalf("got %+v", journal[0])
		}
	})
}

func TestToolError(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {
		boom := errors.New("boom")
		c := testContext(t, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name: "fail",
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						return nil, boom
					},
				},
			},
		})

		set := build(c, BuildOptions{})
		if _, err := set.Tools[0].Func(context.Background(), nil); !errors.Is(err, boom) {
			t.Fatalf("got %v", err)
		}

		traces := set.Recorder.Traces()
		if len(traces) != 1 {
			t.Fatalf("got %+v", traces)
		}
		if traces[0].OK || traces[0].Err != "boom" {
			t.Fatalf("got %+v", traces[0])
		}

		// failed calls never enter the journal
		if len(set.Journal()) != 0 {
			t.Fatalf("got %+v", set.Journal())
		}
	})
}

func TestInterruptAnnotation(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {
		c := testContext(t, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name:   "ask_user",
					Input:  schemas.New("{question: string}"),
					Output: schemas.New("string"),
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						return nil, &signals.Interrupt{
							Payload: "pending",
						}
					},
				},
			},
		})

		set := build(c, BuildOptions{})
		_, err := set.Tools[0].Func(context.Background(), map[string]any{
			"question": "ok?",
		})

		sig, ok := signals.From(err)
		if !ok {
			t.Fatalf("got %v", err)
		}
		interrupt, ok := sig.(*signals.Interrupt)
		if !ok {
			t.Fatalf("got %v", sig)
		}
		if interrupt.Tool != "ask_user" {
			t.Fatalf("got %+v", interrupt)
		}
		if interrupt.InputSchema != "{question: string}" {
			t.Fatalf("got %+v", interrupt)
		}
		if interrupt.OutputSchema != "string" {
			t.Fatalf("got %+v", interrupt)
		}
		if interrupt.Args["question"] != "ok?" {
			t.Fatalf("got %+v", interrupt)
		}

		traces := set.Recorder.Traces()
		if len(traces) != 1 || traces[0].Kind != contexts.TraceSignal {
			t.Fatalf("got %+v", traces)
		}
	})
}

func TestJournalReplay(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {
		calls := 0
		c := testContext(t, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name: "fetch",
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						calls++
						return "live", nil
					},
				},
			},
		})

		set := build(c, BuildOptions{
			Journal: []CallRecord{
				{Tool: "fetch", Result: "recorded"},
			},
			Resolution: &Resolution{
				Value: "resolved",
			},
		})
		fetch := set.Tools[0].Func

		// first call served from the journal, not executed
		result, err := fetch(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if result != "recorded" {
			t.Fatalf("got %v", result)
		}
		if calls != 0 {
			t.Fatalf("got %v calls", calls)
		}

		// second call consumes the resolution
		result, err = fetch(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if result != "resolved" {
			t.Fatalf("got %v", result)
		}
		if calls != 0 {
			t.Fatalf("got %v calls", calls)
		}

		// further calls run live and extend the journal
		result, err = fetch(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if result != "live" {
			t.Fatalf("got %v", result)
		}
		if calls != 1 {
			t.Fatalf("got %v calls", calls)
		}

		journal := set.Journal()
		if len(journal) != 3 {
			t.Fatalf("got %+v", journal)
		}
	})
}

func TestJournalReplayRejection(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {
		c := testContext(t, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name: "fetch",
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						return "live", nil
					},
				},
			},
		})

		rejected := errors.New("rejected by operator")
		set := build(c, BuildOptions{
			Resolution: &Resolution{
				Err: rejected,
			},
		})

		if _, err := set.Tools[0].Func(context.Background(), nil); !errors.Is(err, rejected) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestJournalReplayDiverged(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		build Build,
	) {
		c := testContext(t, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name: "other",
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						return nil, nil
					},
				},
			},
		})

		set := build(c, BuildOptions{
			Journal: []CallRecord{
				{Tool: "fetch", Result: "recorded"},
			},
		})

		_, err := set.Tools[0].Func(context.Background(), nil)
		if err == nil || !strings.Contains(err.Error(), "replay diverged") {
			t.Fatalf("got %v", err)
		}
	})
}

func TestSlowCallTrace(t *testing.T) {
	dscope.New(new(Module)).Fork(
		func() SlowCallThreshold {
			return SlowCallThreshold(10 * time.Millisecond)
		},
	).Call(func(
		build Build,
	) {
		c := testContext(t, contexts.Options{
			Tools: []*contexts.Tool{
				{
					Name: "slow",
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						time.Sleep(50 * time.Millisecond)
						return nil, nil
					},
				},
			},
		})

		set := build(c, BuildOptions{})
		if _, err := set.Tools[0].Func(context.Background(), nil); err != nil {
			t.Fatal(err)
		}

		traces := set.Recorder.Traces()
		if len(traces) != 2 {
			t.Fatalf("got %+v", traces)
		}
		if traces[0].Kind != contexts.TraceSlowTool {
			t.Fatalf("got %+v", traces[0])
		}
	})
}
