package engines

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/itera/bindings"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/generators"
	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/sandboxes"
	"github.com/reusee/itera/signals"
	"github.com/reusee/itera/snapshots"
	"github.com/reusee/itera/truncates"
	"github.com/reusee/itera/vars"
	"github.com/reusee/itera/versions"
)

type engine struct {
	client   generators.Client
	build    bindings.Build
	sandbox  sandboxes.Sandbox
	estimate truncates.Estimate
	version  versions.Version
	logger   logs.Logger
	tokenCap int
	hooks    Hooks
}

// ContextTokenCap bounds the token budget below the model's own context
// window. Overridden by the config layer.
type ContextTokenCap int

func (Module) ContextTokenCap() ContextTokenCap {
	return math.MaxInt
}

type NewEngine func(client generators.Client, hooks Hooks) *engine

func (Module) NewEngine(
	build bindings.Build,
	sandbox sandboxes.Sandbox,
	estimate truncates.Estimate,
	version versions.Version,
	logger logs.Logger,
	tokenCap ContextTokenCap,
) NewEngine {
	return func(client generators.Client, hooks Hooks) *engine {
		return &engine{
			client:   client,
			build:    build,
			sandbox:  sandbox,
			estimate: estimate,
			version:  version,
			logger:   logger,
			tokenCap: int(tokenCap),
			hooks:    hooks,
		}
	}
}

// resumption makes the first cycle execute a snapshotted program directly
// instead of invoking the model.
type resumption struct {
	program string
	build   bindings.BuildOptions
}

type verdictKind uint8

const (
	verdictContinue verdictKind = iota + 1
	verdictSuccess
	verdictInterrupted
	verdictFatal
)

type verdict struct {
	kind     verdictKind
	action   sandboxes.Action
	signal   signals.Signal
	snapshot *snapshots.Snapshot
	err      error
}

func (e *engine) run(ctx context.Context, c *contexts.Context, resume *resumption) *RunResult {
	result := &RunResult{
		Context: c,
	}

	for {
		if err := ctx.Err(); err != nil {
			return e.finish(result, StatusError, wrap(err))
		}

		// the counter stays within the budget: the budget-th cycle is the
		// loop-exceeded failure itself
		c.Iteration++
		if c.Iteration >= c.Loop {
			sig := &signals.LoopExceeded{
				Limit: c.Loop,
			}
			now := time.Now()
			record := &contexts.IterationRecord{
				ID:        uuid.NewString(),
				Status:    contexts.IterationError,
				Signal:    sig,
				Err:       sig,
				StartedAt: now,
				EndedAt:   now,
			}
			c.Iterations = append(c.Iterations, record)
			if e.hooks.OnIterationEnd != nil {
				e.hooks.OnIterationEnd(c, record)
			}
			result.Signal = sig
			return e.finish(result, StatusError, wrap(sig))
		}

		if e.hooks.OnIterationStart != nil {
			e.hooks.OnIterationStart(c, c.Iteration)
		}

		record, v := e.iterate(ctx, c, resume)
		resume = nil
		c.Iterations = append(c.Iterations, record)
		if e.hooks.OnIterationEnd != nil {
			e.hooks.OnIterationEnd(c, record)
		}

		switch v.kind {

		case verdictContinue:

		case verdictSuccess:
			result.Action = v.action
			result.Signal = v.signal
			return e.finish(result, StatusSuccess, nil)

		case verdictInterrupted:
			result.Snapshot = v.snapshot
			result.Signal = v.signal
			return e.finish(result, StatusInterrupted, nil)

		case verdictFatal:
			result.Signal = v.signal
			return e.finish(result, StatusError, v.err)
		}
	}
}

func (e *engine) finish(result *RunResult, status Status, err error) *RunResult {
	result.Status = status
	result.Err = err
	result.Iterations = result.Context.Iterations
	return result
}

func (e *engine) iterate(ctx context.Context, c *contexts.Context, resume *resumption) (*contexts.IterationRecord, verdict) {
	record := &contexts.IterationRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	var traces []contexts.Trace
	emit := func(trace contexts.Trace) {
		if trace.Time.IsZero() {
			trace.Time = time.Now()
		}
		traces = append(traces, trace)
		if e.hooks.OnTrace != nil {
			e.hooks.OnTrace(trace)
		}
	}
	finishRecord := func() {
		record.EndedAt = time.Now()
	}

	var program *versions.Program
	var raw string
	buildOptions := bindings.BuildOptions{
		OnTrace: e.hooks.OnTrace,
	}

	if resume != nil {
		program = &versions.Program{
			Code: resume.program,
			Raw:  resume.program,
		}
		buildOptions = resume.build
		buildOptions.OnTrace = e.hooks.OnTrace

	} else {
		systemPrompt := e.version.SystemPrompt(c)
		tmsgs := truncates.FromMessages(c.EffectiveMessages(systemPrompt))

		input := 0
		for _, msg := range tmsgs {
			for _, block := range msg.Blocks {
				input += e.estimate(block.Text)
			}
		}
		reserve := input / 10
		if reserve < 1000 {
			reserve = 1000
		}
		if reserve > 16000 {
			reserve = 16000
		}
		tmsgs, _ = truncates.Truncate(e.estimate, tmsgs, min(e.client.ContextTokens(), e.tokenCap)-reserve, false)
		msgs := truncates.ToMessages(tmsgs)

		var systemText string
		chat := make([]contexts.Message, 0, len(msgs))
		for _, msg := range msgs {
			if msg.Role == contexts.RoleSystem && systemText == "" {
				systemText = msg.Content
				continue
			}
			chat = append(chat, msg)
		}

		t0 := time.Now()
		resp, err := e.client.Generate(ctx, &generators.Request{
			SystemPrompt:  systemText,
			Messages:      chat,
			Model:         c.Model,
			Temperature:   c.Temperature,
			StopSequences: e.version.StopTokens(),
		})
		if err != nil {
			record.Status = contexts.IterationError
			record.Err = err
			record.Traces = traces
			finishRecord()
			return record, verdict{
				kind: verdictFatal,
				err:  wrap(err),
			}
		}
		latency := time.Since(t0)

		record.Metrics = &contexts.ModelMetrics{
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
			InputCost:    resp.InputCost,
			OutputCost:   resp.OutputCost,
			Cached:       resp.Cached,
			Provider:     resp.Provider,
			Model:        resp.Model,
			Latency:      latency,
		}
		emit(contexts.Trace{
			Kind:         contexts.TraceModelCall,
			Model:        resp.Model,
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
			Duration:     latency,
		})
		e.logger.InfoContext(ctx, "model call",
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
			"duration", latency,
		)

		raw = resp.Text
		program, err = e.version.ParseResponse(resp.Text)
		if err != nil {
			sig, _ := signals.From(err)
			invalid, ok := sig.(*signals.InvalidCode)
			if !ok {
				invalid = &signals.InvalidCode{
					Err: err,
				}
			}
			emit(contexts.Trace{
				Kind:   contexts.TraceSignal,
				Signal: invalid.Error(),
			})
			record.Status = contexts.IterationError
			record.Signal = invalid
			record.Err = invalid
			record.Traces = traces
			finishRecord()
			c.AppendPartials(
				contexts.Message{
					Role:    contexts.RoleAssistant,
					Content: resp.Text,
				},
				e.version.InvalidCodeMessage(invalid),
			)
			return record, verdict{
				kind: verdictContinue,
			}
		}
	}
	record.Program = program.Code

	set := e.build(c, buildOptions)

	// last abort check before side effects
	if err := ctx.Err(); err != nil {
		emit(contexts.Trace{
			Kind:   contexts.TraceSignal,
			Signal: "aborted",
		})
		record.Status = contexts.IterationError
		record.Err = err
		record.Traces = traces
		finishRecord()
		return record, verdict{
			kind: verdictFatal,
			err:  wrap(err),
		}
	}

	t0 := time.Now()
	outcome := e.sandbox.Execute(ctx, program.Code, set)
	execTrace := contexts.Trace{
		Kind:     contexts.TraceExecution,
		Time:     time.Now(),
		Duration: time.Since(t0),
		Lines:    outcome.Lines,
		Steps:    outcome.Steps,
	}
	if e.hooks.OnTrace != nil {
		e.hooks.OnTrace(execTrace)
	}

	record.Variables = outcome.Variables
	record.Mutations = set.Recorder.Mutations()
	record.Traces = append(append(traces, set.Recorder.Traces()...), execTrace)

	assistantText := vars.FirstNonZero(raw, program.Code)

	switch outcome.Kind {

	case sandboxes.OutcomeOK:
		c.FoldVariables(outcome.Variables)
		c.ClearPartials()
		c.Iteration = 0
		c.Transcript = append(c.Transcript, contexts.Message{
			Role:    contexts.RoleAssistant,
			Content: assistantText,
		})
		record.Status = contexts.IterationSuccess
		finishRecord()
		return record, verdict{
			kind:   verdictSuccess,
			action: outcome.Action,
		}

	case sandboxes.OutcomePaused:
		switch sig := outcome.Signal.(type) {

		case *signals.Think:
			c.FoldVariables(outcome.Variables, sig.Variables, sig.Context)
			record.Status = contexts.IterationPartial
			record.Signal = sig
			finishRecord()
			c.AppendPartials(
				contexts.Message{
					Role:    contexts.RoleAssistant,
					Content: assistantText,
				},
				e.version.ThinkingMessage(sig),
			)
			return record, verdict{
				kind: verdictContinue,
			}

		case *signals.ExecutePause:
			c.FoldVariables(outcome.Variables, sig.Variables)
			record.Status = contexts.IterationSuccess
			record.Signal = sig
			finishRecord()
			return record, verdict{
				kind:   verdictSuccess,
				signal: sig,
			}

		case *signals.Interrupt:
			c.FoldVariables(outcome.Variables)
			c.ClearPartials()
			c.Iteration = 0
			record.Status = contexts.IterationSuccess
			record.Signal = sig
			finishRecord()
			return record, verdict{
				kind:     verdictInterrupted,
				signal:   sig,
				snapshot: snapshots.New(sig, program.Code, set.Journal(), c),
			}
		}

		record.Status = contexts.IterationError
		record.Signal = outcome.Signal
		record.Err = outcome.Signal
		finishRecord()
		return record, verdict{
			kind:   verdictFatal,
			signal: outcome.Signal,
			err:    wrap(outcome.Signal),
		}

	default: // OutcomeFailed
		err := outcome.Err
		record.Status = contexts.IterationError
		record.Err = err

		if ctx.Err() != nil {
			finishRecord()
			return record, verdict{
				kind: verdictFatal,
				err:  wrap(err),
			}
		}

		sig, _ := signals.From(err)
		record.Signal = sig
		finishRecord()

		switch sig := sig.(type) {

		case *signals.InvalidCode:
			c.AppendPartials(
				contexts.Message{
					Role:    contexts.RoleAssistant,
					Content: assistantText,
				},
				e.version.InvalidCodeMessage(sig),
			)
			return record, verdict{
				kind: verdictContinue,
			}

		case *signals.ExecutionError:
			c.AppendPartials(
				contexts.Message{
					Role:    contexts.RoleAssistant,
					Content: assistantText,
				},
				e.version.ExecutionErrorMessage(sig.Err),
			)
			return record, verdict{
				kind: verdictContinue,
			}
		}

		return record, verdict{
			kind: verdictFatal,
			err:  wrap(err),
		}
	}
}
