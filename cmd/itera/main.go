package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/itera/cmds"
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/engines"
	"github.com/reusee/itera/iteraconfigs"
	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/modes"
	"github.com/reusee/itera/sandboxes"
	"github.com/reusee/itera/snapshots"
	"golang.org/x/term"
)

var (
	runArgs         = cmds.Var[string]("run")
	resumeArgs      = cmds.Var[string]("resume")
	modelFlag       = cmds.Var[string]("-model")
	temperatureFlag = cmds.Var[float64]("-temperature")
	verboseFlag     = cmds.Switch("-v")
)

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	).Fork(
		func(maxTokens iteraconfigs.MaxContextTokens) engines.ContextTokenCap {
			return engines.ContextTokenCap(maxTokens)
		},
	)

	scope.Call(func(
		logger logs.Logger,
		defaultLoop iteraconfigs.DefaultLoop,
		run engines.Run,
		resolve engines.Resolve,
	) {

		var temperature *float32
		if *temperatureFlag != 0 {
			t := float32(*temperatureFlag)
			temperature = &t
		}

		tools := hostTools()
		objects := hostObjects()
		exits := hostExits()

		hooks := engines.Hooks{
			OnIterationEnd: func(c *contexts.Context, record *contexts.IterationRecord) {
				attrs := []any{
					"n", len(c.Iterations),
					"status", record.Status,
				}
				if record.Metrics != nil {
					attrs = append(attrs,
						"model", record.Metrics.Model,
						"input_tokens", record.Metrics.InputTokens,
						"output_tokens", record.Metrics.OutputTokens,
					)
				}
				if record.Signal != nil {
					attrs = append(attrs, "signal", record.Signal.Error())
				}
				logger.Info("iteration", attrs...)
			},
		}
		if *verboseFlag {
			hooks.OnTrace = func(trace contexts.Trace) {
				logger.Info("trace",
					"kind", trace.Kind,
					"tool", trace.Tool,
					"duration", trace.Duration,
				)
			}
		}

		resumeOptions := engines.ResumeOptions{
			Objects:     objects,
			Tools:       tools,
			Exits:       exits,
			Temperature: temperature,
			Hooks:       hooks,
		}

		var result *engines.RunResult

		if *resumeArgs != "" {
			data, err := os.ReadFile(*resumeArgs)
			ce(err)
			snapshot, err := snapshots.Decode(data)
			ce(err)
			answer := readAnswer(snapshot)
			result = resolve(ctx, snapshot, resumeOptions, answer)

		} else {
			instructions := *runArgs
			stdin := getStdinContent()
			if len(stdin) > 0 {
				instructions = strings.TrimSpace(instructions + "\n" + string(stdin))
			}
			if instructions == "" {
				pt("usage: itera run <instructions>\n")
				os.Exit(-1)
			}

			result = run(ctx, contexts.Options{
				Instructions: instructions,
				Objects:      objects,
				Tools:        tools,
				Exits:        exits,
				Loop:         int(defaultLoop),
				Temperature:  temperature,
				Model:        *modelFlag,
			}, hooks)
		}

		// resolve interrupts inline while the terminal is attached
		for result.Status == engines.StatusInterrupted && result.Snapshot != nil {
			snapshot := result.Snapshot
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				path := saveSnapshot(snapshot)
				pt("awaiting %s, snapshot saved: %s\n", snapshot.Tool, path)
				pt("resume with: itera resume %s\n", path)
				return
			}
			answer := readAnswer(snapshot)
			result = resolve(ctx, snapshot, resumeOptions, answer)
		}

		report(result)
	})

}

func report(result *engines.RunResult) {
	switch result.Status {

	case engines.StatusSuccess:
		switch action := result.Action.(type) {
		case sandboxes.Exit:
			pt("%s: %s\n", action.Name, formatValue(action.Value))
		default:
			if c := result.Context; c != nil && len(c.Transcript) > 0 {
				pt("%s\n", c.Transcript[len(c.Transcript)-1].Content)
			}
		}

	case engines.StatusError:
		os.Stderr.WriteString(result.Err.Error())
		os.Stderr.WriteString("\n")
		os.Exit(-1)
	}
}

func readAnswer(snapshot *snapshots.Snapshot) string {
	if question, ok := snapshot.Payload.(string); ok && question != "" {
		pt("%s\n", question)
	} else {
		pt("awaiting %s %s\n", snapshot.Tool, formatValue(snapshot.Args))
	}
	pt("> ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		ce(err)
	}
	return strings.TrimSpace(line)
}

func saveSnapshot(snapshot *snapshots.Snapshot) string {
	data, err := snapshot.Encode()
	ce(err)
	path := fmt.Sprintf("itera-snapshot-%s.gob", snapshot.ID)
	ce(os.WriteFile(path, data, 0644))
	return path
}

func formatValue(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

func getStdinContent() (ret []byte) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	ret, err := io.ReadAll(os.Stdin)
	ce(err)
	return
}
