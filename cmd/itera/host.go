package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/schemas"
	"github.com/reusee/itera/signals"
)

func hostTools() []*contexts.Tool {
	return []*contexts.Tool{

		{
			Name:        "shell",
			Description: "run a shell command on the host and return its combined output",
			Params:      []string{"command"},
			Input:       schemas.New("{command: string}"),
			Output:      schemas.New("{output: string, exit_code: int}"),
			Func: func(ctx context.Context, args map[string]any) (any, error) {
				command, _ := args["command"].(string)
				output, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
				exitCode := 0
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					exitCode = exitErr.ExitCode()
				} else if err != nil {
					return nil, err
				}
				return map[string]any{
					"output":    string(output),
					"exit_code": exitCode,
				}, nil
			},
		},

		{
			Name:        "read_file",
			Description: "read a file from the host filesystem",
			Params:      []string{"path"},
			Input:       schemas.New("{path: string}"),
			Output:      schemas.New("string"),
			Func: func(ctx context.Context, args map[string]any) (any, error) {
				path, _ := args["path"].(string)
				content, err := os.ReadFile(path)
				if err != nil {
					return nil, err
				}
				return string(content), nil
			},
		},

		{
			Name:        "ask_user",
			Description: "ask the user a question; the answer arrives when the user responds",
			Params:      []string{"question"},
			Input:       schemas.New("{question: string}"),
			Output:      schemas.New("string"),
			Func: func(ctx context.Context, args map[string]any) (any, error) {
				return nil, &signals.Interrupt{
					Payload: args["question"],
				}
			},
		},
	}
}

func hostObjects() []*contexts.Object {
	return []*contexts.Object{

		{
			Name:        "clock",
			Description: "the host clock",
			Properties: []*contexts.Property{
				{
					Name:  "timezone",
					Value: time.Local.String(),
				},
			},
			Tools: []*contexts.Tool{
				{
					Name:        "now",
					Description: "current time in RFC 3339 form",
					Output:      schemas.New("string"),
					Func: func(ctx context.Context, args map[string]any) (any, error) {
						return time.Now().Format(time.RFC3339), nil
					},
				},
			},
		},

		{
			Name:        "scratchpad",
			Description: "a note slot that persists across iterations",
			Properties: []*contexts.Property{
				{
					Name:     "note",
					Value:    "",
					Writable: true,
					Schema:   schemas.New("string"),
				},
			},
		},
	}
}

func hostExits() []*contexts.Exit {
	return []*contexts.Exit{
		{
			Name:        "done",
			Description: "finish the task, reporting the final result",
			Schema:      schemas.New("string"),
		},
	}
}
