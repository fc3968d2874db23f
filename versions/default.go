package versions

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/signals"
)

// Default formats prompts for models that reply with one fenced Starlark
// code block per turn.
type Default struct{}

var _ Version = new(Default)

func (d *Default) SystemPrompt(c *contexts.Context) string {
	var b strings.Builder

	b.WriteString("You drive a task to completion by replying with one short program per turn. ")
	b.WriteString("The program runs in a Starlark sandbox with the tools, objects and variables declared below.\n")

	if c.Instructions != "" {
		b.WriteString("\n# Task\n\n")
		b.WriteString(c.Instructions)
		b.WriteString("\n")
	}

	if len(c.Tools) > 0 {
		b.WriteString("\n# Tools\n\n")
		for _, tool := range c.Tools {
			writeTool(&b, "", tool)
		}
	}

	if len(c.Objects) > 0 {
		b.WriteString("\n# Objects\n\n")
		for _, object := range c.Objects {
			fmt.Fprintf(&b, "- %s", object.Name)
			if object.Description != "" {
				fmt.Fprintf(&b, ": %s", object.Description)
			}
			b.WriteString("\n")
			for _, prop := range object.Properties {
				fmt.Fprintf(&b, "  - .%s = %s", prop.Name, formatValue(prop.Value))
				if prop.Writable {
					if src := prop.Schema.Source(); src != "" {
						fmt.Fprintf(&b, " (writable, must satisfy %s)", src)
					} else {
						b.WriteString(" (writable)")
					}
				} else {
					b.WriteString(" (read-only)")
				}
				b.WriteString("\n")
			}
			for _, tool := range object.Tools {
				writeTool(&b, object.Name+".", tool)
			}
		}
	}

	if len(c.Exits) > 0 {
		b.WriteString("\n# Exits\n\n")
		for _, exit := range c.Exits {
			fmt.Fprintf(&b, "- %q", exit.Name)
			if exit.Description != "" {
				fmt.Fprintf(&b, ": %s", exit.Description)
			}
			if src := exit.Schema.Source(); src != "" {
				fmt.Fprintf(&b, " (value must satisfy %s)", src)
			}
			b.WriteString("\n")
		}
	}

	if len(c.Variables) > 0 {
		b.WriteString("\n# Variables\n\n")
		for _, name := range slices.Sorted(maps.Keys(c.Variables)) {
			fmt.Fprintf(&b, "- %s = %s\n", name, formatValue(c.Variables[name]))
		}
	}

	b.WriteString(`
# Rules

Reply with exactly one fenced code block and nothing else:

` + "```starlark" + `
...program...
` + "```" + `

Inside a program you may also call:
- think(**variables): pause, keep the named variables, and get another turn to reconsider.
- listen(): finish successfully and wait for further input.
- exit(name, value): finish through a declared exit with a result value.
- pause(**variables): hand control back to the caller.

Keep programs short. Assign results you want to keep to top-level variables.
`)

	return b.String()
}

func writeTool(b *strings.Builder, prefix string, tool *contexts.Tool) {
	fmt.Fprintf(b, "- %s%s(%s)", prefix, tool.Name, strings.Join(tool.Params, ", "))
	if tool.Description != "" {
		fmt.Fprintf(b, ": %s", tool.Description)
	}
	b.WriteString("\n")
	if src := tool.Input.Source(); src != "" {
		fmt.Fprintf(b, "  input: %s\n", src)
	}
	if src := tool.Output.Source(); src != "" {
		fmt.Fprintf(b, "  output: %s\n", src)
	}
	for _, alias := range tool.Aliases {
		fmt.Fprintf(b, "  alias: %s%s\n", prefix, alias)
	}
}

func formatValue(v any) string {
	content, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(content)
}

func (d *Default) ParseResponse(text string) (*Program, error) {
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return nil, &signals.InvalidCode{
				Msg: "no fenced code block in response",
			}
		}
		rest = rest[start+3:]

		// language tag up to end of line
		newline := strings.IndexByte(rest, '\n')
		if newline < 0 {
			return nil, &signals.InvalidCode{
				Msg: "unterminated code fence",
			}
		}
		lang := strings.TrimSpace(rest[:newline])
		body := rest[newline+1:]

		switch lang {
		case "", "starlark", "python", "py", "star":
		default:
			// skip over a block in another language
			if end := strings.Index(body, "```"); end >= 0 {
				rest = body[end+3:]
				continue
			}
			return nil, &signals.InvalidCode{
				Msg: fmt.Sprintf("code block language %q not runnable", lang),
			}
		}

		// generation may stop right at the closing fence
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}

		code := strings.TrimSpace(body)
		if code == "" {
			return nil, &signals.InvalidCode{
				Msg: "empty code block",
			}
		}

		return &Program{
			Code: code,
			Raw:  text,
		}, nil
	}
}

func (d *Default) StopTokens() []string {
	return []string{
		"\n```\n",
	}
}

func (d *Default) InvalidCodeMessage(sig *signals.InvalidCode) contexts.Message {
	return contexts.Message{
		Role: contexts.RoleUser,
		Content: fmt.Sprintf(
			"Your reply could not be run: %s\nReply again with exactly one fenced Starlark code block.",
			sig.Error(),
		),
	}
}

func (d *Default) ThinkingMessage(sig *signals.Think) contexts.Message {
	var b strings.Builder
	b.WriteString("Noted. The variables you kept are now available to your next program.")
	if len(sig.Context) > 0 {
		b.WriteString("\nYour notes: ")
		b.WriteString(formatValue(sig.Context))
	}
	b.WriteString("\nContinue with the task.")
	return contexts.Message{
		Role:    contexts.RoleUser,
		Content: b.String(),
	}
}

func (d *Default) ExecutionErrorMessage(err error) contexts.Message {
	return contexts.Message{
		Role: contexts.RoleUser,
		Content: fmt.Sprintf(
			"The program failed: %s\nFix the problem and reply with a corrected program.",
			err,
		),
	}
}
