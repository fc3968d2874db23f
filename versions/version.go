package versions

import (
	"github.com/reusee/itera/contexts"
	"github.com/reusee/itera/signals"
)

// Program is one parsed candidate program.
type Program struct {
	Code string
	Raw  string
}

// Version adapts between the engine and a model's prompt and response
// conventions.
type Version interface {
	// SystemPrompt describes instructions, declarations and formatting rules.
	SystemPrompt(c *contexts.Context) string

	// ParseResponse extracts the candidate program from raw model output.
	// Failure is an InvalidCode signal.
	ParseResponse(text string) (*Program, error)

	StopTokens() []string

	// synthesized follow-up messages
	InvalidCodeMessage(sig *signals.InvalidCode) contexts.Message
	ThinkingMessage(sig *signals.Think) contexts.Message
	ExecutionErrorMessage(err error) contexts.Message
}
