package generators

import (
	"context"

	"github.com/reusee/itera/contexts"
)

const K = 1024

// Request is one model invocation. Messages carry user and assistant turns
// only; the system prompt travels separately.
type Request struct {
	SystemPrompt  string
	Messages      []contexts.Message
	Model         string
	Temperature   *float32
	StopSequences []string
}

type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
	InputCost    float64
	OutputCost   float64
	Cached       bool
	Provider     string
	Model        string
}

// Client must be safe for concurrent use; independent runs share one client.
type Client interface {
	Args() ClientArgs
	ContextTokens() int
	CountTokens(text string) (int, error)
	Generate(ctx context.Context, req *Request) (*Response, error)
}

type ClientArgs struct {
	BaseURL           string   `json:"base_url"`
	Model             string   `json:"model"`
	ContextTokens     int      `json:"context_tokens"`
	MaxGenerateTokens *int     `json:"max_generate_tokens"`
	Temperature       *float32 `json:"temperature"`
	InputCostPerM     float64  `json:"input_cost_per_m"`
	OutputCostPerM    float64  `json:"output_cost_per_m"`
}
