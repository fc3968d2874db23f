package generators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reusee/itera/logs"
	"github.com/reusee/itera/nets"
	"github.com/reusee/itera/vars"
)

type OpenAI struct {
	args   ClientArgs
	apiKey string
	client nets.HTTPClient
	count  BPETokenCounter
	logger logs.Logger
}

var _ Client = new(OpenAI)

type NewOpenAI func(args ClientArgs, apiKey string) Client

func (Module) NewOpenAI(
	httpClient nets.HTTPClient,
	count BPETokenCounter,
	logger logs.Logger,
) NewOpenAI {
	return func(args ClientArgs, apiKey string) Client {
		return &OpenAI{
			args:   args,
			apiKey: apiKey,
			client: httpClient,
			count:  count,
			logger: logger,
		}
	}
}

func (o *OpenAI) Args() ClientArgs {
	return o.args
}

func (o *OpenAI) ContextTokens() int {
	if o.args.ContextTokens > 0 {
		return o.args.ContextTokens
	}
	return 128 * K
}

func (o *OpenAI) CountTokens(text string) (int, error) {
	return o.count(text)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         *float32      `json:"temperature,omitempty"`
	Stop                []string      `json:"stop,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens        int `json:"prompt_tokens"`
		CompletionTokens    int `json:"completion_tokens"`
		PromptTokensDetails *struct {
			CachedTokens int `json:"cached_tokens"`
		} `json:"prompt_tokens_details"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (o *OpenAI) Generate(ctx context.Context, req *Request) (*Response, error) {
	model := vars.FirstNonZero(req.Model, o.args.Model)

	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	temperature := o.args.Temperature
	if req.Temperature != nil {
		temperature = req.Temperature
	}

	body := chatCompletionRequest{
		Model:               model,
		Messages:            messages,
		MaxCompletionTokens: vars.DerefOrZero(o.args.MaxGenerateTokens),
		Temperature:         temperature,
		Stop:                req.StopSequences,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, wrap(err)
	}

	o.logger.InfoContext(ctx, "generating",
		"model", model,
	)
	t0 := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.args.BaseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, wrap(err)
	}
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, OpenAIError{
			Err:     err,
			Request: body,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		content, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		err := fmt.Errorf("bad status: %d, body: %s", resp.StatusCode, content)
		if json.Unmarshal(content, &errResp) == nil && errResp.Error.Message != "" {
			err = fmt.Errorf("bad status: %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= 500 {
			return nil, errors.Join(err, ErrRetryable)
		}
		return nil, OpenAIError{
			Err:     err,
			Request: body,
		}
	}

	var chatResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 ||
		chatResp.Choices[0].Message.Content == "" {
		return nil, ErrNoContent
	}

	usage := chatResp.Usage
	cached := usage.PromptTokensDetails != nil &&
		usage.PromptTokensDetails.CachedTokens > 0

	o.logger.InfoContext(ctx, "generated",
		"model", model,
		"input tokens", usage.PromptTokens,
		"output tokens", usage.CompletionTokens,
		"duration", time.Since(t0),
	)

	return &Response{
		Text:         chatResp.Choices[0].Message.Content,
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
		InputCost:    float64(usage.PromptTokens) * o.args.InputCostPerM / 1e6,
		OutputCost:   float64(usage.CompletionTokens) * o.args.OutputCostPerM / 1e6,
		Cached:       cached,
		Provider:     "openai",
		Model:        vars.FirstNonZero(chatResp.Model, model),
	}, nil
}
