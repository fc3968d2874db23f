package generators

import (
	"errors"
	"fmt"
)

// ErrRetryable tags transient provider failures such as rate limits.
var ErrRetryable = errors.New("retryable")

// ErrNoContent reports a response without usable text content, a hard
// failure for the iteration that issued it.
var ErrNoContent = errors.New("no content in model response")

type OpenAIError struct {
	Err     error
	Request any
}

func (o OpenAIError) Error() string {
	return fmt.Sprintf("openai: %s", o.Err)
}

func (o OpenAIError) Unwrap() error {
	return o.Err
}
