// Package llm provides the LLM client used for translation and spec
// extraction, with retry, rate limiting, and response cleanup helpers.
package llm

import (
	"context"
	"errors"
)

// ErrRateLimited indicates the provider rejected a request for exceeding its
// rate limits. It is not a failure: callers back off and retry without
// consuming their error-retry budget.
var ErrRateLimited = errors.New("llm: rate limited")

// ErrEmptyResponse indicates the provider returned no usable text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client sends a prompt to a language model and returns the response text.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
