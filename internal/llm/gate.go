package llm

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Gate admits outbound LLM calls across all concurrent fragment pipelines so
// provider limits are respected. Calls exceeding the limit block until a
// token is available rather than failing.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate returns a gate admitting at most rpm requests per minute.
// rpm <= 0 disables limiting.
func NewGate(rpm int) *Gate {
	if rpm <= 0 {
		return &Gate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Gate{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)}
}

// Wait blocks until a request may be sent or ctx is cancelled.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// gated wraps a client with the global gate and provider rate-limit backoff.
type gated struct {
	inner   Client
	gate    *Gate
	retry   RetryConfig
	ceiling int
}

// Gated wraps inner so every Generate call first passes the gate, and
// provider rate-limit signals are absorbed by backing off and resending the
// same request. These retries do not count against any caller retry budget;
// after ceiling consecutive rate-limit responses the error escalates to the
// caller's normal failure handling.
func Gated(inner Client, gate *Gate, retry RetryConfig, ceiling int) Client {
	if ceiling <= 0 {
		ceiling = 6
	}
	return &gated{inner: inner, gate: gate, retry: retry, ceiling: ceiling}
}

func (c *gated) Generate(ctx context.Context, prompt string) (string, error) {
	for limited := 0; ; limited++ {
		if err := c.gate.Wait(ctx); err != nil {
			return "", err
		}
		out, err := c.inner.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrRateLimited) || limited >= c.ceiling {
			return "", err
		}
		if err := Sleep(ctx, c.retry.Backoff(limited+1)); err != nil {
			return "", err
		}
	}
}
