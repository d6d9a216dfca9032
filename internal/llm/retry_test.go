package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        4 * time.Millisecond,
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := testRetryConfig()
	if got := cfg.Backoff(1); got != time.Millisecond {
		t.Errorf("Backoff(1) = %v", got)
	}
	if got := cfg.Backoff(2); got != 2*time.Millisecond {
		t.Errorf("Backoff(2) = %v", got)
	}
	// Capped at MaxBackoff.
	if got := cfg.Backoff(10); got != 4*time.Millisecond {
		t.Errorf("Backoff(10) = %v, want cap %v", got, 4*time.Millisecond)
	}
}

func TestDo_succeedsAfterRetry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testRetryConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_exhaustsAttempts(t *testing.T) {
	want := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), testRetryConfig(), func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Do() error = %v, want %v", err, want)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want MaxAttempts", calls)
	}
}

func TestDo_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, testRetryConfig(), func() error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}
