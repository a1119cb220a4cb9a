package llm

import (
	"context"
	"errors"
	"time"

	"padhaihub-backend/internal/shared/telemetry"
)

// RetryPolicy bounds retries of rate-limited or failing provider calls.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy supplies the delays WithRetry uses when a policy leaves them
// unset. MaxRetries is always taken as given, so zero disables retries.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 2,
	BaseDelay:  500 * time.Millisecond,
	MaxDelay:   4 * time.Second,
}

type retryingClient struct {
	base   Client
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps base so that rate limiting and 5xx answers are retried with
// exponential backoff. Timeouts are returned immediately.
func WithRetry(base Client, policy RetryPolicy) Client {
	if base == nil {
		return nil
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = DefaultRetryPolicy.MaxDelay
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &retryingClient{base: base, policy: policy, sleep: sleepCtx}
}

func (r *retryingClient) Analyze(ctx context.Context, input AnalyzeInput) (string, error) {
	delay := r.policy.BaseDelay
	for attempt := 0; ; attempt++ {
		out, err := r.base.Analyze(ctx, input)
		if err == nil || attempt >= r.policy.MaxRetries || !ShouldRetry(err) {
			return out, err
		}
		telemetry.Warn("llm.retry", map[string]any{
			"attempt":  attempt + 1,
			"delay_ms": delay.Milliseconds(),
			"error":    err.Error(),
		})
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
		if delay > r.policy.MaxDelay {
			delay = r.policy.MaxDelay
		}
	}
}

// ShouldRetry reports whether err is worth another attempt: the provider rate
// limited us or failed on its side.
func ShouldRetry(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.RateLimited() || statusErr.StatusCode >= 500
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
