package gateway

import (
	"context"
	"math"
	"time"
)

const (
	referenceAttempts = 3
	maxBackoff        = 4 * time.Second
)

func backoff(attempts int, base, ceiling time.Duration) time.Duration {
	if attempts <= 0 {
		return 0
	}
	// base * 2^(attempts-1)
	d := time.Duration(math.Pow(2, float64(attempts-1)) * float64(base))
	if d > ceiling {
		return ceiling
	}
	return d
}

// retryRead repeats an idempotent read. Writes never go through here.
func retryRead(ctx context.Context, attempts int, base time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt, base, maxBackoff)):
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if remote, ok := err.(*RemoteError); ok && remote.Status >= 400 && remote.Status < 500 {
			return nil, err
		}
	}
	return nil, lastErr
}
