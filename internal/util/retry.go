package util

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryBackoff собирает стратегию повторов из базовой и ограничений.
// Нулевые значения ограничений не применяются.
func RetryBackoff(b retry.Backoff, maxRetries uint64, jitter, cappedDuration, maxDuration time.Duration) retry.Backoff {
	backoff := b

	if maxRetries > 0 {
		backoff = retry.WithMaxRetries(maxRetries, backoff)
	}

	if jitter > 0 {
		backoff = retry.WithJitter(jitter, backoff)
	}

	if cappedDuration > 0 {
		backoff = retry.WithCappedDuration(cappedDuration, backoff)
	}

	if maxDuration > 0 {
		backoff = retry.WithMaxDuration(maxDuration, backoff)
	}

	return backoff
}

// Retry выполняет fn с фибоначчиевой задержкой от base (разброс ±base/2, потолок 10*base),
// не более maxRetries повторов. Любая ошибка fn считается временной.
func Retry(ctx context.Context, maxRetries uint64, base time.Duration, fn func(ctx context.Context) error) error {
	backoff := RetryBackoff(retry.NewFibonacci(base), maxRetries, base/2, 10*base, 0)
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
