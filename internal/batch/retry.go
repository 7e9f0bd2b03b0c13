package batch

import (
	"context"
	"log/slog"
	"time"

	retry "github.com/avast/retry-go/v4"

	"github.com/taxsahaj/taxsahaj/internal/llm"
)

// RetryCompleter wraps a Completer with bounded retries and backoff. Retries
// live here, at the orchestration layer, so interactive single-document calls
// can use the raw client without them.
type RetryCompleter struct {
	inner    llm.Completer
	attempts uint
	logger   *slog.Logger
}

func NewRetryCompleter(inner llm.Completer, attempts uint, logger *slog.Logger) *RetryCompleter {
	if attempts == 0 {
		attempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryCompleter{inner: inner, attempts: attempts, logger: logger}
}

func (r *RetryCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return retry.DoWithData(
		func() (string, error) {
			return r.inner.Complete(ctx, prompt)
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("batch.completion_retry", "attempt", n+1, "error", err)
		}),
	)
}
