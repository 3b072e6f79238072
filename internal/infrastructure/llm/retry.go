package llm

import (
	"context"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"DailyDigest/internal/ports"
)

// RetryingSummarizer wraps any Summarizer with exponential backoff on
// retriable provider errors. A call runs at most maxRetries+1 times.
type RetryingSummarizer struct {
	inner ports.Summarizer
	exec  failsafe.Executor[string]
}

var _ ports.Summarizer = (*RetryingSummarizer)(nil)

// NewRetrying builds the retry wrapper. baseDelay and maxDelay bound the
// backoff; maxRetries below zero is treated as zero.
func NewRetrying(inner ports.Summarizer, maxRetries int, baseDelay, maxDelay time.Duration) *RetryingSummarizer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}

	policy := retrypolicy.NewBuilder[string]().
		WithBackoff(baseDelay, maxDelay).
		WithMaxRetries(maxRetries).
		HandleIf(func(_ string, err error) bool {
			return IsRetriable(err)
		}).
		Build()

	return &RetryingSummarizer{
		inner: inner,
		exec:  failsafe.With(policy),
	}
}

// Summarize delegates to the wrapped summarizer under the retry policy.
func (s *RetryingSummarizer) Summarize(ctx context.Context, text, instruction string) (string, error) {
	return s.exec.WithContext(ctx).Get(func() (string, error) {
		return s.inner.Summarize(ctx, text, instruction)
	})
}
