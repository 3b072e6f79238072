package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type scriptedSummarizer struct {
	calls   atomic.Int64
	results []error
	output  string
}

func (s *scriptedSummarizer) Summarize(ctx context.Context, text, instruction string) (string, error) {
	n := s.calls.Add(1)
	idx := int(n) - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	if err := s.results[idx]; err != nil {
		return "", err
	}
	return s.output, nil
}

func TestRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	transient := &ProviderError{Status: 429, Message: "rate limited", Retriable: true}
	inner := &scriptedSummarizer{results: []error{transient}}

	maxRetries := 3
	s := NewRetrying(inner, maxRetries, time.Millisecond, 2*time.Millisecond)

	_, err := s.Summarize(context.Background(), "text", "instruction")
	if err == nil {
		t.Fatal("expected terminal error after exhausted retries")
	}

	if got := inner.calls.Load(); got != int64(maxRetries+1) {
		t.Fatalf("expected exactly %d attempts, got %d", maxRetries+1, got)
	}
}

func TestRetryStopsOnTerminalError(t *testing.T) {
	t.Parallel()

	terminal := &ProviderError{Status: 400, Message: "bad request", Retriable: false}
	inner := &scriptedSummarizer{results: []error{terminal}}

	s := NewRetrying(inner, 3, time.Millisecond, 2*time.Millisecond)

	_, err := s.Summarize(context.Background(), "text", "instruction")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("terminal error must not be retried, got %d attempts", got)
	}
}

func TestRetryRecoversAfterTransientError(t *testing.T) {
	t.Parallel()

	transient := &ProviderError{Status: 503, Message: "overloaded", Retriable: true}
	inner := &scriptedSummarizer{results: []error{transient, nil}, output: "a summary"}

	s := NewRetrying(inner, 3, time.Millisecond, 2*time.Millisecond)

	got, err := s.Summarize(context.Background(), "text", "instruction")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if got != "a summary" {
		t.Fatalf("unexpected summary: %q", got)
	}
	if calls := inner.calls.Load(); calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestIsRetriable(t *testing.T) {
	t.Parallel()

	if !IsRetriable(&ProviderError{Status: 429, Retriable: true}) {
		t.Fatal("rate limit must be retriable")
	}
	if IsRetriable(&ProviderError{Status: 400}) {
		t.Fatal("client error must not be retriable")
	}
	if IsRetriable(errors.New("plain error")) {
		t.Fatal("unknown errors must not be retriable")
	}
}
