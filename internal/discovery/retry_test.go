package discovery

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryStopsAfterSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetryReturnsLastError(t *testing.T) {
	sentinel := errors.New("still down")
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the final attempt's error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("maxRetries 2 means 3 attempts, got %d", calls)
	}
}

func TestWithRetryQuitsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, 5, time.Minute, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("a dead context must stop the backoff wait, got %d attempts", calls)
	}
}
