package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	added := s.Add("https://www.olx.uz/d/obyavlenie/lacetti-ID1.html")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("https://www.olx.uz/d/obyavlenie/lacetti-ID1.html")
	if added {
		t.Error("second Add of same URL should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
	if !s.Contains("https://www.olx.uz/d/obyavlenie/lacetti-ID1.html") {
		t.Error("Contains should report an added URL")
	}
	if s.Contains("https://www.olx.uz/d/obyavlenie/gentra-ID2.html") {
		t.Error("Contains should not report an unknown URL")
	}
}

func TestThrottleSpacing(t *testing.T) {
	interval := 50 * time.Millisecond
	th := NewThrottle(interval)
	ctx := context.Background()

	var timestamps []time.Time
	for i := 0; i < 3; i++ {
		if err := th.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		timestamps = append(timestamps, time.Now())
	}

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		// allow a little scheduler slack below the nominal interval
		if gap < interval-10*time.Millisecond {
			t.Errorf("gap between request %d and %d: %v < %v", i-1, i, gap, interval)
		}
	}
}

func TestThrottleDisabled(t *testing.T) {
	th := NewThrottle(0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("disabled throttle should not delay")
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewNopLogger()}
	calls := 0
	err := r.Do(context.Background(), "op", func() error {
		calls++
		if calls < 2 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}

func TestRetryWrapsLastError(t *testing.T) {
	sentinel := errors.New("still down")
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewNopLogger()}
	err := r.Do(context.Background(), "ping", func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}
