package utils

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces outgoing requests to the source site. The pipeline is
// sequential, so a single limiter with burst 1 is enough.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows one request per interval. A non-positive interval
// disables throttling.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may be sent or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// URLSet tracks detail URLs already handled within one run.
type URLSet struct {
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains reports whether the URL has been added.
func (s *URLSet) Contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	return len(s.seen)
}
