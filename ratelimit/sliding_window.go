// Package ratelimit admits or rejects write requests per client key with a
// sliding-window log.
package ratelimit

import (
	"chat-core/contract"
	"chat-core/observability"
	"log/slog"
	"slices"
	"sync"
	"time"
)

var _ contract.RateLimiter = (*SlidingWindow)(nil)

type bucket struct {
	mu    sync.Mutex
	times []time.Time
	dead  bool
}

// SlidingWindow admits at most limit requests per key in any window ending
// at the decision time. Rejected requests are not recorded, so a client
// hammering the endpoint does not extend its own penalty.
type SlidingWindow struct {
	log     *slog.Logger
	metrics *observability.Metrics
	limit   int
	window  time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewSlidingWindow(log *slog.Logger, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		log:     log,
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

func (s *SlidingWindow) WithMetrics(m *observability.Metrics) *SlidingWindow {
	s.metrics = m
	return s
}

// TryAdmit evicts the timestamps older than now-window, then admits the
// request iff fewer than limit remain. Different keys never contend on the
// same bucket lock.
func (s *SlidingWindow) TryAdmit(key string, now time.Time) bool {
	for {
		b := s.bucketFor(key)
		b.mu.Lock()
		if b.dead {
			// Swept between lookup and lock, take the fresh bucket
			b.mu.Unlock()
			continue
		}
		b.evict(now.Add(-s.window))
		admitted := len(b.times) < s.limit
		if admitted {
			b.record(now)
		}
		b.mu.Unlock()

		s.metrics.Admission(admitted)
		if !admitted {
			s.log.Debug("request rejected by rate limiter", "key", key)
		}
		return admitted
	}
}

func (s *SlidingWindow) bucketFor(key string) *bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{}
		s.buckets[key] = b
	}
	return b
}

// record inserts t keeping times sorted: callers read the clock before
// taking the bucket lock, so admissions may arrive out of order.
func (b *bucket) record(t time.Time) {
	i, _ := slices.BinarySearchFunc(b.times, t, func(a, t time.Time) int { return a.Compare(t) })
	for i < len(b.times) && b.times[i].Equal(t) {
		i++
	}
	b.times = slices.Insert(b.times, i, t)
}

// evict drops every admission strictly older than cutoff. times is sorted.
// An admission exactly window old still counts.
func (b *bucket) evict(cutoff time.Time) {
	i := 0
	for i < len(b.times) && b.times[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.times = append(b.times[:0], b.times[i:]...)
	}
}

// Sweep removes the buckets holding no admission inside the window ending at
// now and returns how many were removed.
func (s *SlidingWindow) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, b := range s.buckets {
		b.mu.Lock()
		b.evict(now.Add(-s.window))
		if len(b.times) == 0 {
			b.dead = true
			delete(s.buckets, key)
			removed++
		}
		b.mu.Unlock()
	}
	return removed
}

// Len reports how many keys are currently tracked.
func (s *SlidingWindow) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
