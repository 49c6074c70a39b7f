package protection

import (
	"context"
	"math"
	"sync"
	"time"
)

type bucketState struct {
	tokens float64
	last   time.Time
}

type windowState struct {
	start time.Time
	count int
}

// MemoryStore keeps limiter state in process. Suitable for a single
// gateway instance and for tests.
type MemoryStore struct {
	mu       sync.Mutex
	buckets  map[string]*bucketState
	fixed    map[string]*windowState
	sliding  map[string][]time.Time
	maxAge   time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a store and starts a janitor that drops state
// idle for longer than maxAge. A zero maxAge disables the janitor.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*bucketState),
		fixed:   make(map[string]*windowState),
		sliding: make(map[string][]time.Time),
		maxAge:  maxAge,
		stop:    make(chan struct{}),
	}
	if maxAge > 0 {
		go s.janitor()
	}
	return s
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(s.maxAge)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Sweep drops state idle since before now-maxAge
func (s *MemoryStore) Sweep(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range s.buckets {
		if b.last.Before(cutoff) {
			delete(s.buckets, k)
		}
	}
	for k, w := range s.fixed {
		if w.start.Before(cutoff) {
			delete(s.fixed, k)
		}
	}
	for k, hits := range s.sliding {
		if len(hits) == 0 || hits[len(hits)-1].Before(cutoff) {
			delete(s.sliding, k)
		}
	}
}

// Close stops the janitor
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) TakeTokens(_ context.Context, key string, capacity, refill int, interval time.Duration, requested int, now time.Time) (LimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucketState{tokens: float64(capacity), last: now}
		s.buckets[key] = b
	}
	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = math.Min(float64(capacity), b.tokens+float64(refill)*elapsed.Seconds()/interval.Seconds())
		b.last = now
	}
	if b.tokens >= float64(requested) {
		b.tokens -= float64(requested)
		return LimitResult{Allowed: true, Remaining: int(b.tokens)}, nil
	}
	missing := float64(requested) - b.tokens
	wait := time.Duration(math.Ceil(missing / float64(refill) * float64(interval)))
	return LimitResult{Remaining: int(b.tokens), RetryAfter: wait}, nil
}

func (s *MemoryStore) CountFixed(_ context.Context, key string, max int, window time.Duration, requested int, now time.Time) (LimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.fixed[key]
	if !ok || now.Sub(w.start) >= window {
		w = &windowState{start: now}
		s.fixed[key] = w
	}
	reset := w.start.Add(window).Sub(now)
	if w.count+requested > max {
		return LimitResult{Remaining: max - w.count, RetryAfter: reset}, nil
	}
	w.count += requested
	return LimitResult{Allowed: true, Remaining: max - w.count}, nil
}

func (s *MemoryStore) CountSliding(_ context.Context, key string, max int, window time.Duration, requested int, now time.Time) (LimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	hits := s.sliding[key]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]

	if len(hits)+requested > max {
		s.sliding[key] = hits
		var wait time.Duration
		if len(hits) > 0 {
			wait = hits[0].Add(window).Sub(now)
		}
		return LimitResult{Remaining: max - len(hits), RetryAfter: wait}, nil
	}
	for n := 0; n < requested; n++ {
		hits = append(hits, now)
	}
	s.sliding[key] = hits
	return LimitResult{Allowed: true, Remaining: max - len(hits)}, nil
}

var _ LimitStore = (*MemoryStore)(nil)
