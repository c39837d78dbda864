// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// SlidingWindow allows at most limit requests per key within any window.
// Each key keeps the timestamps of its recent requests; keys idle for a
// whole window are evicted by the cache janitor.
type SlidingWindow struct {
	limit   int
	window  time.Duration
	windows *gocache.Cache
	lock    sync.Mutex
	now     func() time.Time
}

type keyWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// New creates a limiter. A non-positive limit disables limiting.
func New(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:   limit,
		window:  window,
		windows: gocache.New(window, 2*window),
		now:     time.Now,
	}
}

// Allow records a request for key if it fits in the window. When it does
// not, it returns how long until the oldest request leaves the window.
func (l *SlidingWindow) Allow(key string) (bool, time.Duration) {
	if l.limit <= 0 || l.window <= 0 {
		return true, 0
	}

	kw := l.get(key)
	now := l.now()

	kw.mu.Lock()
	defer kw.mu.Unlock()

	kw.stamps = prune(kw.stamps, now.Add(-l.window))
	if len(kw.stamps) >= l.limit {
		return false, kw.stamps[0].Add(l.window).Sub(now)
	}
	kw.stamps = append(kw.stamps, now)

	// Push the eviction deadline out to one window after the newest request
	l.windows.SetDefault(key, kw)
	return true, 0
}

// Len is the number of keys currently tracked
func (l *SlidingWindow) Len() int {
	return l.windows.ItemCount()
}

func (l *SlidingWindow) get(key string) *keyWindow {
	l.lock.Lock()
	defer l.lock.Unlock()

	if v, ok := l.windows.Get(key); ok {
		return v.(*keyWindow)
	}
	kw := &keyWindow{}
	l.windows.SetDefault(key, kw)
	return kw
}

// prune drops timestamps at or before cutoff. stamps is sorted.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0], stamps[i:]...)
}
