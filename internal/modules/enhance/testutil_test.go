package enhance

import (
	"context"
	"sync"
	"time"
)

// fakeKV is an in-memory KV with TTL support driven by an injectable
// clock, standing in for Redis.
type fakeKV struct {
	mu    sync.Mutex
	data  map[string]fakeEntry
	now   func() time.Time
	gets  int
	sets  int
}

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

func newFakeKV(now func() time.Time) *fakeKV {
	if now == nil {
		now = time.Now
	}
	return &fakeKV{data: map[string]fakeEntry{}, now: now}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	entry, ok := f.data[key]
	if !ok {
		return "", nil
	}
	if !entry.expiresAt.IsZero() && !f.now().Before(entry.expiresAt) {
		delete(f.data, key)
		return "", nil
	}
	return entry.value, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	entry := fakeEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = f.now().Add(ttl)
	}
	f.data[key] = entry
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

// fakeClock advances manually.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
