package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const (
	memoryShards = 32

	// defaultSweepEvery bounds how often a shard scans for dead windows.
	// Windows for distinct client identifiers would otherwise accumulate
	// without bound.
	defaultSweepEvery = 5 * time.Minute
)

type window struct {
	count     int64
	startedAt time.Time
	length    time.Duration
}

func (w *window) resetAt() time.Time { return w.startedAt.Add(w.length) }

func (w *window) elapsed(now time.Time) bool { return now.Sub(w.startedAt) >= w.length }

type memoryShard struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// MemoryStore is a sharded in-process window store. Keys hash to shards so
// concurrent logins do not serialize on one lock.
type MemoryStore struct {
	shards     [memoryShards]*memoryShard
	sweepEvery time.Duration

	// now is injectable for tests.
	now func() time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sweepEvery: defaultSweepEvery,
		now:        time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &memoryShard{windows: make(map[string]*window)}
	}
	return s
}

// WithClock overrides the store's time source. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryShards]
}

func (s *MemoryStore) Incr(_ context.Context, key string, length time.Duration) (int64, time.Time, error) {
	now := s.now()
	sh := s.shard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.windows[key]
	if !ok || w.elapsed(now) {
		w = &window{count: 1, startedAt: now, length: length}
		sh.windows[key] = w
	} else {
		w.count++
	}

	count, resetAt := w.count, w.resetAt()
	sh.maybeSweep(now, s.sweepEvery)

	return count, resetAt, nil
}

func (s *MemoryStore) Peek(_ context.Context, key string) (int64, time.Time, bool, error) {
	now := s.now()
	sh := s.shard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.windows[key]
	if !ok || w.elapsed(now) {
		return 0, time.Time{}, false, nil
	}
	return w.count, w.resetAt(), true, nil
}

// Sweep drops every elapsed window immediately. The housekeeping service
// calls this on its ticker; Incr also sweeps opportunistically.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, w := range sh.windows {
			if w.elapsed(now) {
				delete(sh.windows, key)
				removed++
			}
		}
		sh.lastSweep = now
		sh.mu.Unlock()
	}
	return removed
}

// maybeSweep removes elapsed windows from one shard. Caller holds the shard
// lock.
func (sh *memoryShard) maybeSweep(now time.Time, every time.Duration) {
	if now.Sub(sh.lastSweep) < every {
		return
	}
	sh.lastSweep = now

	for key, w := range sh.windows {
		if w.elapsed(now) {
			delete(sh.windows, key)
		}
	}
}
