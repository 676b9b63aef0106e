// Package cache holds processed schedule snapshots with a TTL, collapsing
// concurrent refreshes of the same source into a single load.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/schedule-board/internal/schedule"
)

// Snapshot is one processed schedule together with its provenance.
type Snapshot struct {
	Jobs      schedule.Schedule `json:"jobs"`
	Warnings  []string          `json:"warnings"`
	FetchedAt time.Time         `json:"fetched_at"`
	FromCache bool              `json:"from_cache"`
}

// LoadFunc produces a fresh snapshot for a source key.
type LoadFunc func(ctx context.Context) (schedule.Schedule, []string, error)

// Loader caches snapshots per source key. A zero TTL disables caching and
// every Get performs a load.
type Loader struct {
	ttl   time.Duration
	clock func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*Snapshot
}

// NewLoader builds a loader with the given TTL.
func NewLoader(ttl time.Duration) *Loader {
	return &Loader{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]*Snapshot),
	}
}

// WithClock replaces the loader's clock, for tests.
func (l *Loader) WithClock(clock func() time.Time) *Loader {
	l.clock = clock
	return l
}

// Get returns the cached snapshot for key if it is still fresh, otherwise
// loads a new one. Concurrent callers missing on the same key share a single
// load. The FromCache flag on the returned snapshot reports which path was
// taken.
func (l *Loader) Get(ctx context.Context, key string, load LoadFunc) (*Snapshot, error) {
	if snap := l.fresh(key); snap != nil {
		return snap, nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have finished the load while this one
		// waited on the flight group.
		if snap := l.fresh(key); snap != nil {
			return snap, nil
		}

		jobs, warnings, err := load(ctx)
		if err != nil {
			return nil, err
		}
		snap := &Snapshot{
			Jobs:      jobs,
			Warnings:  warnings,
			FetchedAt: l.clock(),
		}
		l.mu.Lock()
		l.entries[key] = snap
		l.mu.Unlock()

		fresh := *snap
		return &fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate drops the cached snapshot for key.
func (l *Loader) Invalidate(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

// fresh returns a copy of the cached snapshot for key when it has not
// expired, with FromCache set.
func (l *Loader) fresh(key string) *Snapshot {
	if l.ttl <= 0 {
		return nil
	}
	l.mu.RLock()
	snap, ok := l.entries[key]
	l.mu.RUnlock()
	if !ok || l.clock().Sub(snap.FetchedAt) >= l.ttl {
		return nil
	}
	cached := *snap
	cached.FromCache = true
	return &cached
}
