package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/schedule-board/internal/schedule"
)

func staticLoad(jobs schedule.Schedule, warnings []string) LoadFunc {
	return func(context.Context) (schedule.Schedule, []string, error) {
		return jobs, warnings, nil
	}
}

func TestGet_CachesWithinTTL(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	loader := NewLoader(60 * time.Second).WithClock(func() time.Time { return now })

	var calls int32
	load := func(context.Context) (schedule.Schedule, []string, error) {
		atomic.AddInt32(&calls, 1)
		return schedule.Schedule{{JobID: "J-1"}}, []string{"Failed to parse 1 dates in DueDate"}, nil
	}

	first, err := loader.Get(context.Background(), "sheet:a/b", load)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, now, first.FetchedAt)

	now = now.Add(30 * time.Second)
	second, err := loader.Get(context.Background(), "sheet:a/b", load)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Jobs, second.Jobs)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_ReloadsAfterTTL(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	loader := NewLoader(60 * time.Second).WithClock(func() time.Time { return now })

	var calls int32
	load := func(context.Context) (schedule.Schedule, []string, error) {
		atomic.AddInt32(&calls, 1)
		return schedule.Schedule{}, nil, nil
	}

	_, err := loader.Get(context.Background(), "k", load)
	require.NoError(t, err)

	now = now.Add(61 * time.Second)
	snap, err := loader.Get(context.Background(), "k", load)
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGet_ZeroTTLAlwaysLoads(t *testing.T) {
	loader := NewLoader(0)

	var calls int32
	load := func(context.Context) (schedule.Schedule, []string, error) {
		atomic.AddInt32(&calls, 1)
		return schedule.Schedule{}, nil, nil
	}

	for i := 0; i < 3; i++ {
		snap, err := loader.Get(context.Background(), "k", load)
		require.NoError(t, err)
		assert.False(t, snap.FromCache)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGet_LoadErrorIsNotCached(t *testing.T) {
	loader := NewLoader(60 * time.Second)

	boom := errors.New("source unavailable")
	_, err := loader.Get(context.Background(), "k", func(context.Context) (schedule.Schedule, []string, error) {
		return nil, nil, boom
	})
	require.ErrorIs(t, err, boom)

	snap, err := loader.Get(context.Background(), "k", staticLoad(schedule.Schedule{{JobID: "J-1"}}, nil))
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
	assert.Len(t, snap.Jobs, 1)
}

func TestInvalidate_DropsEntry(t *testing.T) {
	loader := NewLoader(60 * time.Second)

	_, err := loader.Get(context.Background(), "k", staticLoad(schedule.Schedule{}, nil))
	require.NoError(t, err)

	loader.Invalidate("k")

	snap, err := loader.Get(context.Background(), "k", staticLoad(schedule.Schedule{}, nil))
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
}

func TestGet_ConcurrentMissesShareOneLoad(t *testing.T) {
	loader := NewLoader(60 * time.Second)

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) (schedule.Schedule, []string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return schedule.Schedule{{JobID: "J-1"}}, nil, nil
	}

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			snap, err := loader.Get(context.Background(), "k", load)
			assert.NoError(t, err)
			assert.Len(t, snap.Jobs, 1)
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
