package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCoalescesConcurrentReads(t *testing.T) {
	cache := NewCache(time.Minute, nil)

	var fetches atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		fetches.Add(1)
		<-release
		return "classic_blue", nil
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]any, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cache.Get(context.Background(), "selectedTemplate", fetch)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	require.Eventually(t, func() bool { return fetches.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, fetches.Load())
	for _, v := range results {
		assert.Equal(t, "classic_blue", v)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache(3*time.Second, clock.Now)

	var fetches int
	fetch := func(context.Context) (any, error) {
		fetches++
		return fetches, nil
	}

	v, _ := cache.Get(context.Background(), "k", fetch)
	assert.Equal(t, 1, v)

	clock.Advance(2 * time.Second)
	v, _ = cache.Get(context.Background(), "k", fetch)
	assert.Equal(t, 1, v)

	clock.Advance(2 * time.Second)
	v, _ = cache.Get(context.Background(), "k", fetch)
	assert.Equal(t, 2, v)
}

func TestCacheEvictsFailures(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	boom := errors.New("bridge down")

	_, err := cache.Get(context.Background(), "k", func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, cache.Len())

	v, err := cache.Get(context.Background(), "k", func(context.Context) (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	calls := 0
	fetch := func(context.Context) (any, error) { calls++; return calls, nil }

	_, _ = cache.Get(context.Background(), "a", fetch)
	_, _ = cache.Get(context.Background(), "b", fetch)
	cache.Invalidate("a")
	assert.Equal(t, 1, cache.Len())

	v, _ := cache.Get(context.Background(), "a", fetch)
	assert.Equal(t, 3, v)

	cache.Clear()
	assert.Zero(t, cache.Len())
}

func TestCacheWaiterHonoursContext(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	release := make(chan struct{})
	defer close(release)

	started := make(chan struct{})
	go func() {
		_, _ = cache.Get(context.Background(), "k", func(context.Context) (any, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := cache.Get(ctx, "k", func(context.Context) (any, error) { return 2, nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
