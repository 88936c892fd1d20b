package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) *QueryCache {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(16, ttl, time.Second, logrus.NewEntry(l))
}

func TestFetchCachesValue(t *testing.T) {
	c := newTestCache(time.Minute)
	var calls int32
	fn := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Fetch(context.Background(), c, "unread:7", fn)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestConcurrentFetchesShareOneCall(t *testing.T) {
	c := newTestCache(time.Minute)
	var calls int32
	release := make(chan struct{})
	fn := func(context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"a"}, nil
	}

	var wg sync.WaitGroup
	results := make([][]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, "reports", fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, []string{"a"}, r)
	}
}

func TestCancelledCallerDoesNotAbortSharedFetch(t *testing.T) {
	c := newTestCache(time.Minute)
	release := make(chan struct{})
	var fetchErr error
	fn := func(ctx context.Context) (int, error) {
		<-release
		fetchErr = ctx.Err()
		return 5, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, "stats", fn)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	v, err := Fetch(context.Background(), c, "stats", fn)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.NoError(t, fetchErr)
}

func TestErrorsAreNotCached(t *testing.T) {
	c := newTestCache(time.Minute)
	boom := errors.New("backend down")
	calls := 0
	fn := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 9, nil
	}

	_, err := Fetch(context.Background(), c, "k", fn)
	assert.ErrorIs(t, err, boom)
	v, err := Fetch(context.Background(), c, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.Equal(t, 2, calls)
}

func TestInvalidatePrefix(t *testing.T) {
	c := newTestCache(time.Minute)
	for _, k := range []string{Key("notifications", 7), Key("notifications", 7, "count"), Key("reports", "all")} {
		_, err := Fetch(context.Background(), c, k, func(context.Context) (string, error) { return "v", nil })
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Invalidate(Key("notifications", 7)))
	assert.Equal(t, 1, c.Len())
}

func TestFetchAfterInvalidateSkipsInFlightCall(t *testing.T) {
	c := newTestCache(time.Minute)
	var version atomic.Value
	version.Store("before-mutation")
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fn := func(context.Context) (string, error) {
		v := version.Load().(string)
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return v, nil
	}

	first := make(chan string, 1)
	go func() {
		v, err := Fetch(context.Background(), c, Key("reports", "all"), fn)
		assert.NoError(t, err)
		first <- v
	}()
	<-started

	version.Store("after-mutation")
	c.Invalidate("reports:")

	v, err := Fetch(context.Background(), c, Key("reports", "all"), fn)
	require.NoError(t, err)
	assert.Equal(t, "after-mutation", v)

	close(release)
	assert.Equal(t, "before-mutation", <-first)

	// the stale result finished after the invalidation and must not replace the fresh one
	v, err = Fetch(context.Background(), c, Key("reports", "all"), fn)
	require.NoError(t, err)
	assert.Equal(t, "after-mutation", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEntriesExpire(t *testing.T) {
	c := newTestCache(30 * time.Millisecond)
	calls := 0
	fn := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := Fetch(context.Background(), c, "k", fn)
	assert.Equal(t, 1, v)
	time.Sleep(80 * time.Millisecond)
	v, _ = Fetch(context.Background(), c, "k", fn)
	assert.Equal(t, 2, v)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "dashboard:hod:21", Key("dashboard", "hod", 21))
}
