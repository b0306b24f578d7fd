package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/insights/internal/adapter/lock"
	"github.com/careerpilot/insights/internal/domain"
)

func testSerialization(t *testing.T, l domain.SessionLocker) {
	t.Helper()
	const workers = 8
	var inCritical int
	var maxSeen int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "sess-1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxSeen {
				maxSeen = inCritical
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLocal_SerializesSameSession(t *testing.T) {
	t.Parallel()
	testSerialization(t, lock.NewLocal())
}

func TestLocal_DifferentSessionsIndependent(t *testing.T) {
	t.Parallel()
	l := lock.NewLocal()
	rel1, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer rel1()

	done := make(chan struct{})
	go func() {
		rel2, err := l.Acquire(context.Background(), "b")
		assert.NoError(t, err)
		rel2()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for another session blocked")
	}
}

func TestLocal_ReleaseIdempotent(t *testing.T) {
	t.Parallel()
	l := lock.NewLocal()
	release, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release()
	release() // second call is a no-op

	release2, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release2()
}

func newRedisLocker(t *testing.T, ttl time.Duration) (*lock.Redis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return lock.NewRedis(rdb, ttl), rdb
}

func TestRedis_SerializesSameSession(t *testing.T) {
	t.Parallel()
	l, _ := newRedisLocker(t, 5*time.Second)
	testSerialization(t, l)
}

func TestRedis_AcquireTimesOutWithContext(t *testing.T) {
	t.Parallel()
	l, _ := newRedisLocker(t, 5*time.Second)

	release, err := l.Acquire(context.Background(), "sess-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "sess-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedis_ReleaseAllowsReacquire(t *testing.T) {
	t.Parallel()
	l, _ := newRedisLocker(t, 5*time.Second)

	release, err := l.Acquire(context.Background(), "sess-1")
	require.NoError(t, err)
	release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	release2, err := l.Acquire(ctx, "sess-1")
	require.NoError(t, err)
	release2()
}

func TestRedis_ReleaseOnlyDeletesOwnToken(t *testing.T) {
	t.Parallel()
	l, rdb := newRedisLocker(t, 5*time.Second)

	release, err := l.Acquire(context.Background(), "sess-1")
	require.NoError(t, err)

	// Simulate TTL expiry followed by another holder taking the lock.
	require.NoError(t, rdb.Set(context.Background(), "session-lock:sess-1", "other-token", 0).Err())
	release()

	val, err := rdb.Get(context.Background(), "session-lock:sess-1").Result()
	require.NoError(t, err)
	assert.Equal(t, "other-token", val)
}
