package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "session-lock:"
	pollInterval = 50 * time.Millisecond
)

// Redis serializes sessions across replicas with a SET NX PX lock. The TTL
// bounds how long a crashed holder can block a session.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis constructs a Redis locker.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// Acquire polls SET NX until the lock is held or ctx is done. The release
// function deletes the key only if this caller still owns it.
func (l *Redis) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := keyPrefix + sessionID
	token := uuid.New().String()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("op=lock.acquire: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("op=lock.acquire: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Compare-and-delete so an expired lock taken over by another
			// holder is not removed from under them.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, _ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Result()
		})
	}
	return release, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
