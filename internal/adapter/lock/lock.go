// Package lock serializes interview session transitions. Two answer
// submissions for the same session must not interleave; the lock is keyed by
// session id only, since no invariant spans sessions.
package lock

import (
	"context"
	"sync"
)

// Local serializes sessions with in-process mutexes. Suitable for a single
// server process; multi-replica deployments should use the Redis locker.
type Local struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocal constructs a Local locker.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the per-session mutex is held. The session mutex set
// is never pruned; session churn is low enough that the map stays small.
func (l *Local) Acquire(_ context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	var once sync.Once
	return func() { once.Do(m.Unlock) }, nil
}
