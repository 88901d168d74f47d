package graph

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

type pairKey [2]uuid.UUID

func keyOf(a, b uuid.UUID) pairKey {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return pairKey{a, b}
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

// pairLocks serialises mutations on the same unordered pair of users.
// Entries are reference counted and dropped once no goroutine holds or waits
// on them.
type pairLocks struct {
	mu    sync.Mutex
	locks map[pairKey]*pairLock
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[pairKey]*pairLock)}
}

func (l *pairLocks) lock(a, b uuid.UUID) (unlock func()) {
	key := keyOf(a, b)

	l.mu.Lock()
	pl, ok := l.locks[key]
	if !ok {
		pl = &pairLock{}
		l.locks[key] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *pairLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
