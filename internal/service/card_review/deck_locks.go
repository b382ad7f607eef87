package card_review

import (
	"sync"

	"github.com/google/uuid"
)

// deckLocks hands out one mutex per deck. Entries are dropped when the last
// holder or waiter releases them.
type deckLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*deckLock
}

type deckLock struct {
	mu   sync.Mutex
	refs int
}

func newDeckLocks() *deckLocks {
	return &deckLocks{locks: make(map[uuid.UUID]*deckLock)}
}

// lock blocks until the deck is held and returns its release function.
func (l *deckLocks) lock(deckID uuid.UUID) func() {
	l.mu.Lock()
	dl, ok := l.locks[deckID]
	if !ok {
		dl = &deckLock{}
		l.locks[deckID] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.mu.Lock()

	return func() {
		dl.mu.Unlock()

		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, deckID)
		}
		l.mu.Unlock()
	}
}

func (l *deckLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
