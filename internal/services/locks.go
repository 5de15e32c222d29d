package services

import "sync"

// MarketLocks serializes mutating operations per market. Pool totals are
// read-modify-write sequences; without per-key locking, concurrent bets on
// the same market could lose updates. Different markets proceed in parallel.
type MarketLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMarketLocks() *MarketLocks {
	return &MarketLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a market id and returns the unlock func.
func (l *MarketLocks) Lock(marketID string) func() {
	l.mu.Lock()
	m, ok := l.locks[marketID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[marketID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
