package service

import "sync"

// TripLocker serializes engine operations per trip. Operations on different
// trips run concurrently.
type TripLocker struct {
	mu    sync.Mutex
	locks map[string]*tripLock
}

type tripLock struct {
	mu   sync.Mutex
	refs int
}

func NewTripLocker() *TripLocker {
	return &TripLocker{locks: make(map[string]*tripLock)}
}

// Lock blocks until tripID is free and returns the matching unlock func.
func (l *TripLocker) Lock(tripID string) func() {
	l.mu.Lock()
	tl, ok := l.locks[tripID]
	if !ok {
		tl = &tripLock{}
		l.locks[tripID] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()
	return func() {
		tl.mu.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, tripID)
		}
		l.mu.Unlock()
	}
}
